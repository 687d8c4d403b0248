package commands

import (
	"sync"

	"github.com/battlesnakeio/snake/rules"
)

// frameHolder collects the frames received for a game.
type frameHolder struct {
	sync.RWMutex
	frames []*rules.GameFrame
}

func (fh *frameHolder) append(frame *rules.GameFrame) {
	fh.Lock()
	defer fh.Unlock()

	fh.frames = append(fh.frames, frame)
}

func (fh *frameHolder) last() *rules.GameFrame {
	fh.RLock()
	defer fh.RUnlock()
	if len(fh.frames) == 0 {
		return nil
	}
	return fh.frames[len(fh.frames)-1]
}

func (fh *frameHolder) count() int {
	fh.RLock()
	defer fh.RUnlock()
	return len(fh.frames)
}

// preyEaten counts the frames in which the snake ate.
func (fh *frameHolder) preyEaten() int {
	fh.RLock()
	defer fh.RUnlock()
	n := 0
	for _, f := range fh.frames {
		if f.Ate {
			n++
		}
	}
	return n
}
