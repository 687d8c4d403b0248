package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/battlesnakeio/snake/rules"
)

var (
	// ErrNotFound is thrown when a game is not found.
	ErrNotFound = errors.New("controller: game not found")
	// ErrInvalidSequence is returned when a frame does not directly follow
	// the last stored frame of its game.
	ErrInvalidSequence = errors.New("controller: invalid frame sequence")
)

// Store is the interface to the backend store.
type Store interface {
	// CreateGame will insert a game with the initial game frames. Creating a
	// game that already exists replaces it along with its frames.
	CreateGame(ctx context.Context, g *rules.Game, frames []*rules.GameFrame) error
	// GetGame will fetch the game.
	GetGame(ctx context.Context, id string) (*rules.Game, error)
	// SetGameStatus is used to set a specific game status. This operation
	// should be atomic.
	SetGameStatus(ctx context.Context, id string, status rules.GameStatus) error
	// PushGameFrame will push a game frame onto the list of frames. The
	// frame turn must equal the number of frames already stored.
	PushGameFrame(ctx context.Context, id string, f *rules.GameFrame) error
	// ListGameFrames will list frames by an offset and limit, a negative
	// offset counts from the end. Frames are always in turn order.
	ListGameFrames(ctx context.Context, id string, limit, offset int) ([]*rules.GameFrame, error)
}

// FrameWindow returns the slice bounds [start, end) selected by limit and
// offset out of total frames.
func FrameWindow(total, limit, offset int) (int, int) {
	start := offset
	if offset < 0 {
		start = total + offset
		if start < 0 {
			start = 0
		}
	}
	if start > total {
		start = total
	}
	end := total
	if limit >= 0 && limit < total-start {
		end = start + limit
	}
	return start, end
}

// CheckSequence verifies frames continue a game that already has next
// frames stored.
func CheckSequence(next int, frames ...*rules.GameFrame) error {
	for _, f := range frames {
		if int(f.Turn) != next {
			return ErrInvalidSequence
		}
		next++
	}
	return nil
}

// InMemStore returns an in memory implementation of the Store interface.
func InMemStore() Store {
	return &inmem{
		games:  map[string]*rules.Game{},
		frames: map[string][]*rules.GameFrame{},
	}
}

type inmem struct {
	games  map[string]*rules.Game
	frames map[string][]*rules.GameFrame
	lock   sync.Mutex
}

func (in *inmem) CreateGame(ctx context.Context, g *rules.Game, frames []*rules.GameFrame) error {
	in.lock.Lock()
	defer in.lock.Unlock()

	if err := CheckSequence(0, frames...); err != nil {
		return err
	}
	in.games[g.ID] = g.Clone()
	in.frames[g.ID] = append([]*rules.GameFrame{}, frames...)
	return nil
}

func (in *inmem) GetGame(ctx context.Context, id string) (*rules.Game, error) {
	in.lock.Lock()
	defer in.lock.Unlock()

	if g, ok := in.games[id]; ok {
		return g.Clone(), nil
	}
	return nil, ErrNotFound
}

func (in *inmem) SetGameStatus(ctx context.Context, id string, status rules.GameStatus) error {
	in.lock.Lock()
	defer in.lock.Unlock()

	g, ok := in.games[id]
	if !ok {
		return ErrNotFound
	}
	g.Status = status
	return nil
}

func (in *inmem) PushGameFrame(ctx context.Context, id string, f *rules.GameFrame) error {
	in.lock.Lock()
	defer in.lock.Unlock()

	if _, ok := in.games[id]; !ok {
		return ErrNotFound
	}
	if err := CheckSequence(len(in.frames[id]), f); err != nil {
		return err
	}
	in.frames[id] = append(in.frames[id], f)
	return nil
}

func (in *inmem) ListGameFrames(ctx context.Context, id string, limit, offset int) ([]*rules.GameFrame, error) {
	in.lock.Lock()
	defer in.lock.Unlock()

	if _, ok := in.games[id]; !ok {
		return nil, ErrNotFound
	}
	frames := in.frames[id]
	start, end := FrameWindow(len(frames), limit, offset)
	return append([]*rules.GameFrame{}, frames[start:end]...), nil
}
