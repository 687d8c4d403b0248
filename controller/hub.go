package controller

import (
	"sync"

	"github.com/battlesnakeio/snake/rules"
)

const subscriberBuffer = 32

type subscriber struct {
	frames chan *rules.GameFrame
	once   sync.Once
}

func (s *subscriber) close() { s.once.Do(func() { close(s.frames) }) }

// hub fans frames of running games out to subscribers.
type hub struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

func newHub() *hub {
	return &hub{subs: map[string]map[*subscriber]struct{}{}}
}

func (h *hub) subscribe(id string) (<-chan *rules.GameFrame, func()) {
	s := &subscriber{frames: make(chan *rules.GameFrame, subscriberBuffer)}

	h.mu.Lock()
	if h.subs[id] == nil {
		h.subs[id] = map[*subscriber]struct{}{}
	}
	h.subs[id][s] = struct{}{}
	h.mu.Unlock()

	return s.frames, func() {
		h.mu.Lock()
		delete(h.subs[id], s)
		if len(h.subs[id]) == 0 {
			delete(h.subs, id)
		}
		h.mu.Unlock()
		s.close()
	}
}

func (h *hub) publish(id string, f *rules.GameFrame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subs[id] {
		select {
		case s.frames <- f:
		default:
		}
	}
}

func (h *hub) closeGame(id string) {
	h.mu.Lock()
	subs := h.subs[id]
	delete(h.subs, id)
	h.mu.Unlock()

	for s := range subs {
		s.close()
	}
}
