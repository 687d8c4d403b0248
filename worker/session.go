package worker

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/battlesnakeio/snake/rules"
)

// ErrGameOver is returned when stepping a game whose snake is dead.
var ErrGameOver = errors.New("worker: game is over")

// Session is one running game: the snake, its prey and the mailbox feeding it
// directions. All access to the snake and prey goes through the session lock,
// so the tick loop and readers never see a half applied tick.
type Session struct {
	Game *rules.Game

	mu      sync.Mutex
	snake   *rules.Snake
	prey    *rules.Prey
	rng     *rand.Rand
	turn    int32
	last    *rules.GameFrame
	mailbox *Mailbox
}

// NewSession wraps freshly created game state. Frame 0 is the state as given.
func NewSession(game *rules.Game, snake *rules.Snake, prey *rules.Prey, rng *rand.Rand) *Session {
	return &Session{
		Game:    game,
		snake:   snake,
		prey:    prey,
		rng:     rng,
		last:    rules.NewGameFrame(0, snake, prey, false),
		mailbox: NewMailbox(),
	}
}

// ResumeSession continues a game from a stored frame. The next Step produces
// the frame following it.
func ResumeSession(game *rules.Game, frame *rules.GameFrame, rng *rand.Rand) *Session {
	snake, prey := rules.RestoreGame(game, frame)
	return &Session{
		Game:    game,
		snake:   snake,
		prey:    prey,
		rng:     rng,
		turn:    frame.Turn,
		last:    frame,
		mailbox: NewMailbox(),
	}
}

// Mailbox returns the direction mailbox of the session.
func (s *Session) Mailbox() *Mailbox { return s.mailbox }

// Snapshot returns the most recent frame.
func (s *Session) Snapshot() *rules.GameFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Step runs one tick: the pending direction (if any) is applied, the snake
// moves, and eaten prey is replaced.
func (s *Session) Step() (*rules.GameFrame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.snake.Alive {
		return nil, ErrGameOver
	}

	if d, ok := s.mailbox.Drain(); ok {
		s.snake.SetDirection(d)
	}

	res := s.snake.AdvanceOneTick(s.prey.Position, nil)
	if res.Ate {
		s.prey.Respawn(s.rng, s.snake.Body, s.Game.PreyMargin())
	}

	s.turn++
	s.last = rules.NewGameFrame(s.turn, s.snake, s.prey, res.Ate)
	return s.last, nil
}
