package rules

// GameFrame is a snapshot of a game after a turn. Frames are what gets stored
// and what renderers read.
type GameFrame struct {
	Turn       int32      `json:"turn"`
	Body       []Position `json:"body"`
	Direction  Direction  `json:"direction"`
	Prey       Position   `json:"prey"`
	Score      int32      `json:"score"`
	Alive      bool       `json:"alive"`
	Ate        bool       `json:"ate"`
	DeathCause string     `json:"death_cause,omitempty"`
}

// NewGameFrame snapshots the snake and prey. The body is copied so the frame
// is not affected by later ticks.
func NewGameFrame(turn int32, snake *Snake, prey *Prey, ate bool) *GameFrame {
	return &GameFrame{
		Turn:       turn,
		Body:       clonePositions(snake.Body),
		Direction:  snake.Direction,
		Prey:       prey.Position,
		Score:      snake.Score,
		Alive:      snake.Alive,
		Ate:        ate,
		DeathCause: snake.DeathCause,
	}
}

// Head returns the last point in the body
func (f *GameFrame) Head() (Position, bool) {
	if len(f.Body) == 0 {
		return Position{}, false
	}
	return f.Body[len(f.Body)-1], true
}
