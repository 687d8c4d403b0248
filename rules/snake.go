package rules

// Snake is the player controlled snake. Body is ordered tail first, so the
// head is the last element.
type Snake struct {
	Appearance

	Body       []Position `json:"body"`
	Direction  Direction  `json:"direction"`
	Alive      bool       `json:"alive"`
	Score      int32      `json:"score"`
	DeathCause string     `json:"death_cause,omitempty"`
}

// InitSnake creates a live snake confined to bounds. The initial body is
// copied.
func InitSnake(bounds Bounds, initialBody []Position, initialDirection Direction) *Snake {
	return &Snake{
		Appearance: snakeAppearance(bounds),
		Body:       clonePositions(initialBody),
		Direction:  initialDirection,
		Alive:      true,
	}
}

// DefaultBody is the 5 segment starting body used by new games, laid out on
// row 3 between columns 20 and 16, tail first.
func DefaultBody(resolution int32) []Position {
	body := make([]Position, 0, 5)
	for col := int32(20); col >= 16; col-- {
		body = append(body, Position{X: col * resolution, Y: 3 * resolution})
	}
	return body
}

// Head returns the last point in the body
func (s *Snake) Head() (Position, bool) {
	if len(s.Body) == 0 {
		return Position{}, false
	}
	return s.Body[len(s.Body)-1], true
}

// Tail returns the first point in the body
func (s *Snake) Tail() (Position, bool) {
	if len(s.Body) == 0 {
		return Position{}, false
	}
	return s.Body[0], true
}

// SetDirection changes the heading of the snake. A request for the reverse of
// the current direction, or for something that is not a direction, is ignored.
// It reports whether the direction was applied.
func (s *Snake) SetDirection(requested Direction) bool {
	if !requested.Valid() || requested == s.Direction.Opposite() {
		return false
	}
	s.Direction = requested
	return true
}
