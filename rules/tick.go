package rules

// TickResult summarises one call to AdvanceOneTick.
type TickResult struct {
	Ate   bool `json:"ate"`
	Alive bool `json:"alive"`
}

// AdvanceOneTick moves the snake one segment in its current direction.
//
// The candidate head is checked against the walls, the obstacles and the
// whole current body. A collision marks the snake dead but the candidate is
// still appended, so the body reflects the lethal move. Landing on prey scores
// a point and keeps the tail, which is how the snake grows; otherwise the tail
// is dropped and the length stays the same.
//
// A snake that is already dead is left untouched.
func (s *Snake) AdvanceOneTick(prey Position, obstacles []Position) TickResult {
	head, ok := s.Head()
	if !s.Alive || !ok {
		return TickResult{Alive: s.Alive}
	}

	candidate := s.Direction.Step(head, s.SegmentSize)
	if cause := checkForDeath(candidate, s.Zone, s.Body, obstacles); cause != "" {
		s.Alive = false
		s.DeathCause = cause
	}

	s.Body = append(s.Body, candidate)

	if candidate.Equal(prey) {
		s.Score++
		return TickResult{Ate: true, Alive: s.Alive}
	}

	s.Body = s.Body[1:]
	return TickResult{Alive: s.Alive}
}
