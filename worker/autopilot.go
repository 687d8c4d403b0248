package worker

import "github.com/battlesnakeio/snake/rules"

// Autopilot plays a game on its own. It only ever talks to the game through
// the mailbox, exactly like a human input source would.
type Autopilot struct{}

// Choose picks the direction to take from frame: the non lethal move that
// gets closest to the prey, preferring the current heading on ties. With no
// safe move it keeps the current heading.
func (Autopilot) Choose(game *rules.Game, frame *rules.GameFrame) rules.Direction {
	head, ok := frame.Head()
	if !ok {
		return frame.Direction
	}

	best := frame.Direction
	bestDist := int32(-1)
	for _, d := range candidateDirections(frame.Direction) {
		next := d.Step(head, game.Resolution)
		if !game.Bounds().Contains(next) || onBody(frame.Body, next) {
			continue
		}
		dist := manhattan(next, frame.Prey)
		if bestDist < 0 || dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return best
}

// candidateDirections lists the legal turns with the current heading first.
func candidateDirections(current rules.Direction) []rules.Direction {
	dirs := []rules.Direction{current}
	for _, d := range rules.Directions {
		if d != current && d != current.Opposite() {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

func onBody(body []rules.Position, p rules.Position) bool {
	for _, b := range body {
		if b.Equal(p) {
			return true
		}
	}
	return false
}

func manhattan(a, b rules.Position) int32 {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
