package rules

import "math/rand"

// Prey is the food the snake is chasing. It never moves, a new one is spawned
// each time it is eaten.
type Prey struct {
	Appearance

	Position Position `json:"position"`
}

// InitPrey spawns the first prey of a game away from the snake body.
func InitPrey(rng *rand.Rand, snakeBody []Position, bounds Bounds, margin, segmentSize int32) *Prey {
	return &Prey{
		Appearance: preyAppearance(bounds, segmentSize),
		Position:   SpawnPrey(rng, snakeBody, bounds, margin, segmentSize),
	}
}

// Respawn moves the prey to a fresh spot that is not on the snake body.
func (p *Prey) Respawn(rng *rand.Rand, snakeBody []Position, margin int32) {
	p.Position = SpawnPrey(rng, snakeBody, p.Zone, margin, p.SegmentSize)
}

// SpawnPrey picks a random grid aligned position at least margin away from
// the edges of bounds that is not on the snake body. x and y are drawn
// independently and the draw is repeated until a free cell comes up.
//
// When the snake covers every legal cell this never returns. The range must
// not be empty: a margin that leaves no legal column or row panics.
func SpawnPrey(rng *rand.Rand, snakeBody []Position, bounds Bounds, margin, step int32) Position {
	for {
		p := Position{
			X: randStep(rng, bounds.MinX+margin, bounds.MaxX-margin, step),
			Y: randStep(rng, bounds.MinY+margin, bounds.MaxY-margin, step),
		}
		if !containsPosition(snakeBody, p) {
			return p
		}
	}
}

// randStep returns lo + k*step for a uniform k, staying below hi.
func randStep(rng *rand.Rand, lo, hi, step int32) int32 {
	n := (hi - lo + step - 1) / step
	return lo + rng.Int31n(n)*step
}
