package rules

import "fmt"

// Position is a grid aligned x,y coordinate. Coordinates are in the same units
// as the segment size, so neighbouring cells differ by one segment size.
type Position struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// Equal checks if 2 positions are the same x,y coordinate
func (p Position) Equal(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Bounds is a half open rectangle, the max edges are outside of the area.
type Bounds struct {
	MinX int32 `json:"min_x"`
	MinY int32 `json:"min_y"`
	MaxX int32 `json:"max_x"`
	MaxY int32 `json:"max_y"`
}

// Contains reports whether p lies inside [MinX, MaxX) x [MinY, MaxY).
func (b Bounds) Contains(p Position) bool {
	return b.MinX <= p.X && p.X < b.MaxX && b.MinY <= p.Y && p.Y < b.MaxY
}

func containsPosition(list []Position, p Position) bool {
	for _, o := range list {
		if o.Equal(p) {
			return true
		}
	}
	return false
}

func clonePositions(list []Position) []Position {
	out := make([]Position, len(list))
	copy(out, list)
	return out
}
