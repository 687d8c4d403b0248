package rules

import (
	"errors"
	"strings"
)

// Direction is the heading of a snake.
type Direction string

const (
	// DirectionUp moves towards smaller y values
	DirectionUp Direction = "up"
	// DirectionDown moves towards larger y values
	DirectionDown Direction = "down"
	// DirectionLeft moves towards smaller x values
	DirectionLeft Direction = "left"
	// DirectionRight moves towards larger x values
	DirectionRight Direction = "right"
)

// Directions lists every valid direction.
var Directions = []Direction{DirectionUp, DirectionDown, DirectionLeft, DirectionRight}

// ErrInvalidDirection is returned when a direction cannot be parsed.
var ErrInvalidDirection = errors.New("rules: invalid direction")

// ParseDirection parses a case insensitive direction name.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", ErrInvalidDirection
	}
	return d, nil
}

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	switch d {
	case DirectionUp, DirectionDown, DirectionLeft, DirectionRight:
		return true
	}
	return false
}

// Opposite returns the 180 degree reverse of d.
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionUp:
		return DirectionDown
	case DirectionDown:
		return DirectionUp
	case DirectionLeft:
		return DirectionRight
	case DirectionRight:
		return DirectionLeft
	}
	return ""
}

// Step offsets p by one step in direction d. Anything that is not up, down or
// left moves right.
func (d Direction) Step(p Position, step int32) Position {
	switch d {
	case DirectionUp:
		return Position{X: p.X, Y: p.Y - step}
	case DirectionDown:
		return Position{X: p.X, Y: p.Y + step}
	case DirectionLeft:
		return Position{X: p.X - step, Y: p.Y}
	default:
		return Position{X: p.X + step, Y: p.Y}
	}
}
