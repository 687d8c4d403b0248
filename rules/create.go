package rules

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

// GameMode represents the mode the game is running in
type GameMode string

// GameModeSinglePlayer represents the game running in single player mode, this
// means the game will run until the only snake in the game dies
const GameModeSinglePlayer GameMode = "single-player"

// ErrInvalidGame is the cause of every error returned for a create request
// that can't produce a playable game.
var ErrInvalidGame = errors.New("rules: invalid game")

// Defaults applied to zero valued fields of a CreateRequest.
const (
	DefaultWidth        int32 = 30
	DefaultHeight       int32 = 30
	DefaultResolution         = DefaultSegmentSize
	DefaultTickInterval int32 = 150
)

// CreateRequest describes a new game. Width and Height are in cells, Margin is
// the number of cells next to the walls where prey will not spawn.
type CreateRequest struct {
	Width        int32  `json:"width"`
	Height       int32  `json:"height"`
	Resolution   int32  `json:"resolution"`
	Margin       int32  `json:"margin"`
	TickInterval int32  `json:"tick_interval"`
	Color        string `json:"color"`
	Autopilot    bool   `json:"autopilot"`
}

// Game is the metadata of a game. The changing state lives in GameFrames.
type Game struct {
	ID           string     `json:"id"`
	Status       GameStatus `json:"status"`
	Mode         GameMode   `json:"mode"`
	Width        int32      `json:"width"`
	Height       int32      `json:"height"`
	Resolution   int32      `json:"resolution"`
	Margin       int32      `json:"margin"`
	TickInterval int32      `json:"tick_interval"`
	Color        string     `json:"color"`
	Background   string     `json:"background"`
	Autopilot    bool       `json:"autopilot"`
}

// Bounds returns the play area of the game in grid units.
func (g *Game) Bounds() Bounds {
	return Bounds{MaxX: g.Width * g.Resolution, MaxY: g.Height * g.Resolution}
}

// PreyMargin returns the prey spawn margin in grid units.
func (g *Game) PreyMargin() int32 {
	return g.Margin * g.Resolution
}

// Clone returns a copy of the game that can be modified freely.
func (g *Game) Clone() *Game {
	c := *g
	return &c
}

// CreateInitialGame creates a new game based on the create request passed in,
// together with the snake and the first prey.
func CreateInitialGame(req *CreateRequest, rng *rand.Rand) (*Game, *Snake, *Prey, error) {
	game := &Game{
		ID:           uuid.NewV4().String(),
		Status:       GameStatusStopped,
		Mode:         GameModeSinglePlayer,
		Width:        valueOr(req.Width, DefaultWidth),
		Height:       valueOr(req.Height, DefaultHeight),
		Resolution:   valueOr(req.Resolution, DefaultResolution),
		Margin:       valueOr(req.Margin, 1),
		TickInterval: valueOr(req.TickInterval, DefaultTickInterval),
		Color:        req.Color,
		Background:   BackgroundColor,
		Autopilot:    req.Autopilot,
	}
	if game.Color == "" {
		game.Color = nextColor()
	}

	if err := validateGame(game); err != nil {
		return nil, nil, nil, err
	}

	snake := InitSnake(game.Bounds(), DefaultBody(game.Resolution), DirectionLeft)
	snake.SegmentSize = game.Resolution
	snake.FillColor = game.Color
	prey := InitPrey(rng, snake.Body, game.Bounds(), game.PreyMargin(), game.Resolution)

	return game, snake, prey, nil
}

// validateGame works in cells and in int64 so that no request can wrap the
// pixel coordinates used during play.
func validateGame(g *Game) error {
	if g.Width < 0 || g.Height < 0 || g.Resolution < 0 || g.Margin < 0 || g.TickInterval < 0 {
		return errors.Wrap(ErrInvalidGame, "game dimensions must not be negative")
	}
	if int64(g.Width)*int64(g.Resolution) > math.MaxInt32 || int64(g.Height)*int64(g.Resolution) > math.MaxInt32 {
		return errors.Wrapf(ErrInvalidGame, "board %dx%d with resolution %d is too large", g.Width, g.Height, g.Resolution)
	}

	cells := Bounds{MaxX: g.Width, MaxY: g.Height}
	body := DefaultBody(1)
	for _, p := range body {
		if !cells.Contains(p) {
			return errors.Wrapf(ErrInvalidGame, "board %dx%d is too small for the starting snake", g.Width, g.Height)
		}
	}

	cols := int64(g.Width) - 2*int64(g.Margin)
	rows := int64(g.Height) - 2*int64(g.Margin)
	if cols <= 0 || rows <= 0 || cols*rows <= int64(len(body)) {
		return errors.Wrapf(ErrInvalidGame, "margin %d leaves no room for prey on a %dx%d board", g.Margin, g.Width, g.Height)
	}
	return nil
}

func valueOr(v, def int32) int32 {
	if v == 0 {
		return def
	}
	return v
}
