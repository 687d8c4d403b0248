package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// Config holds the tuning knobs of the engine. These aren't user facing but
// useful for running the engine in different environments. Every field can be
// set from the environment.
type Config struct {
	// TickInterval is the default time between two snake moves.
	TickInterval time.Duration `env:"SNAKE_TICK_INTERVAL" envDefault:"150ms"`
	// Width and Height are the default board size in cells.
	Width  int32 `env:"SNAKE_WIDTH" envDefault:"30"`
	Height int32 `env:"SNAKE_HEIGHT" envDefault:"30"`
	// Resolution is the size of one cell.
	Resolution int32 `env:"SNAKE_RESOLUTION" envDefault:"20"`
	// Margin is the number of cells next to the walls where prey can't spawn.
	Margin int32 `env:"SNAKE_PREY_MARGIN" envDefault:"1"`

	// DirectionRate and DirectionBurst limit how often a single game accepts
	// direction changes.
	DirectionRate  float64 `env:"DIRECTION_RPS" envDefault:"40"`
	DirectionBurst int     `env:"DIRECTION_BURST" envDefault:"10"`

	// FramePageSize is the default limit when listing frames.
	FramePageSize int `env:"FRAME_PAGE_SIZE" envDefault:"100"`

	MaxOpenConns int `env:"MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns int `env:"MAX_IDLE_CONNS" envDefault:"20"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse env")
	}
	return cfg, nil
}

// Default returns the configuration with every field at its default value.
func Default() *Config {
	cfg := &Config{}
	// Parsing with an empty environment only fails on a broken struct tag.
	if err := env.ParseWithOptions(cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(err)
	}
	return cfg
}

// DirectionLimit returns the rate limit for direction changes.
func (c *Config) DirectionLimit() rate.Limit {
	if c.DirectionRate <= 0 {
		return rate.Inf
	}
	return rate.Limit(c.DirectionRate)
}

// TickIntervalMS returns the tick interval in milliseconds.
func (c *Config) TickIntervalMS() int32 {
	return int32(c.TickInterval / time.Millisecond)
}
