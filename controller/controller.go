// Package controller owns the games of a server. It creates them, hands the
// running ones to workers and gives read access to their frames. Direction
// changes from players are routed to the mailbox of the running game.
package controller

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/battlesnakeio/snake/config"
	"github.com/battlesnakeio/snake/rules"
	"github.com/battlesnakeio/snake/worker"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	// ErrIsRunning is returned when starting a game that is already running.
	ErrIsRunning = errors.New("controller: game already running")
	// ErrFinished is returned when starting a game that can't run anymore.
	ErrFinished = errors.New("controller: game is finished")
	// ErrNotRunning is returned when steering a game that is not running.
	ErrNotRunning = errors.New("controller: game is not running")
	// ErrRateLimited is returned when a game receives direction changes too
	// quickly.
	ErrRateLimited = errors.New("controller: too many direction changes")
)

// GameStatus is a game along with its most recent frame.
type GameStatus struct {
	Game      *rules.Game
	LastFrame *rules.GameFrame
}

type running struct {
	session *worker.Session
	limiter *rate.Limiter
	cancel  context.CancelFunc
	done    chan struct{}
}

// Controller runs games on top of a Store.
type Controller struct {
	Store Store

	cfg    *config.Config
	hub    *hub
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	running map[string]*running
	wg      sync.WaitGroup
}

// New will initialize a new Controller.
func New(store Store, cfg *config.Config) *Controller {
	if cfg == nil {
		cfg = config.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		Store:   store,
		cfg:     cfg,
		hub:     newHub(),
		ctx:     ctx,
		cancel:  cancel,
		running: map[string]*running{},
	}
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Create builds a new game from req and stores it with its first frame. Zero
// valued fields of req take the configured defaults. The game is not started.
func (c *Controller) Create(ctx context.Context, req *rules.CreateRequest) (*rules.Game, error) {
	r := *req
	if r.Width == 0 {
		r.Width = c.cfg.Width
	}
	if r.Height == 0 {
		r.Height = c.cfg.Height
	}
	if r.Resolution == 0 {
		r.Resolution = c.cfg.Resolution
	}
	if r.Margin == 0 {
		r.Margin = c.cfg.Margin
	}
	if r.TickInterval == 0 {
		r.TickInterval = c.cfg.TickIntervalMS()
	}

	game, snake, prey, err := rules.CreateInitialGame(&r, newRand())
	if err != nil {
		return nil, err
	}
	frame := rules.NewGameFrame(0, snake, prey, false)
	if err := c.Store.CreateGame(ctx, game, []*rules.GameFrame{frame}); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"GameID":    game.ID,
		"Width":     game.Width,
		"Height":    game.Height,
		"Autopilot": game.Autopilot,
	}).Info("game created")
	return game, nil
}

// Start begins ticking a stopped game. A game that was stopped part way
// resumes from its last frame.
func (c *Controller) Start(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.running[id]; ok {
		return ErrIsRunning
	}
	game, err := c.Store.GetGame(ctx, id)
	if err != nil {
		return err
	}
	if game.Status.Finished() {
		return ErrFinished
	}
	frames, err := c.Store.ListGameFrames(ctx, id, 1, -1)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return ErrInvalidSequence
	}
	if !frames[0].Alive {
		return ErrFinished
	}

	if err := c.Store.SetGameStatus(ctx, id, rules.GameStatusRunning); err != nil {
		return err
	}
	game.Status = rules.GameStatusRunning

	runCtx, cancel := context.WithCancel(c.ctx)
	r := &running{
		session: worker.ResumeSession(game, frames[0], newRand()),
		limiter: rate.NewLimiter(c.cfg.DirectionLimit(), c.cfg.DirectionBurst),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	c.running[id] = r

	w := &worker.Worker{
		Sink:         c.Store,
		TickInterval: c.cfg.TickInterval,
		Publish:      c.hub.publish,
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(r.done)
		if err := w.Run(runCtx, r.session); err != nil && err != context.Canceled {
			log.WithError(err).WithField("GameID", id).Error("game ended with error")
		}
		c.mu.Lock()
		delete(c.running, id)
		c.hub.closeGame(id)
		c.mu.Unlock()
	}()

	log.WithField("GameID", id).Info("game started")
	return nil
}

// Stop halts a running game. It can be started again later.
func (c *Controller) Stop(ctx context.Context, id string) error {
	c.mu.Lock()
	r, ok := c.running[id]
	c.mu.Unlock()
	if !ok {
		return ErrNotRunning
	}
	r.cancel()
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the game and its last frame.
func (c *Controller) Status(ctx context.Context, id string) (*GameStatus, error) {
	game, err := c.Store.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	frames, err := c.Store.ListGameFrames(ctx, id, 1, -1)
	if err != nil {
		return nil, err
	}
	status := &GameStatus{Game: game}
	if len(frames) > 0 {
		status.LastFrame = frames[0]
	}
	return status, nil
}

// Direction posts a direction change to a running game. The change is applied
// on the next tick unless another one replaces it first.
func (c *Controller) Direction(ctx context.Context, id, direction string) error {
	d, err := rules.ParseDirection(direction)
	if err != nil {
		return err
	}

	c.mu.Lock()
	r, ok := c.running[id]
	c.mu.Unlock()
	if !ok {
		if _, err := c.Store.GetGame(ctx, id); err != nil {
			return err
		}
		return ErrNotRunning
	}
	if !r.limiter.Allow() {
		return ErrRateLimited
	}
	r.session.Mailbox().Post(d)
	return nil
}

// Frames lists the stored frames of a game. A limit of 0 uses the configured
// page size.
func (c *Controller) Frames(ctx context.Context, id string, limit, offset int) ([]*rules.GameFrame, error) {
	if limit <= 0 {
		limit = c.cfg.FramePageSize
	}
	return c.Store.ListGameFrames(ctx, id, limit, offset)
}

// Subscribe returns a channel receiving the frames of a running game as they
// are produced. The channel is closed when the game stops running or when the
// returned cancel function is called. Frames are dropped for subscribers that
// don't keep up.
func (c *Controller) Subscribe(id string) (<-chan *rules.GameFrame, func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.running[id]; !ok {
		return nil, nil, ErrNotRunning
	}
	frames, cancel := c.hub.subscribe(id)
	return frames, cancel, nil
}

// Running reports whether the game is currently being ticked.
func (c *Controller) Running(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.running[id]
	return ok
}

// Shutdown stops all running games and waits for their workers to exit.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.cancel()
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
