// Package worker provides the actual running of games. It drives a session on
// a fixed cadence, feeding it directions from its mailbox and handing every
// frame to a sink.
package worker

import (
	"context"
	"time"

	"github.com/battlesnakeio/snake/rules"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultTickInterval is used for games that don't set their own interval.
const DefaultTickInterval = 150 * time.Millisecond

const sinkTimeout = 5 * time.Second

// FrameSink receives the frames and the final status of a game.
type FrameSink interface {
	PushGameFrame(ctx context.Context, id string, frame *rules.GameFrame) error
	SetGameStatus(ctx context.Context, id string, status rules.GameStatus) error
}

// Worker ticks games. It wraps a Run function which is where the game loop
// lives.
type Worker struct {
	Sink FrameSink
	// TickInterval is used when the game has no interval of its own.
	TickInterval time.Duration
	// Publish, when set, is called with every frame after it was stored.
	Publish func(id string, frame *rules.GameFrame)
}

func (w *Worker) interval(game *rules.Game) time.Duration {
	if game.TickInterval > 0 {
		return time.Duration(game.TickInterval) * time.Millisecond
	}
	if w.TickInterval > 0 {
		return w.TickInterval
	}
	return DefaultTickInterval
}

// Run ticks the session until the snake dies, ctx is cancelled or the sink
// fails. Exactly one Step happens per tick. The final status of the game is
// written to the sink before returning.
func (w *Worker) Run(ctx context.Context, s *Session) error {
	id := s.Game.ID
	t := time.NewTicker(w.interval(s.Game))
	defer t.Stop()

	logger := log.WithField("GameID", id)
	logger.WithField("Interval", w.interval(s.Game)).Info("game running")

	for {
		select {
		case <-ctx.Done():
			logger.Info("game stopped")
			w.finish(id, rules.GameStatusStopped)
			return ctx.Err()
		case <-t.C:
		}
		// Both cases can be ready at once and select picks either.
		if ctx.Err() != nil {
			logger.Info("game stopped")
			w.finish(id, rules.GameStatusStopped)
			return ctx.Err()
		}

		if s.Game.Autopilot {
			s.Mailbox().Post(Autopilot{}.Choose(s.Game, s.Snapshot()))
		}

		frame, err := s.Step()
		if err != nil {
			logger.WithError(err).Error("ending game due to fatal error")
			w.finish(id, rules.GameStatusError)
			return err
		}
		ticksTotal.Inc()
		if frame.Ate {
			preyEatenTotal.Inc()
			logger.WithFields(log.Fields{
				"Turn":  frame.Turn,
				"Score": frame.Score,
				"Prey":  frame.Prey,
			}).Info("snake ate")
		}

		if err := w.push(ctx, id, frame); err != nil {
			if errors.Cause(err) == context.Canceled {
				logger.WithField("Turn", frame.Turn).Info("game stopped while storing frame")
				w.finish(id, rules.GameStatusStopped)
				return err
			}
			logger.WithError(err).WithField("Turn", frame.Turn).Error("unable to store frame")
			w.finish(id, rules.GameStatusError)
			return err
		}
		if w.Publish != nil {
			w.Publish(id, frame)
		}

		if rules.CheckForGameOver(frame) {
			gamesOverTotal.WithLabelValues(frame.DeathCause).Inc()
			finalScore.Observe(float64(frame.Score))
			logger.WithFields(log.Fields{
				"Turn":  frame.Turn,
				"Score": frame.Score,
				"Cause": frame.DeathCause,
			}).Info("game over")
			w.finish(id, rules.GameStatusComplete)
			return nil
		}
	}
}

// push stores a frame that was already stepped. Stopping the game must not
// lose it, so the store call does not inherit the run cancellation.
func (w *Worker) push(ctx context.Context, id string, frame *rules.GameFrame) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkTimeout)
	defer cancel()
	return w.Sink.PushGameFrame(ctx, id, frame)
}

// finish records the final status. The run context may already be cancelled
// here, so a fresh one is used.
func (w *Worker) finish(id string, status rules.GameStatus) {
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	if err := w.Sink.SetGameStatus(ctx, id, status); err != nil {
		log.WithError(err).WithField("GameID", id).Error("unable to set game status")
	}
}
