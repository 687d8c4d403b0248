package commands

import (
	"context"
	"time"

	"github.com/battlesnakeio/snake/config"
	"github.com/battlesnakeio/snake/controller"
	"github.com/battlesnakeio/snake/rules"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var simulateRequest = &rules.CreateRequest{Autopilot: true}

func init() {
	simulateCmd.Flags().Int32Var(&simulateRequest.Width, "width", 0, "board width in cells")
	simulateCmd.Flags().Int32Var(&simulateRequest.Height, "height", 0, "board height in cells")
	simulateCmd.Flags().Int32Var(&simulateRequest.TickInterval, "tick-interval", 1, "milliseconds between two moves")
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "plays an autopilot game in process, without a server",
	RunE: func(*cobra.Command, []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctrl := controller.New(controller.InMemStore(), cfg)
		ctx := context.Background()
		defer func() {
			sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := ctrl.Shutdown(sctx); err != nil {
				log.WithError(err).Warn("unable to shut down")
			}
		}()

		game, err := ctrl.Create(ctx, simulateRequest)
		if err != nil {
			return err
		}
		if err := ctrl.Start(ctx, game.ID); err != nil {
			return err
		}
		live, cancel, err := ctrl.Subscribe(game.ID)
		switch {
		case err == controller.ErrNotRunning:
			// Over before we got to watch it, the store has every frame.
		case err != nil:
			return err
		default:
			for f := range live {
				logFrame(f)
			}
			cancel()
		}

		// The live stream drops frames when logging falls behind, the
		// totals come from the store.
		frames, err := loadFrames(ctx, ctrl, game.ID)
		if err != nil {
			return err
		}

		status, err := ctrl.Status(ctx, game.ID)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"turns":     status.LastFrame.Turn,
			"score":     status.LastFrame.Score,
			"cause":     status.LastFrame.DeathCause,
			"status":    status.Game.Status,
			"frames":    frames.count(),
			"preyEaten": frames.preyEaten(),
		}).Info("game over")
		return nil
	},
}

func loadFrames(ctx context.Context, ctrl *controller.Controller, id string) (*frameHolder, error) {
	const pageSize = 100
	frames := &frameHolder{}
	for {
		page, err := ctrl.Frames(ctx, id, pageSize, frames.count())
		if err != nil {
			return nil, err
		}
		for _, f := range page {
			frames.append(f)
		}
		if len(page) < pageSize {
			return frames, nil
		}
	}
}
