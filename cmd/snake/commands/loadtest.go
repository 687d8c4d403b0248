package commands

import (
	"time"

	"github.com/battlesnakeio/snake/rules"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	games           int
	loadTestTimeout time.Duration
)

func init() {
	loadTestCmd.Flags().StringVarP(&configFile, "config", "c", "snake-config.json", "specify the location of the game config file")
	loadTestCmd.Flags().IntVarP(&games, "num-games", "n", 10, "number of games to create and run for the load test")
	loadTestCmd.Flags().Int32Var(&cr.TickInterval, "tick-interval", 10, "milliseconds between two moves of each game")
	loadTestCmd.Flags().DurationVar(&loadTestTimeout, "timeout", 5*time.Minute, "give up waiting for the games after this long")
}

type statusUpdate struct {
	id     string
	status rules.GameStatus
	score  int32
}

var loadTestCmd = &cobra.Command{
	Use:   "load-test",
	Short: "run a load test against the server with autopilot games",
	Args: func(c *cobra.Command, args []string) error {
		return loadCreateRequest()
	},
	RunE: func(*cobra.Command, []string) error {
		cr.Autopilot = true
		start := time.Now()

		log.Info("Creating games")
		ids := make([]string, games)
		var g errgroup.Group
		for i := 0; i < games; i++ {
			i := i
			g.Go(func() error {
				resp, err := createGame()
				if err != nil {
					return err
				}
				ids[i] = resp.ID
				return startGame(resp.ID)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		statuses := map[string]rules.GameStatus{}
		updates := make(chan statusUpdate)
		for _, id := range ids {
			statuses[id] = ""
			go checkStatus(id, updates)
		}

		timeout := time.After(loadTestTimeout)
		for {
			select {
			case <-timeout:
				return errors.Errorf("games still running after %s", loadTestTimeout)
			case s := <-updates:
				log.WithFields(log.Fields{
					"id":     s.id,
					"status": s.status,
					"score":  s.score,
				}).Debug("Game Status")
				statuses[s.id] = s.status

				done := true
				for _, s := range statuses {
					if !s.Finished() {
						done = false
					}
				}

				if done {
					log.WithFields(log.Fields{
						"elapsed": time.Since(start),
						"games":   games,
					}).Info("All games complete")
					return nil
				}
			}
		}
	},
}

var updateFrequency = 300 * time.Millisecond

func checkStatus(id string, updates chan<- statusUpdate) {
	t := time.NewTicker(updateFrequency)
	defer t.Stop()
	for range t.C {
		sr := getStatus(id)
		if sr == nil {
			continue
		}
		u := statusUpdate{id: id, status: sr.Game.Status}
		if sr.LastFrame != nil {
			u.score = sr.LastFrame.Score
		}
		updates <- u
		if sr.Game.Status.Finished() {
			return
		}
	}
}
