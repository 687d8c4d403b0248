package commands

import (
	"errors"
	"fmt"

	"github.com/davecgh/go-spew/spew"

	"github.com/battlesnakeio/snake/controller"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "gets the status of a game from the snake server",
	Args: func(c *cobra.Command, args []string) error {
		if len(gameID) == 0 {
			return errors.New("game id is required")
		}
		return nil
	},
	Run: func(*cobra.Command, []string) {
		spew.Dump(getStatus(gameID))
	},
}

var (
	gameID string
)

func init() {
	statusCmd.Flags().StringVarP(&gameID, "game-id", "g", "", "the game id of the game to get the status of")
}

func getStatus(id string) *controller.GameStatus {
	sr := &controller.GameStatus{}
	if err := call("GET", fmt.Sprintf("/games/%s", id), nil, sr); err != nil {
		log.WithError(err).WithField("id", id).Info("unable to get status")
		return nil
	}
	return sr
}
