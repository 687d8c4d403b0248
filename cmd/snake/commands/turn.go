package commands

import (
	"errors"
	"fmt"

	"github.com/battlesnakeio/snake/api"
	"github.com/battlesnakeio/snake/rules"
	"github.com/spf13/cobra"
)

var turnCmd = &cobra.Command{
	Use:   "turn [up|down|left|right]",
	Short: "changes the direction of a running game",
	Args: func(c *cobra.Command, args []string) error {
		if len(gameID) == 0 {
			return errors.New("game id is required")
		}
		if len(args) != 1 {
			return errors.New("exactly one direction is required")
		}
		_, err := rules.ParseDirection(args[0])
		return err
	},
	RunE: func(c *cobra.Command, args []string) error {
		return call("POST", fmt.Sprintf("/games/%s/direction", gameID),
			&api.DirectionRequest{Direction: args[0]}, nil)
	},
}

func init() {
	turnCmd.Flags().StringVarP(&gameID, "game-id", "g", "", "the game id of the game to steer")
}
