package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "starts a created or stopped game",
	Args: func(c *cobra.Command, args []string) error {
		if len(gameID) == 0 {
			return errors.New("game id is required")
		}
		return nil
	},
	RunE: func(*cobra.Command, []string) error {
		if err := startGame(gameID); err != nil {
			return err
		}
		fmt.Println("started", gameID)
		return nil
	},
}

func init() {
	startCmd.Flags().StringVarP(&gameID, "game-id", "g", "", "the game id of the game to start")
}

func startGame(id string) error {
	return call("POST", fmt.Sprintf("/games/%s/start", id), nil, nil)
}
