package commands

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/battlesnakeio/snake/api"
	"github.com/battlesnakeio/snake/rules"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "creates a new game on the snake server",
	Args: func(c *cobra.Command, args []string) error {
		return loadCreateRequest()
	},
	RunE: func(*cobra.Command, []string) error {
		resp, err := createGame()
		if err != nil {
			return err
		}
		fmt.Printf(`{"ID": "%s"}`+"\n", resp.ID)
		return nil
	},
}

// loadCreateRequest reads the game config file into cr. A missing file keeps
// the server defaults.
func loadCreateRequest() error {
	data, err := ioutil.ReadFile(configFile) // nolint: gosec
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cr)
}

func createGame() (*api.CreateResponse, error) {
	resp := &api.CreateResponse{}
	if err := call("POST", "/games", cr, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

var (
	configFile string
	cr         = &rules.CreateRequest{}
)

func init() {
	createCmd.Flags().StringVarP(&configFile, "config", "c", "snake-config.json", "specify the location of the game config file")
	createCmd.Flags().BoolVar(&cr.Autopilot, "autopilot", false, "let the server steer the snake")
}
