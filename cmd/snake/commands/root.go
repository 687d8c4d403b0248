package commands

import (
	"fmt"
	"os"

	"github.com/battlesnakeio/snake/cmd/snake/commands/server"
	"github.com/battlesnakeio/snake/version"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "snake",
	Short:   "snake runs and plays single player snake games",
	Version: version.Version,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		log.SetLevel(level)
		return nil
	},
	Run: func(c *cobra.Command, args []string) {
		server.RootCmd.Run(c, args)
	},
}

var (
	apiAddr  string
	logLevel string
)

// Execute runs the root command
func Execute() {
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api-addr", "http://localhost:3005", "address of the api server")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level, one of: [debug, info, warn, error]")
	rootCmd.Flags().AddFlagSet(server.RootCmd.Flags())

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(turnCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(loadTestCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(server.RootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
