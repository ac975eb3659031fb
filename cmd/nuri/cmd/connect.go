// Package cmd provides the CLI commands of the nuri client.
package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nurichat/nurichat/internal/client"
	"github.com/nurichat/nurichat/internal/logging"
	"github.com/nurichat/nurichat/protocol"
)

var (
	serverAddr string
	quitToken  string
	verbose    bool
)

// ConnectCmd opens an interactive session against a running daemon.
var ConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to a chat server",
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		logCfg := logging.Config{Level: "warn", ToStderr: true}
		if verbose {
			logCfg.Level = "debug"
		}
		log := logging.New(logCfg)

		c, err := client.Dial(client.Options{
			Address:   serverAddr,
			QuitToken: quitToken,
			In:        os.Stdin,
			Out:       os.Stdout,
			Log:       log,
		})
		if err != nil {
			return err
		}

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)

		return c.Run(interrupt)
	},
}

func init() {
	ConnectCmd.Flags().StringVarP(&serverAddr, "addr", "a", "127.0.0.1:5000", "Server address (host:port)")
	ConnectCmd.Flags().StringVar(&quitToken, "quit-token", protocol.Default().QuitToken, "Line that ends the session")
	ConnectCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to stderr")
}
