// Command nuri is the interactive client for the nurid chat daemon.
// It connects over TCP, prints everything the server sends, and forwards
// console input as protocol lines.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nurichat/nurichat/cmd/nuri/cmd"
)

var rootCmd = &cobra.Command{
	Use:   "nuri",
	Short: "Chat client for the nurid daemon",
	Long:  `nuri connects to a running nurid chat server and relays your console input as chat lines.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(cmd.ConnectCmd)
	rootCmd.AddCommand(cmd.InitConfigCmd)
}
