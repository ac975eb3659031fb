package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nurichat/nurichat/internal/config"
)

var configPath string

// InitConfigCmd writes the default server configuration file so operators
// have a commented starting point to edit.
var InitConfigCmd = &cobra.Command{
	Use:   "initconfig",
	Short: "Write the default nurichat configuration file",
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("unable to resolve home directory: %w", err)
			}
			path = filepath.Join(home, ".nurichat", "nurichat.yaml")
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", path)
		return nil
	},
}

func init() {
	InitConfigCmd.Flags().StringVarP(&configPath, "path", "p", "", "Target path (default ~/.nurichat/nurichat.yaml)")
}
