// Init command for the groomcrm CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize groomcrm storage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return fmt.Errorf("init: %w", err)
		}
		if err := ensureConfigDir(configDir); err != nil {
			return fmt.Errorf("init: %w", err)
		}
		if err := ensureDefaultConfigFile(configDir); err != nil {
			return fmt.Errorf("init: %w", err)
		}

		// Attach creates the data directory and applies migrations.
		backend, err := attachBackend()
		if err != nil {
			return fmt.Errorf("init: %w", err)
		}
		defer backend.Detach()

		fmt.Println("Groom CRM initialized successfully")
		fmt.Println("  config:", configDir)
		fmt.Println("  data:  ", resolveDataDir())
		return nil
	},
}
