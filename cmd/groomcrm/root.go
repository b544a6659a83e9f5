// Root command for the groomcrm CLI.
package main

import (
	"go.uber.org/zap"

	"github.com/groomcrm/groomcrm/internal/logging"
	"github.com/groomcrm/groomcrm/internal/paths"
	"github.com/groomcrm/groomcrm/pkg/groom"
	"github.com/spf13/cobra"
)

// Exit codes: 0 success, 1 user error, 2 system error.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
	flagYes       bool
)

// Values loaded from config.yaml by PersistentPreRunE so all subcommands
// can use them.
var (
	configDataDir       string
	configGoogleBaseURL string
)

// logger is initialized from config in PersistentPreRunE.
var logger *zap.Logger

var rootCmd = &cobra.Command{
	Use:     "groomcrm",
	Short:   "Groom CRM is a local-first client and visit tracker for dog groomers",
	Version: groom.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}
		configDataDir = cfg.GetString(cfgKeyDataDir)
		configGoogleBaseURL = cfg.GetString(cfgKeyGoogleBaseURL)

		logger, err = logging.New(cfg.GetString(cfgKeyLogLevel), cfg.GetString(cfgKeyLogFormat))
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagYes, "yes", false, "answer yes to confirmation prompts")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(clientCmd)
	rootCmd.AddCommand(dogCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(visitCmd)
	rootCmd.AddCommand(photoCmd)
	rootCmd.AddCommand(folderCmd)
	rootCmd.AddCommand(backupCmd)
}

// resolveDataDir applies the precedence --data-dir flag > config.yaml
// data_dir > GROOMCRM_DATA_DIR env > default.
func resolveDataDir() string {
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}

// resolveConfigDir applies the precedence --config-dir flag >
// GROOMCRM_CONFIG_DIR env > platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}
