package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rushteam/reviewkit/config"
	"github.com/rushteam/reviewkit/pkg/logging"
)

var (
	configPath       string
	flagInteractions string
	flagMatrix       string
	flagLogLevel     string

	appConfig *config.App
)

var rootCmd = &cobra.Command{
	Use:   "reviewkit",
	Short: "reviewkit - review aggregation and recommendation engine",
	Long: `reviewkit aggregates per-item review records (sentiment counts, keywords,
average scores) and recommends items from a user similarity matrix, falling
back to popularity for unknown users.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if flagInteractions != "" {
			cfg.Data.Interactions = flagInteractions
		}
		if flagMatrix != "" {
			cfg.Data.Matrix = flagMatrix
		}
		if flagLogLevel != "" {
			cfg.Log.Level = flagLogLevel
		}

		logging.Init(logging.Config{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			Output: cmd.ErrOrStderr(),
		})
		appConfig = cfg
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagInteractions, "interactions", "", "interactions CSV (URL or path)")
	rootCmd.PersistentFlags().StringVar(&flagMatrix, "matrix", "", "similarity matrix CSV (URL or path)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd, recommendCmd, itemsCmd, itemCmd, searchCmd)
}

// Execute 执行根命令
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "error:", err)
		return err
	}
	return nil
}
