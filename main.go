package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vittorioromeo/scopex/config"
	"github.com/vittorioromeo/scopex/editor"
)

var (
	verbose    bool
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "scopex [files...]",
	Short: "Expand selections to their enclosing bracket pair or paragraph",
	Long: `scopex grows a selection to the innermost scope around it: a matched
{}, [] or () pair, or the paragraph between blank lines when no bracket
encloses it.

Run with files to open them in the terminal viewer. Use "scopex expand"
to resolve scopes from scripts.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runViewer,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "settings file (default $"+config.EnvConfigPath+" or ~/.config/scopex/settings.json)")

	rootCmd.AddCommand(expandCmd, configCmd)
}

// runViewer opens the terminal viewer. The log goes to a file so it does
// not draw over the screen.
func runViewer(cmd *cobra.Command, args []string) error {
	var err error
	if cfg.LogFile == "" {
		logger = zap.NewNop()
	} else if logger, err = cfg.NewLogger(verbose, cfg.LogFile); err != nil {
		return err
	}

	for _, f := range args {
		if info, err := os.Stat(f); err == nil && info.IsDir() {
			return fmt.Errorf("%s is a directory", f)
		}
	}

	logger.Info("starting viewer", zap.Strings("files", args))
	return editor.New(cfg, logger).Run(args)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
