package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vittorioromeo/scopex/config"
)

var (
	configFormat string
	configWrite  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Prints the configuration after defaults and the settings file are
merged. With --write the configuration is saved to the settings file,
which creates it with the defaults on first use.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().StringVarP(&configFormat, "format", "f", "json", "output format: json or yaml")
	configCmd.Flags().BoolVarP(&configWrite, "write", "w", false, "save the configuration to the settings file")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configWrite {
		path := configPath
		if path == "" {
			path = config.ConfigPath()
		}
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
		return nil
	}
	return encode(cmd.OutOrStdout(), configFormat, cfg)
}
