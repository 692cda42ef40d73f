// Package command contains the CLI command constructors.
package command

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"partsCatalog/internal/config"
	"partsCatalog/internal/observability"
)

// RootCommand instantiates the root command, with all sub-commands bound.
func RootCommand() *cobra.Command {
	var (
		configFilePath string
		dev            bool
	)
	cmd := &cobra.Command{
		Use:          "parts-catalog [command] [flags]",
		Short:        "The collectible parts catalog API",
		Version:      version(),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFilePath, dev)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger, err := observability.NewLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			logger.WithField("config", cfg.String()).Debug("configuration loaded")
			cmd.SetContext(context.WithValue(cmd.Context(), runtimeKey{}, &runtime{cfg: cfg, log: logger}))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(
		&configFilePath,
		"config", "c",
		"",
		"path to a YAML configuration file (defaults to $CONFIG_FILE)",
	)
	cmd.PersistentFlags().BoolVar(
		&dev,
		"dev",
		false,
		"fall back to a development JWT secret when JWT_SECRET is unset",
	)

	cmd.AddCommand(
		serveCommand(),
		migrateCommand(),
		userCommand(),
	)

	return cmd
}
