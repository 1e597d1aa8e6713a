package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront cart, order, payment and shipment service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (YAML); falls back to CONFIG_FILE")

	load := func(service string) (config.Config, *slog.Logger, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return config.Config{}, nil, fmt.Errorf("load config: %w", err)
		}
		log := logger.New(logger.Options{
			Service:   service,
			Env:       cfg.AppEnv,
			Level:     cfg.LogLevel,
			AddSource: true,
		})
		return cfg, log, nil
	}

	cmd.AddCommand(
		serveCmd(load),
		migrateCmd(load),
		relayCmd(load),
		fulfilCmd(load),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "storefront version %s (build: %s)\n", Version, BuildTime)
			},
		},
	)
	return cmd
}

// loader reads configuration and builds the logger for one subcommand.
type loader func(service string) (config.Config, *slog.Logger, error)
