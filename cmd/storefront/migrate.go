package main

import (
	"fmt"
	"log/slog"

	"github.com/dwikikusuma/storefront/migrations"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/postgres"
	"github.com/spf13/cobra"
)

func migrateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema to the configured Postgres database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load("storefront-migrate")
			if err != nil {
				return err
			}
			if cfg.Store.Driver != config.StorePostgres {
				return fmt.Errorf("migrate needs store.driver %q, got %q", config.StorePostgres, cfg.Store.Driver)
			}

			pool, err := postgres.Open(cmd.Context(), cfg.Store.DSN(), cfg.Store.Postgres.MaxConns)
			if err != nil {
				return fmt.Errorf("open postgres: %w", err)
			}
			defer pool.Close()

			applied, err := migrations.Apply(cmd.Context(), pool)
			if err != nil {
				return err
			}
			for _, name := range applied {
				log.Info("migration applied", slog.String("file", name))
			}
			return nil
		},
	}
}
