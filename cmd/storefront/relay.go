package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dwikikusuma/storefront/internal/bootstrap"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/events"
	"github.com/dwikikusuma/storefront/pkg/shutdown"
	"github.com/spf13/cobra"
)

func relayCmd(load loader) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Publish outbox events to the configured broker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load("storefront-relay")
			if err != nil {
				return err
			}

			ctx, cancel := shutdown.WithSignals(cmd.Context())
			defer cancel()

			app, err := bootstrap.Build(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer app.Close()

			publisher, err := bootstrap.NewPublisher(cfg.Events, log)
			if err != nil {
				return fmt.Errorf("events publisher: %w", err)
			}
			defer publisher.Close()

			if once {
				n, err := events.NewRelay(app.Outbox, publisher, cfg.Relay.BatchSize, log).RunOnce(ctx)
				log.Info("relay pass finished", slog.Int("sent", n))
				return err
			}

			runRelay(ctx, app, publisher, cfg.Relay, log)
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "publish one batch and exit")
	return cmd
}

func runRelay(ctx context.Context, app *bootstrap.App, publisher events.Publisher, cfg config.RelayConfig, log *slog.Logger) {
	relay := events.NewRelay(app.Outbox, publisher, cfg.BatchSize, log)
	log.Info("outbox relay starting", slog.Duration("interval", cfg.Interval))
	if err := relay.Run(ctx, cfg.Interval); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("outbox relay stopped", slog.Any("err", err))
	}
}
