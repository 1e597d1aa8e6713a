package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront/internal/bootstrap"
	shipmentgrpc "github.com/dwikikusuma/storefront/internal/shipment/grpc"
	"github.com/dwikikusuma/storefront/pkg/events"
	"github.com/dwikikusuma/storefront/pkg/shutdown"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

const stopTimeout = 10 * time.Second

func serveCmd(load loader) *cobra.Command {
	var withRelay bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the fulfilment gRPC service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load("storefront")
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

			// The publisher is connected before any listener starts, so a bad
			// broker address fails the command instead of leaving servers up.
			var publisher events.Publisher
			if withRelay {
				if publisher, err = bootstrap.NewPublisher(cfg.Events, log); err != nil {
					return fmt.Errorf("events publisher: %w", err)
				}
				defer publisher.Close()
			}

			if !cfg.Auth.TrustGateway {
				log.Warn("auth.trust_gateway is off, role header ignored and admin routes unreachable")
			}

			grpcAddr := fmt.Sprintf(":%d", cfg.GRPCPort)
			lis, err := net.Listen("tcp", grpcAddr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", grpcAddr, err)
			}

			grpcServer := grpc.NewServer(grpc.UnaryInterceptor(shipmentgrpc.LoggingInterceptor(log)))
			shipmentgrpc.RegisterFulfilmentServer(grpcServer, shipmentgrpc.NewServer(app.Shipments))

			httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
			server := &http.Server{
				Addr:              httpAddr,
				Handler:           app.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       15 * time.Second,
				WriteTimeout:      cfg.Payment.Timeout + 15*time.Second,
				IdleTimeout:       60 * time.Second,
			}

			var wg sync.WaitGroup

			wg.Add(1)
			go func() {
				defer wg.Done()
				log.Info("grpc starting", slog.String("addr", grpcAddr))
				if err := grpcServer.Serve(lis); err != nil {
					log.Error("grpc serve error", slog.Any("err", err))
					cancel()
				}
			}()

			wg.Add(1)
			go func() {
				defer wg.Done()
				log.Info("http server starting", slog.String("addr", httpAddr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server error", slog.Any("err", err))
					cancel()
				}
			}()

			if withRelay {
				wg.Add(1)
				go func() {
					defer wg.Done()
					runRelay(ctx, app, publisher, cfg.Relay, log)
				}()
			}

			<-ctx.Done()
			log.Info("shutdown requested")

			stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
			defer stopCancel()

			if err := server.Shutdown(stopCtx); err != nil {
				log.Error("http shutdown error", slog.Any("err", err))
			}

			stopped := make(chan struct{})
			go func() {
				grpcServer.GracefulStop()
				close(stopped)
			}()

			select {
			case <-stopCtx.Done():
				log.Warn("graceful stop timeout, forcing stop")
				grpcServer.Stop()
			case <-stopped:
			}

			wg.Wait()
			log.Info("bye")
			return nil
		},
	}

	cmd.Flags().BoolVar(&withRelay, "relay", true, "also run the outbox relay in this process")
	return cmd
}
