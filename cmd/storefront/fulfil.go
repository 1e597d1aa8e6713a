package main

import (
	"encoding/json"
	"fmt"

	shipmentgrpc "github.com/dwikikusuma/storefront/internal/shipment/grpc"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// fulfilCmd is the warehouse operator's client for the fulfilment gRPC service.
func fulfilCmd(load loader) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "fulfil",
		Short: "Drive shipments through the fulfilment gRPC service",
	}
	cmd.PersistentFlags().StringVar(&addr, "addr", "", "fulfilment service address (default localhost:<grpc_port>)")

	call := func(cmd *cobra.Command, fn func(c *shipmentgrpc.Client) (*shipmentgrpc.Shipment, error)) error {
		if addr == "" {
			cfg, _, err := load("storefront-fulfil")
			if err != nil {
				return err
			}
			addr = fmt.Sprintf("localhost:%d", cfg.GRPCPort)
		}

		conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("dial %s: %w", addr, err)
		}
		defer conn.Close()

		sh, err := fn(shipmentgrpc.NewClient(conn))
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(sh)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "prepare ORDER_ID",
			Short: "Open a shipment for a paid order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(cmd, func(c *shipmentgrpc.Client) (*shipmentgrpc.Shipment, error) {
					return c.PrepareShipment(cmd.Context(), args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "ship ORDER_ID CARRIER TRACKING_NUMBER",
			Short: "Hand an order to the carrier",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(cmd, func(c *shipmentgrpc.Client) (*shipmentgrpc.Shipment, error) {
					return c.MarkShipped(cmd.Context(), args[0], args[1], args[2])
				})
			},
		},
		&cobra.Command{
			Use:   "status ORDER_ID",
			Short: "Show the shipment of an order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(cmd, func(c *shipmentgrpc.Client) (*shipmentgrpc.Shipment, error) {
					return c.GetShipment(cmd.Context(), args[0])
				})
			},
		},
	)
	return cmd
}
