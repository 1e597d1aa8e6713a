package grpc

import (
	"context"

	"github.com/dwikikusuma/storefront/pkg/grpcjson"
	"google.golang.org/grpc"
)

type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) PrepareShipment(ctx context.Context, orderID string) (*Shipment, error) {
	out := new(Shipment)
	err := c.cc.Invoke(ctx, methodPrepareShipment, &PrepareShipmentRequest{OrderID: orderID}, out, grpc.CallContentSubtype(grpcjson.Name))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MarkShipped(ctx context.Context, orderID, carrier, tracking string) (*Shipment, error) {
	out := new(Shipment)
	in := &MarkShippedRequest{OrderID: orderID, Carrier: carrier, TrackingNumber: tracking}
	err := c.cc.Invoke(ctx, methodMarkShipped, in, out, grpc.CallContentSubtype(grpcjson.Name))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetShipment(ctx context.Context, orderID string) (*Shipment, error) {
	out := new(Shipment)
	err := c.cc.Invoke(ctx, methodGetShipment, &GetShipmentRequest{OrderID: orderID}, out, grpc.CallContentSubtype(grpcjson.Name))
	if err != nil {
		return nil, err
	}
	return out, nil
}
