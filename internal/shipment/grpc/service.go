package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "storefront.fulfilment.v1.FulfilmentService"

const (
	methodPrepareShipment = "/" + ServiceName + "/PrepareShipment"
	methodMarkShipped     = "/" + ServiceName + "/MarkShipped"
	methodGetShipment     = "/" + ServiceName + "/GetShipment"
)

type PrepareShipmentRequest struct {
	OrderID string `json:"order_id"`
}

type MarkShippedRequest struct {
	OrderID        string `json:"order_id"`
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
}

type GetShipmentRequest struct {
	OrderID string `json:"order_id"`
}

type Shipment struct {
	OrderID         string `json:"order_id"`
	Status          string `json:"status"`
	Carrier         string `json:"carrier,omitempty"`
	TrackingNumber  string `json:"tracking_number,omitempty"`
	ShippedAtUnix   int64  `json:"shipped_at_unix,omitempty"`
	DeliveredAtUnix int64  `json:"delivered_at_unix,omitempty"`
}

// FulfilmentServer is the warehouse-facing API. Messages travel with the
// grpcjson codec.
type FulfilmentServer interface {
	PrepareShipment(ctx context.Context, req *PrepareShipmentRequest) (*Shipment, error)
	MarkShipped(ctx context.Context, req *MarkShippedRequest) (*Shipment, error)
	GetShipment(ctx context.Context, req *GetShipmentRequest) (*Shipment, error)
}

func RegisterFulfilmentServer(s grpc.ServiceRegistrar, srv FulfilmentServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FulfilmentServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PrepareShipment", Handler: prepareShipmentHandler},
		{MethodName: "MarkShipped", Handler: markShippedHandler},
		{MethodName: "GetShipment", Handler: getShipmentHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func prepareShipmentHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PrepareShipmentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FulfilmentServer).PrepareShipment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodPrepareShipment}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FulfilmentServer).PrepareShipment(ctx, req.(*PrepareShipmentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func markShippedHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(MarkShippedRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FulfilmentServer).MarkShipped(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodMarkShipped}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FulfilmentServer).MarkShipped(ctx, req.(*MarkShippedRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getShipmentHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetShipmentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FulfilmentServer).GetShipment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetShipment}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FulfilmentServer).GetShipment(ctx, req.(*GetShipmentRequest))
	}
	return interceptor(ctx, in, info, handler)
}
