package grpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/dwikikusuma/storefront/internal/shipment/app"
	"github.com/dwikikusuma/storefront/internal/shipment/domain"
	"github.com/dwikikusuma/storefront/pkg/apperr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Server struct {
	svc *app.Service
}

func NewServer(svc *app.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) PrepareShipment(ctx context.Context, req *PrepareShipmentRequest) (*Shipment, error) {
	if req == nil || req.OrderID == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}
	sh, err := s.svc.Prepare(ctx, req.OrderID)
	if err != nil {
		return nil, mapErr(err)
	}
	return toWire(sh), nil
}

func (s *Server) MarkShipped(ctx context.Context, req *MarkShippedRequest) (*Shipment, error) {
	if req == nil || req.OrderID == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}
	sh, err := s.svc.MarkShipped(ctx, req.OrderID, req.Carrier, req.TrackingNumber)
	if err != nil {
		return nil, mapErr(err)
	}
	return toWire(sh), nil
}

func (s *Server) GetShipment(ctx context.Context, req *GetShipmentRequest) (*Shipment, error) {
	if req == nil || req.OrderID == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}
	sh, err := s.svc.Get(ctx, req.OrderID)
	if err != nil {
		return nil, mapErr(err)
	}
	return toWire(sh), nil
}

func toWire(sh domain.Shipment) *Shipment {
	out := &Shipment{
		OrderID:        sh.OrderID,
		Status:         string(sh.Status),
		Carrier:        sh.Carrier,
		TrackingNumber: sh.TrackingNumber,
	}
	if sh.ShippedAt != nil {
		out.ShippedAtUnix = sh.ShippedAt.Unix()
	}
	if sh.DeliveredAt != nil {
		out.DeliveredAtUnix = sh.DeliveredAt.Unix()
	}
	return out
}

// mapErr passes domain errors through with their own status and hides
// everything else behind codes.Internal.
func mapErr(err error) error {
	if apperr.KindOf(err) != apperr.KindUnknown {
		return err
	}
	return status.Error(codes.Internal, "internal error")
}

// LoggingInterceptor logs every unary call with its outcome code.
func LoggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		level := slog.LevelInfo
		if code == codes.Internal || code == codes.Unknown {
			level = slog.LevelError
		}
		log.Log(ctx, level, "grpc call",
			slog.String("method", info.FullMethod),
			slog.String("code", code.String()),
			slog.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}
