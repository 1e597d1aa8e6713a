package domain

import (
	"time"

	"github.com/dwikikusuma/storefront/pkg/apperr"
)

type Status string

const (
	StatusPreparing Status = "PREPARING"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
)

var (
	ErrShipmentNotFound = apperr.NotFound("SHIPMENT_NOT_FOUND", "shipment not found")
	ErrInvalidShipment  = apperr.Validation("INVALID_SHIPMENT", "carrier and tracking number are required")
)

type Shipment struct {
	OrderID        string
	Status         Status
	Carrier        string
	TrackingNumber string
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
