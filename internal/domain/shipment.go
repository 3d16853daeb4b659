package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type DeliveryStatus string

const (
	DeliveryStatusPreparing      DeliveryStatus = "PREPARING"
	DeliveryStatusShipped        DeliveryStatus = "SHIPPED"
	DeliveryStatusInTransit      DeliveryStatus = "IN_TRANSIT"
	DeliveryStatusOutForDelivery DeliveryStatus = "OUT_FOR_DELIVERY"
	DeliveryStatusDelivered      DeliveryStatus = "DELIVERED"
	DeliveryStatusFailed         DeliveryStatus = "FAILED"
)

var deliveryTransitions = transitions[DeliveryStatus]{
	DeliveryStatusPreparing:      {DeliveryStatusShipped},
	DeliveryStatusShipped:        {DeliveryStatusInTransit, DeliveryStatusFailed},
	DeliveryStatusInTransit:      {DeliveryStatusOutForDelivery, DeliveryStatusFailed},
	DeliveryStatusOutForDelivery: {DeliveryStatusDelivered, DeliveryStatusFailed},
}

func (s DeliveryStatus) IsFinal() bool {
	return s == DeliveryStatusDelivered || s == DeliveryStatusFailed
}

func (s DeliveryStatus) CanTransitionTo(to DeliveryStatus) bool {
	return deliveryTransitions.allows(s, to)
}

func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	switch DeliveryStatus(s) {
	case DeliveryStatusPreparing, DeliveryStatusShipped, DeliveryStatusInTransit,
		DeliveryStatusOutForDelivery, DeliveryStatusDelivered, DeliveryStatusFailed:
		return DeliveryStatus(s), nil
	}
	return "", fmt.Errorf("unknown delivery status %q", s)
}

// ShippingInfo is the carrier data staff fill in when a parcel leaves the
// warehouse.
type ShippingInfo struct {
	Carrier               string
	TrackingNumber        string
	ShippedAt             time.Time
	EstimatedDeliveryDate time.Time
}

func (s ShippingInfo) Validate() error {
	if strings.TrimSpace(s.Carrier) == "" {
		return errors.New("carrier is required")
	}
	if strings.TrimSpace(s.TrackingNumber) == "" {
		return errors.New("tracking number is required")
	}
	if s.ShippedAt.IsZero() {
		return errors.New("shipped-at time is required")
	}
	return nil
}

// Shipment tracks one order's delivery. The receiver fields are copied from
// the order's delivery info at creation and never change afterwards.
type Shipment struct {
	ID              int64
	OrderID         int64
	ReceiverName    string
	ReceiverPhone   string
	ShippingAddress string
	DeliveryMethod  DeliveryMethod
	DeliveryNote    string
	ShippingFee     Money

	Carrier               string
	TrackingNumber        string
	ShippedAt             time.Time
	EstimatedDeliveryDate time.Time

	Status             DeliveryStatus
	ActualDeliveryDate time.Time
	Notes              string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewShipment(id, orderID int64, delivery DeliveryInfo, shippingFee Money, now time.Time) (*Shipment, error) {
	if orderID == 0 {
		return nil, errors.New("order id is required")
	}
	if err := delivery.Validate(); err != nil {
		return nil, err
	}

	return &Shipment{
		ID:              id,
		OrderID:         orderID,
		ReceiverName:    delivery.ReceiverName,
		ReceiverPhone:   delivery.ReceiverPhone,
		ShippingAddress: delivery.ShippingAddress,
		DeliveryMethod:  delivery.Method,
		DeliveryNote:    delivery.Note,
		ShippingFee:     shippingFee,
		Status:          DeliveryStatusPreparing,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// RecordShipping captures carrier details and moves the shipment to
// SHIPPED. Only a preparing shipment can be shipped.
func (s *Shipment) RecordShipping(info ShippingInfo) error {
	if s.Status != DeliveryStatusPreparing {
		return fmt.Errorf("shipment for order %d: record shipping in status %s: %w", s.OrderID, s.Status, ErrInvalidTransition)
	}
	if err := info.Validate(); err != nil {
		return err
	}

	s.Carrier = info.Carrier
	s.TrackingNumber = info.TrackingNumber
	s.ShippedAt = info.ShippedAt
	s.EstimatedDeliveryDate = info.EstimatedDeliveryDate
	s.Status = DeliveryStatusShipped
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateStatus applies a staff-driven status change against the transition
// table. Notes are optional and replace the previous value when given.
func (s *Shipment) UpdateStatus(to DeliveryStatus, notes string) error {
	if !deliveryTransitions.allows(s.Status, to) {
		return fmt.Errorf("shipment for order %d: %s -> %s: %w", s.OrderID, s.Status, to, ErrInvalidTransition)
	}

	s.Status = to
	if strings.TrimSpace(notes) != "" {
		s.Notes = notes
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Shipment) MarkDelivered(actualDeliveryDate time.Time) error {
	if s.Status != DeliveryStatusOutForDelivery {
		return fmt.Errorf("shipment for order %d: mark delivered in status %s: %w", s.OrderID, s.Status, ErrInvalidTransition)
	}
	if actualDeliveryDate.IsZero() {
		return errors.New("actual delivery date is required")
	}

	s.Status = DeliveryStatusDelivered
	s.ActualDeliveryDate = actualDeliveryDate
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Shipment) BelongsToOrder(orderID int64) bool {
	return s.OrderID == orderID
}
