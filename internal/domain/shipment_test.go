package domain

import (
	"errors"
	"testing"
	"time"
)

func testShipment(t *testing.T) *Shipment {
	t.Helper()
	shipment, err := NewShipment(1, 100, testDelivery(), MustMoney("60.00"), time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return shipment
}

func testShippingInfo() ShippingInfo {
	return ShippingInfo{
		Carrier:               "Black Cat",
		TrackingNumber:        "BC-0001",
		ShippedAt:             time.Now().UTC(),
		EstimatedDeliveryDate: time.Now().UTC().Add(48 * time.Hour),
	}
}

func TestNewShipment(t *testing.T) {
	shipment := testShipment(t)

	if shipment.Status != DeliveryStatusPreparing {
		t.Errorf("expected PREPARING, got %s", shipment.Status)
	}
	if shipment.ReceiverName != "Lin Mei" {
		t.Errorf("receiver not copied from delivery info: %s", shipment.ReceiverName)
	}

	if _, err := NewShipment(1, 0, testDelivery(), ZeroMoney(), time.Now().UTC()); err == nil {
		t.Error("expected error for missing order id")
	}
}

func TestShipment_RecordShipping(t *testing.T) {
	t.Run("moves preparing to shipped", func(t *testing.T) {
		shipment := testShipment(t)
		if err := shipment.RecordShipping(testShippingInfo()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if shipment.Status != DeliveryStatusShipped {
			t.Errorf("expected SHIPPED, got %s", shipment.Status)
		}
		if shipment.TrackingNumber != "BC-0001" {
			t.Errorf("unexpected tracking number: %s", shipment.TrackingNumber)
		}
	})

	t.Run("requires carrier and tracking number", func(t *testing.T) {
		shipment := testShipment(t)
		info := testShippingInfo()
		info.TrackingNumber = ""
		if err := shipment.RecordShipping(info); err == nil {
			t.Error("expected error for missing tracking number")
		}
		if shipment.Status != DeliveryStatusPreparing {
			t.Errorf("failed record must not change status, got %s", shipment.Status)
		}
	})

	t.Run("cannot record twice", func(t *testing.T) {
		shipment := testShipment(t)
		if err := shipment.RecordShipping(testShippingInfo()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := shipment.RecordShipping(testShippingInfo()); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestShipment_UpdateStatus(t *testing.T) {
	t.Run("walks the delivery chain", func(t *testing.T) {
		shipment := testShipment(t)
		if err := shipment.RecordShipping(testShippingInfo()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, status := range []DeliveryStatus{DeliveryStatusInTransit, DeliveryStatusOutForDelivery} {
			if err := shipment.UpdateStatus(status, ""); err != nil {
				t.Fatalf("unexpected error moving to %s: %v", status, err)
			}
		}
	})

	t.Run("rejects skipping ahead", func(t *testing.T) {
		shipment := testShipment(t)
		if err := shipment.UpdateStatus(DeliveryStatusOutForDelivery, ""); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("failure is reachable from any moving status", func(t *testing.T) {
		shipment := testShipment(t)
		if err := shipment.RecordShipping(testShippingInfo()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := shipment.UpdateStatus(DeliveryStatusFailed, "address unreachable"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if shipment.Notes != "address unreachable" {
			t.Errorf("unexpected notes: %s", shipment.Notes)
		}
		if !shipment.Status.IsFinal() {
			t.Error("failed must be final")
		}
	})
}

func TestShipment_MarkDelivered(t *testing.T) {
	shipment := testShipment(t)
	if err := shipment.RecordShipping(testShippingInfo()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deliveredAt := time.Now().UTC()
	if err := shipment.MarkDelivered(deliveredAt); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition before out-for-delivery, got %v", err)
	}

	for _, status := range []DeliveryStatus{DeliveryStatusInTransit, DeliveryStatusOutForDelivery} {
		if err := shipment.UpdateStatus(status, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if err := shipment.MarkDelivered(time.Time{}); err == nil {
		t.Error("expected error for zero delivery date")
	}
	if err := shipment.MarkDelivered(deliveredAt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shipment.Status != DeliveryStatusDelivered {
		t.Errorf("expected DELIVERED, got %s", shipment.Status)
	}
	if !shipment.ActualDeliveryDate.Equal(deliveredAt) {
		t.Error("actual delivery date not recorded")
	}
}

func TestParseDeliveryStatus(t *testing.T) {
	if _, err := ParseDeliveryStatus("IN_TRANSIT"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := ParseDeliveryStatus("LOST"); err == nil {
		t.Error("expected error for unknown status")
	}
}
