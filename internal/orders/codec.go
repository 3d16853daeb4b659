package orders

import (
	"encoding/json"
	"fmt"

	"github.com/mimimart/checkout/internal/domain"
)

// Delivery info and product snapshots are stored as versioned JSON blobs.
// The version field lets the format evolve without touching stored rows;
// the domain aggregates never see these records.

const blobVersion = 1

type deliveryInfoRecord struct {
	Version         int    `json:"v"`
	ReceiverName    string `json:"receiver_name"`
	ReceiverPhone   string `json:"receiver_phone"`
	ShippingAddress string `json:"shipping_address"`
	Method          string `json:"method"`
	Note            string `json:"note,omitempty"`
}

func encodeDeliveryInfo(d domain.DeliveryInfo) ([]byte, error) {
	return json.Marshal(deliveryInfoRecord{
		Version:         blobVersion,
		ReceiverName:    d.ReceiverName,
		ReceiverPhone:   d.ReceiverPhone,
		ShippingAddress: d.ShippingAddress,
		Method:          string(d.Method),
		Note:            d.Note,
	})
}

func decodeDeliveryInfo(data []byte) (domain.DeliveryInfo, error) {
	var rec deliveryInfoRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.DeliveryInfo{}, fmt.Errorf("decode delivery info: %w", err)
	}
	if rec.Version != blobVersion {
		return domain.DeliveryInfo{}, fmt.Errorf("decode delivery info: unsupported version %d", rec.Version)
	}
	return domain.DeliveryInfo{
		ReceiverName:    rec.ReceiverName,
		ReceiverPhone:   rec.ReceiverPhone,
		ShippingAddress: rec.ShippingAddress,
		Method:          domain.DeliveryMethod(rec.Method),
		Note:            rec.Note,
	}, nil
}

type snapshotRecord struct {
	Version            int    `json:"v"`
	Name               string `json:"name"`
	PriceCents         int64  `json:"price_cents"`
	OriginalPriceCents int64  `json:"original_price_cents"`
	ImageURL           string `json:"image_url,omitempty"`
}

func encodeSnapshot(s domain.ProductSnapshot) ([]byte, error) {
	return json.Marshal(snapshotRecord{
		Version:            blobVersion,
		Name:               s.Name,
		PriceCents:         s.Price.Cents(),
		OriginalPriceCents: s.OriginalPrice.Cents(),
		ImageURL:           s.ImageURL,
	})
}

func decodeSnapshot(data []byte) (domain.ProductSnapshot, error) {
	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.ProductSnapshot{}, fmt.Errorf("decode product snapshot: %w", err)
	}
	if rec.Version != blobVersion {
		return domain.ProductSnapshot{}, fmt.Errorf("decode product snapshot: unsupported version %d", rec.Version)
	}

	price, err := domain.MoneyFromCents(rec.PriceCents)
	if err != nil {
		return domain.ProductSnapshot{}, err
	}
	original, err := domain.MoneyFromCents(rec.OriginalPriceCents)
	if err != nil {
		return domain.ProductSnapshot{}, err
	}

	return domain.ProductSnapshot{
		Name:          rec.Name,
		Price:         price,
		OriginalPrice: original,
		ImageURL:      rec.ImageURL,
	}, nil
}
