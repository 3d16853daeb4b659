package orders

import (
	"testing"

	"github.com/mimimart/checkout/internal/domain"
)

func TestDeliveryInfoCodec(t *testing.T) {
	info := domain.DeliveryInfo{
		ReceiverName:    "Lin Mei",
		ReceiverPhone:   "0912345678",
		ShippingAddress: "No. 7, Sec. 1, Zhongshan Rd, Taipei",
		Method:          domain.DeliveryMethodPickup,
		Note:            "leave at counter",
	}

	data, err := encodeDeliveryInfo(info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded, err := decodeDeliveryInfo(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded != info {
		t.Errorf("round trip changed the value: %+v != %+v", decoded, info)
	}
}

func TestDeliveryInfoCodec_UnknownVersion(t *testing.T) {
	if _, err := decodeDeliveryInfo([]byte(`{"v":2,"receiver_name":"x"}`)); err == nil {
		t.Error("expected error for unknown blob version")
	}
	if _, err := decodeDeliveryInfo([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed blob")
	}
}

func TestSnapshotCodec(t *testing.T) {
	snapshot := domain.ProductSnapshot{
		Name:          "Oolong Tea 300ml",
		Price:         domain.MustMoney("25.00"),
		OriginalPrice: domain.MustMoney("30.00"),
		ImageURL:      "https://cdn.mimimart.example/p/10.jpg",
	}

	data, err := encodeSnapshot(snapshot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded, err := decodeSnapshot(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded != snapshot {
		t.Errorf("round trip changed the value: %+v != %+v", decoded, snapshot)
	}
}

func TestSnapshotCodec_Rejections(t *testing.T) {
	if _, err := decodeSnapshot([]byte(`{"v":0,"name":"x"}`)); err == nil {
		t.Error("expected error for unknown blob version")
	}
	if _, err := decodeSnapshot([]byte(`{"v":1,"name":"x","price_cents":-5}`)); err == nil {
		t.Error("expected error for negative stored price")
	}
}
