package shipments

import (
	"context"
	"database/sql"
	"time"

	"github.com/mimimart/checkout/internal/domain"
	"github.com/mimimart/checkout/internal/storage"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateTx(ctx context.Context, tx storage.DBTX, s *domain.Shipment) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO shipments (
			id, order_id, receiver_name, receiver_phone, shipping_address,
			delivery_method, delivery_note, shipping_fee_cents, status,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, s.ID, s.OrderID, s.ReceiverName, s.ReceiverPhone, s.ShippingAddress,
		s.DeliveryMethod, s.DeliveryNote, s.ShippingFee.Cents(), s.Status,
		s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *Repository) GetByOrderID(ctx context.Context, orderID int64) (*domain.Shipment, error) {
	var (
		s                 domain.Shipment
		feeCents          int64
		carrier           sql.NullString
		trackingNumber    sql.NullString
		shippedAt         sql.NullTime
		estimatedDelivery sql.NullTime
		actualDelivery    sql.NullTime
		notes             sql.NullString
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, receiver_name, receiver_phone, shipping_address,
		       delivery_method, delivery_note, shipping_fee_cents,
		       carrier, tracking_number, shipped_at, estimated_delivery_date,
		       status, actual_delivery_date, notes, created_at, updated_at
		FROM shipments
		WHERE order_id = $1
	`, orderID).Scan(
		&s.ID, &s.OrderID, &s.ReceiverName, &s.ReceiverPhone, &s.ShippingAddress,
		&s.DeliveryMethod, &s.DeliveryNote, &feeCents,
		&carrier, &trackingNumber, &shippedAt, &estimatedDelivery,
		&s.Status, &actualDelivery, &notes, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if s.ShippingFee, err = domain.MoneyFromCents(feeCents); err != nil {
		return nil, err
	}
	s.Carrier = carrier.String
	s.TrackingNumber = trackingNumber.String
	if shippedAt.Valid {
		s.ShippedAt = shippedAt.Time
	}
	if estimatedDelivery.Valid {
		s.EstimatedDeliveryDate = estimatedDelivery.Time
	}
	if actualDelivery.Valid {
		s.ActualDeliveryDate = actualDelivery.Time
	}
	s.Notes = notes.String

	return &s, nil
}

func (r *Repository) Save(ctx context.Context, s *domain.Shipment) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE shipments
		SET carrier = NULLIF($1, ''), tracking_number = NULLIF($2, ''),
		    shipped_at = $3, estimated_delivery_date = $4,
		    status = $5, actual_delivery_date = $6, notes = NULLIF($7, ''),
		    updated_at = $8
		WHERE id = $9
	`, s.Carrier, s.TrackingNumber, nullTime(s.ShippedAt), nullTime(s.EstimatedDeliveryDate),
		s.Status, nullTime(s.ActualDeliveryDate), s.Notes, s.UpdatedAt, s.ID)
	return err
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
