package payments

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

func (r *Repository) CreateTx(ctx context.Context, tx storage.DBTX, p *domain.Payment) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO payments (id, order_id, payment_number, method, status, amount_cents, expired_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.OrderID, p.Number.String(), p.Method, p.Status, p.Amount.Cents(), p.ExpiredAt, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *Repository) GetByNumber(ctx context.Context, number domain.PaymentNumber) (*domain.Payment, error) {
	return r.get(ctx, r.db, `WHERE payment_number = $1`, number.String())
}

func (r *Repository) GetByOrderID(ctx context.Context, orderID int64) (*domain.Payment, error) {
	return r.get(ctx, r.db, `WHERE order_id = $1`, orderID)
}

func (r *Repository) GetTx(ctx context.Context, tx storage.DBTX, id int64) (*domain.Payment, error) {
	return r.get(ctx, tx, `WHERE id = $1`, id)
}

func (r *Repository) get(ctx context.Context, q storage.DBTX, where string, arg any) (*domain.Payment, error) {
	p, err := scanPayment(q.QueryRowContext(ctx, `
		SELECT id, order_id, payment_number, method, status, amount_cents, external_transaction_id, expired_at, paid_at, created_at, updated_at
		FROM payments
	`+where, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// FindExpiredPending returns payments still pending whose window lapsed
// before now. The reconciliation sweep is its only caller.
func (r *Repository) FindExpiredPending(ctx context.Context, now time.Time) ([]*domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, payment_number, method, status, amount_cents, external_transaction_id, expired_at, paid_at, created_at, updated_at
		FROM payments
		WHERE status = $1 AND expired_at < $2
		ORDER BY expired_at
	`, domain.PaymentStatusPending, now)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var expired []*domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		expired = append(expired, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return expired, nil
}

func (r *Repository) Save(ctx context.Context, p *domain.Payment) error {
	return r.SaveTx(ctx, r.db, p)
}

func (r *Repository) SaveTx(ctx context.Context, tx storage.DBTX, p *domain.Payment) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE payments
		SET status = $1, external_transaction_id = NULLIF($2, ''), paid_at = $3, updated_at = $4
		WHERE id = $5
	`, p.Status, p.ExternalTransactionID, nullTime(p.PaidAt), p.UpdatedAt, p.ID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var (
		p           domain.Payment
		number      string
		amountCents int64
		externalID  sql.NullString
		paidAt      sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.OrderID, &number, &p.Method, &p.Status, &amountCents, &externalID, &p.ExpiredAt, &paidAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	parsed, err := domain.ParsePaymentNumber(number)
	if err != nil {
		return nil, err
	}
	p.Number = parsed

	if p.Amount, err = domain.MoneyFromCents(amountCents); err != nil {
		return nil, err
	}
	p.ExternalTransactionID = externalID.String
	if paidAt.Valid {
		p.PaidAt = paidAt.Time
	}

	return &p, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
