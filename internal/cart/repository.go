package cart

import (
	"context"
	"database/sql"

	"github.com/mimimart/checkout/internal/domain"
	"github.com/mimimart/checkout/internal/storage"
)

// MemberRepository persists member carts as one row per line item.
type MemberRepository struct {
	db *sql.DB
}

func NewMemberRepository(db *sql.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Load(ctx context.Context, memberID int64) (*domain.Cart, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity, added_at
		FROM member_cart_items
		WHERE member_id = $1
		ORDER BY product_id
	`, memberID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.AddedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return domain.ReconstructCart(memberID, items)
}

// Replace rewrites the member's rows to match the in-memory cart. Mutation
// flows are load, mutate, replace inside the request, which keeps each
// cart update a single atomic unit.
func (r *MemberRepository) Replace(ctx context.Context, cart *domain.Cart) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.replaceTx(ctx, tx, cart); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *MemberRepository) replaceTx(ctx context.Context, tx storage.DBTX, cart *domain.Cart) error {
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM member_cart_items WHERE member_id = $1
	`, cart.MemberID()); err != nil {
		return err
	}

	for _, item := range cart.Items() {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO member_cart_items (member_id, product_id, quantity, added_at)
			VALUES ($1, $2, $3, $4)
		`, cart.MemberID(), item.ProductID, item.Quantity, item.AddedAt); err != nil {
			return err
		}
	}

	return nil
}

// ClearTx removes the member's rows inside a caller-owned transaction. The
// checkout flow uses it so cart deletion commits together with the order.
func (r *MemberRepository) ClearTx(ctx context.Context, tx storage.DBTX, memberID int64) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM member_cart_items WHERE member_id = $1
	`, memberID)
	return err
}
