package orders

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/mimimart/checkout/internal/domain"
	"github.com/mimimart/checkout/internal/storage"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateTx inserts the order and its lines inside a caller-owned
// transaction so the checkout flow can commit order, payment, shipment and
// cart deletion together.
func (r *Repository) CreateTx(ctx context.Context, tx storage.DBTX, order *domain.Order) error {
	delivery, err := encodeDeliveryInfo(order.Delivery)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, member_id, order_number, status, total_cents, delivery_info, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, order.ID, order.MemberID, order.Number.String(), order.Status, order.Total.Cents(), delivery, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		snapshot, err := encodeSnapshot(item.Snapshot)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, snapshot, quantity, subtotal_cents)
			VALUES ($1, $2, $3, $4, $5)
		`, order.ID, item.ProductID, snapshot, item.Quantity, item.Subtotal.Cents())
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return r.getTx(ctx, r.db, id)
}

// GetTx loads an order inside a caller-owned transaction, used when a
// status change must commit atomically with another aggregate's row.
func (r *Repository) GetTx(ctx context.Context, tx storage.DBTX, id int64) (*domain.Order, error) {
	return r.getTx(ctx, tx, id)
}

func (r *Repository) getTx(ctx context.Context, q storage.DBTX, id int64) (*domain.Order, error) {
	order, err := scanOrder(q.QueryRowContext(ctx, `
		SELECT id, member_id, order_number, status, total_cents, delivery_info, cancellation_reason, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT product_id, snapshot, quantity, subtotal_cents
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_id
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *Repository) ListByMember(ctx context.Context, memberID int64) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, member_id, order_number, status, total_cents, delivery_info, cancellation_reason, created_at, updated_at
		FROM orders
		WHERE member_id = $1
		ORDER BY created_at DESC
	`, memberID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[int64]*domain.Order)
	var orderIDs []int64

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orderMap[order.ID] = order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []*domain.Order{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, snapshot, quantity, subtotal_cents
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY product_id
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var (
			orderID       int64
			productID     int64
			snapshot      []byte
			quantity      int
			subtotalCents int64
		)
		if err := itemRows.Scan(&orderID, &productID, &snapshot, &quantity, &subtotalCents); err != nil {
			return nil, err
		}
		item, err := buildOrderItem(productID, snapshot, quantity, subtotalCents)
		if err != nil {
			return nil, err
		}
		orderMap[orderID].Items = append(orderMap[orderID].Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, orderMap[id])
	}

	return orders, nil
}

func (r *Repository) Save(ctx context.Context, order *domain.Order) error {
	return r.SaveTx(ctx, r.db, order)
}

// SaveTx persists the mutable order fields. Line items and delivery info
// are frozen at creation and never rewritten.
func (r *Repository) SaveTx(ctx context.Context, tx storage.DBTX, order *domain.Order) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, cancellation_reason = NULLIF($2, ''), updated_at = $3
		WHERE id = $4
	`, order.Status, order.CancellationReason, order.UpdatedAt, order.ID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order              domain.Order
		number             string
		totalCents         int64
		delivery           []byte
		cancellationReason sql.NullString
	)
	if err := row.Scan(&order.ID, &order.MemberID, &number, &order.Status, &totalCents, &delivery, &cancellationReason, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return nil, err
	}

	parsedNumber, err := domain.ParseOrderNumber(number)
	if err != nil {
		return nil, err
	}
	order.Number = parsedNumber

	if order.Total, err = domain.MoneyFromCents(totalCents); err != nil {
		return nil, err
	}
	if order.Delivery, err = decodeDeliveryInfo(delivery); err != nil {
		return nil, err
	}
	order.CancellationReason = cancellationReason.String

	return &order, nil
}

func scanOrderItem(rows *sql.Rows) (domain.OrderItem, error) {
	var (
		productID     int64
		snapshot      []byte
		quantity      int
		subtotalCents int64
	)
	if err := rows.Scan(&productID, &snapshot, &quantity, &subtotalCents); err != nil {
		return domain.OrderItem{}, err
	}
	return buildOrderItem(productID, snapshot, quantity, subtotalCents)
}

func buildOrderItem(productID int64, snapshotData []byte, quantity int, subtotalCents int64) (domain.OrderItem, error) {
	snapshot, err := decodeSnapshot(snapshotData)
	if err != nil {
		return domain.OrderItem{}, err
	}
	subtotal, err := domain.MoneyFromCents(subtotalCents)
	if err != nil {
		return domain.OrderItem{}, err
	}
	return domain.OrderItem{
		ProductID: productID,
		Snapshot:  snapshot,
		Quantity:  quantity,
		Subtotal:  subtotal,
	}, nil
}
