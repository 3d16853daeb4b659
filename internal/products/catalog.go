// Package products is the product-lookup collaborator used when freezing
// cart lines into order items.
package products

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/mimimart/checkout/internal/domain"
)

type Product struct {
	ID            int64
	Name          string
	Price         domain.Money
	OriginalPrice domain.Money
	ImageURL      string
}

func (p Product) Snapshot() domain.ProductSnapshot {
	return domain.ProductSnapshot{
		Name:          p.Name,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		ImageURL:      p.ImageURL,
	}
}

// Catalog batch-resolves products by id. Ids absent from the result were
// not found.
type Catalog interface {
	FindByIDs(ctx context.Context, ids []int64) (map[int64]Product, error)
}

type PostgresCatalog struct {
	db *sql.DB
}

func NewPostgresCatalog(db *sql.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

func (c *PostgresCatalog) FindByIDs(ctx context.Context, ids []int64) (map[int64]Product, error) {
	if len(ids) == 0 {
		return map[int64]Product{}, nil
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, price_cents, original_price_cents, image_url
		FROM products
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	found := make(map[int64]Product, len(ids))
	for rows.Next() {
		var (
			p                         Product
			priceCents, originalCents int64
		)
		if err := rows.Scan(&p.ID, &p.Name, &priceCents, &originalCents, &p.ImageURL); err != nil {
			return nil, err
		}
		if p.Price, err = domain.MoneyFromCents(priceCents); err != nil {
			return nil, err
		}
		if p.OriginalPrice, err = domain.MoneyFromCents(originalCents); err != nil {
			return nil, err
		}
		found[p.ID] = p
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return found, nil
}
