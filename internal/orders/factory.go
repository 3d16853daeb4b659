package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/mimimart/checkout/internal/domain"
	"github.com/mimimart/checkout/internal/identifier"
	"github.com/mimimart/checkout/internal/products"
)

// Factory turns a non-empty cart into a payment-pending order, freezing
// each product's current catalog data into the order lines.
type Factory struct {
	catalog products.Catalog
	ids     *identifier.Snowflake
	numbers *identifier.NumberGenerator
}

func NewFactory(catalog products.Catalog, ids *identifier.Snowflake, numbers *identifier.NumberGenerator) *Factory {
	return &Factory{catalog: catalog, ids: ids, numbers: numbers}
}

func (f *Factory) CreateFromCart(ctx context.Context, cart *domain.Cart, delivery domain.DeliveryInfo) (*domain.Order, error) {
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	lines := cart.Items()
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	resolved, err := f.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve cart products: %w", err)
	}

	items := make([]domain.OrderItem, 0, len(lines))
	total := domain.ZeroMoney()
	for _, line := range lines {
		product, ok := resolved[line.ProductID]
		if !ok {
			// A cart row pointing at a vanished product means the stores
			// disagree; propagate instead of skipping the line.
			return nil, fmt.Errorf("product %d: %w", line.ProductID, domain.ErrProductGone)
		}

		item, err := domain.NewOrderItem(line.ProductID, product.Snapshot(), line.Quantity)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		total = total.Add(item.Subtotal)
	}

	number, err := f.numbers.NextOrderNumber()
	if err != nil {
		return nil, err
	}
	id, err := f.ids.NextID()
	if err != nil {
		return nil, err
	}

	return domain.NewOrder(id, cart.MemberID(), number, items, total, delivery, time.Now().UTC())
}
