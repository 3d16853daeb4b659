package domain

import (
	"fmt"
	"sort"
	"time"
)

const (
	MinCartQuantity = 1
	MaxCartQuantity = 999
)

// CartItem is an immutable cart line. Quantity changes produce a new value.
type CartItem struct {
	ProductID int64
	Quantity  int
	AddedAt   time.Time
}

func NewCartItem(productID int64, quantity int, addedAt time.Time) (CartItem, error) {
	if quantity < MinCartQuantity || quantity > MaxCartQuantity {
		return CartItem{}, fmt.Errorf("product %d: %w", productID, ErrQuantityOutOfRange)
	}
	return CartItem{ProductID: productID, Quantity: quantity, AddedAt: addedAt}, nil
}

// WithQuantity replaces the quantity, keeping the original added-at time.
func (i CartItem) WithQuantity(quantity int) (CartItem, error) {
	if quantity < MinCartQuantity || quantity > MaxCartQuantity {
		return CartItem{}, fmt.Errorf("product %d: %w", i.ProductID, ErrQuantityOutOfRange)
	}
	return CartItem{ProductID: i.ProductID, Quantity: quantity, AddedAt: i.AddedAt}, nil
}

// AddQuantity increments the quantity, rejecting totals over the cap.
func (i CartItem) AddQuantity(additional int) (CartItem, error) {
	if additional < MinCartQuantity {
		return CartItem{}, fmt.Errorf("product %d: %w", i.ProductID, ErrQuantityOutOfRange)
	}
	total := i.Quantity + additional
	if total > MaxCartQuantity {
		return CartItem{}, fmt.Errorf("product %d: %d: %w", i.ProductID, total, ErrQuantityOverCap)
	}
	return CartItem{ProductID: i.ProductID, Quantity: total, AddedAt: i.AddedAt}, nil
}

// Cart holds one member's line items, unique per product.
type Cart struct {
	memberID int64
	items    map[int64]CartItem
}

func NewCart(memberID int64) *Cart {
	return &Cart{memberID: memberID, items: make(map[int64]CartItem)}
}

// ReconstructCart rebuilds a cart from persisted rows. Rows must already
// satisfy the cart item invariants; a corrupt row is reported.
func ReconstructCart(memberID int64, items []CartItem) (*Cart, error) {
	cart := NewCart(memberID)
	for _, item := range items {
		if item.Quantity < MinCartQuantity || item.Quantity > MaxCartQuantity {
			return nil, fmt.Errorf("stored cart row for product %d: %w", item.ProductID, ErrQuantityOutOfRange)
		}
		cart.items[item.ProductID] = item
	}
	return cart, nil
}

func (c *Cart) MemberID() int64 {
	return c.memberID
}

// AddProduct creates a line for the product or increments the existing one.
func (c *Cart) AddProduct(productID int64, quantity int) error {
	if existing, ok := c.items[productID]; ok {
		updated, err := existing.AddQuantity(quantity)
		if err != nil {
			return err
		}
		c.items[productID] = updated
		return nil
	}

	item, err := NewCartItem(productID, quantity, time.Now().UTC())
	if err != nil {
		return err
	}
	c.items[productID] = item
	return nil
}

func (c *Cart) UpdateQuantity(productID int64, quantity int) error {
	existing, ok := c.items[productID]
	if !ok {
		return fmt.Errorf("product %d: %w", productID, ErrCartItemNotFound)
	}
	updated, err := existing.WithQuantity(quantity)
	if err != nil {
		return err
	}
	c.items[productID] = updated
	return nil
}

func (c *Cart) RemoveProduct(productID int64) error {
	if _, ok := c.items[productID]; !ok {
		return fmt.Errorf("product %d: %w", productID, ErrCartItemNotFound)
	}
	delete(c.items, productID)
	return nil
}

func (c *Cart) Clear() {
	c.items = make(map[int64]CartItem)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// TotalItemCount is the sum of all line quantities.
func (c *Cart) TotalItemCount() int {
	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// ItemSize is the number of distinct products.
func (c *Cart) ItemSize() int {
	return len(c.items)
}

func (c *Cart) ContainsProduct(productID int64) bool {
	_, ok := c.items[productID]
	return ok
}

// Quantity returns the line quantity, or 0 when the product is absent.
func (c *Cart) Quantity(productID int64) int {
	return c.items[productID].Quantity
}

// Items returns the lines ordered by product id.
func (c *Cart) Items() []CartItem {
	items := make([]CartItem, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item)
	}
	sort.Slice(items, func(a, b int) bool {
		return items[a].ProductID < items[b].ProductID
	})
	return items
}
