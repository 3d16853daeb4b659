package cart

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mimimart/checkout/internal/domain"
)

// GuestRepository keeps anonymous session carts in a Redis hash keyed by
// session id, field per product id. Guest carts expire with the session.
type GuestRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewGuestRepository(client *redis.Client, ttl time.Duration) *GuestRepository {
	return &GuestRepository{client: client, ttl: ttl}
}

func guestKey(sessionID string) string {
	return "cart:guest:" + sessionID
}

// Load rebuilds the guest cart. Guest carts have no member id; callers use
// them only as merge input.
func (r *GuestRepository) Load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	fields, err := r.client.HGetAll(ctx, guestKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load guest cart %s: %w", sessionID, err)
	}

	items := make([]domain.CartItem, 0, len(fields))
	now := time.Now().UTC()
	for field, value := range fields {
		productID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("guest cart %s: bad product id %q: %w", sessionID, field, err)
		}
		quantity, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("guest cart %s: bad quantity %q: %w", sessionID, value, err)
		}
		item, err := domain.NewCartItem(productID, quantity, now)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return domain.ReconstructCart(0, items)
}

func (r *GuestRepository) Save(ctx context.Context, sessionID string, cart *domain.Cart) error {
	key := guestKey(sessionID)

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	if !cart.IsEmpty() {
		fields := make(map[string]any, cart.ItemSize())
		for _, item := range cart.Items() {
			fields[strconv.FormatInt(item.ProductID, 10)] = item.Quantity
		}
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save guest cart %s: %w", sessionID, err)
	}
	return nil
}

func (r *GuestRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, guestKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete guest cart %s: %w", sessionID, err)
	}
	return nil
}
