package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCart_AddProduct(t *testing.T) {
	t.Run("adds a new line", func(t *testing.T) {
		cart := NewCart(1)
		if err := cart.AddProduct(10, 3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cart.Quantity(10) != 3 {
			t.Errorf("expected quantity 3, got %d", cart.Quantity(10))
		}
		if cart.ItemSize() != 1 {
			t.Errorf("expected 1 line, got %d", cart.ItemSize())
		}
	})

	t.Run("increments an existing line", func(t *testing.T) {
		cart := NewCart(1)
		if err := cart.AddProduct(10, 3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := cart.AddProduct(10, 5); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cart.Quantity(10) != 8 {
			t.Errorf("expected quantity 8, got %d", cart.Quantity(10))
		}
		if cart.ItemSize() != 1 {
			t.Errorf("expected 1 line, got %d", cart.ItemSize())
		}
	})

	t.Run("rejects out-of-range quantities", func(t *testing.T) {
		cart := NewCart(1)
		if err := cart.AddProduct(10, 0); !errors.Is(err, ErrQuantityOutOfRange) {
			t.Errorf("expected ErrQuantityOutOfRange, got %v", err)
		}
		if err := cart.AddProduct(10, 1000); !errors.Is(err, ErrQuantityOutOfRange) {
			t.Errorf("expected ErrQuantityOutOfRange, got %v", err)
		}
	})

	t.Run("rejects increments past the cap", func(t *testing.T) {
		cart := NewCart(1)
		if err := cart.AddProduct(10, 995); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := cart.AddProduct(10, 10); !errors.Is(err, ErrQuantityOverCap) {
			t.Errorf("expected ErrQuantityOverCap, got %v", err)
		}
		// Failed add leaves the line untouched.
		if cart.Quantity(10) != 995 {
			t.Errorf("expected quantity 995, got %d", cart.Quantity(10))
		}
	})

	t.Run("accepts the cap exactly", func(t *testing.T) {
		cart := NewCart(1)
		if err := cart.AddProduct(10, MaxCartQuantity); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cart.Quantity(10) != MaxCartQuantity {
			t.Errorf("expected quantity %d, got %d", MaxCartQuantity, cart.Quantity(10))
		}
	})
}

func TestCart_UpdateQuantity(t *testing.T) {
	cart := NewCart(1)
	if err := cart.AddProduct(10, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := cart.UpdateQuantity(10, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.Quantity(10) != 7 {
		t.Errorf("expected quantity 7, got %d", cart.Quantity(10))
	}

	if err := cart.UpdateQuantity(99, 1); !errors.Is(err, ErrCartItemNotFound) {
		t.Errorf("expected ErrCartItemNotFound, got %v", err)
	}
	if err := cart.UpdateQuantity(10, 0); !errors.Is(err, ErrQuantityOutOfRange) {
		t.Errorf("expected ErrQuantityOutOfRange, got %v", err)
	}
}

func TestCart_RemoveAndClear(t *testing.T) {
	cart := NewCart(1)
	if err := cart.AddProduct(10, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cart.AddProduct(20, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := cart.RemoveProduct(10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.ContainsProduct(10) {
		t.Error("product 10 should be gone")
	}
	if err := cart.RemoveProduct(10); !errors.Is(err, ErrCartItemNotFound) {
		t.Errorf("expected ErrCartItemNotFound, got %v", err)
	}

	cart.Clear()
	if !cart.IsEmpty() {
		t.Error("expected empty cart after clear")
	}
}

func TestCart_Items(t *testing.T) {
	cart := NewCart(1)
	for _, id := range []int64{30, 10, 20} {
		if err := cart.AddProduct(id, 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	items := cart.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i, want := range []int64{10, 20, 30} {
		if items[i].ProductID != want {
			t.Errorf("item %d: expected product %d, got %d", i, want, items[i].ProductID)
		}
	}

	if cart.TotalItemCount() != 3 {
		t.Errorf("expected total count 3, got %d", cart.TotalItemCount())
	}
}

func TestReconstructCart(t *testing.T) {
	now := time.Now().UTC()

	item, err := NewCartItem(10, 5, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cart, err := ReconstructCart(7, []CartItem{item})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.MemberID() != 7 {
		t.Errorf("expected member 7, got %d", cart.MemberID())
	}
	if cart.Quantity(10) != 5 {
		t.Errorf("expected quantity 5, got %d", cart.Quantity(10))
	}

	// A row edited behind the application's back must not load.
	if _, err := ReconstructCart(7, []CartItem{{ProductID: 10, Quantity: 0, AddedAt: now}}); !errors.Is(err, ErrQuantityOutOfRange) {
		t.Errorf("expected ErrQuantityOutOfRange, got %v", err)
	}
}
