package domain

import "testing"

func buildCart(t *testing.T, memberID int64, lines map[int64]int) *Cart {
	t.Helper()
	cart := NewCart(memberID)
	for productID, quantity := range lines {
		if err := cart.AddProduct(productID, quantity); err != nil {
			t.Fatalf("seed cart: %v", err)
		}
	}
	return cart
}

func TestParseMergePolicy(t *testing.T) {
	for _, s := range []string{"max-quantity", "add-with-cap", "overwrite"} {
		if _, err := ParseMergePolicy(s); err != nil {
			t.Errorf("ParseMergePolicy(%q): unexpected error: %v", s, err)
		}
	}
	if _, err := ParseMergePolicy("sum"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestMergeCarts_MaxQuantity(t *testing.T) {
	t.Run("sums while the total fits", func(t *testing.T) {
		member := buildCart(t, 1, map[int64]int{10: 3, 20: 1})
		guest := buildCart(t, 0, map[int64]int{10: 5, 30: 2})

		merged, err := MergeCarts(member, guest, MergeMaxQuantity)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if merged.Quantity(10) != 8 {
			t.Errorf("product 10: expected 8, got %d", merged.Quantity(10))
		}
		if merged.Quantity(20) != 1 {
			t.Errorf("product 20: expected 1, got %d", merged.Quantity(20))
		}
		if merged.Quantity(30) != 2 {
			t.Errorf("product 30: expected 2, got %d", merged.Quantity(30))
		}
	})

	t.Run("falls back to the larger quantity past the cap", func(t *testing.T) {
		member := buildCart(t, 1, map[int64]int{10: 995})
		guest := buildCart(t, 0, map[int64]int{10: 10})

		merged, err := MergeCarts(member, guest, MergeMaxQuantity)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if merged.Quantity(10) != 995 {
			t.Errorf("expected 995, got %d", merged.Quantity(10))
		}
	})
}

func TestMergeCarts_AddWithCap(t *testing.T) {
	member := buildCart(t, 1, map[int64]int{10: 995})
	guest := buildCart(t, 0, map[int64]int{10: 10, 20: 4})

	merged, err := MergeCarts(member, guest, MergeAddWithCap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if merged.Quantity(10) != MaxCartQuantity {
		t.Errorf("product 10: expected clamp to %d, got %d", MaxCartQuantity, merged.Quantity(10))
	}
	if merged.Quantity(20) != 4 {
		t.Errorf("product 20: expected 4, got %d", merged.Quantity(20))
	}
}

func TestMergeCarts_Overwrite(t *testing.T) {
	member := buildCart(t, 1, map[int64]int{10: 995, 20: 2})
	guest := buildCart(t, 0, map[int64]int{10: 10})

	merged, err := MergeCarts(member, guest, MergeOverwrite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if merged.Quantity(10) != 10 {
		t.Errorf("product 10: expected guest quantity 10, got %d", merged.Quantity(10))
	}
	if merged.Quantity(20) != 2 {
		t.Errorf("product 20: expected untouched quantity 2, got %d", merged.Quantity(20))
	}
}

func TestMergeCarts_EmptyGuest(t *testing.T) {
	member := buildCart(t, 1, map[int64]int{10: 3})
	guest := NewCart(0)

	merged, err := MergeCarts(member, guest, MergeMaxQuantity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.Quantity(10) != 3 || merged.ItemSize() != 1 {
		t.Error("empty guest cart must leave the member cart unchanged")
	}
}

func TestMergeCarts_UnknownPolicy(t *testing.T) {
	if _, err := MergeCarts(NewCart(1), NewCart(0), MergePolicy("sum")); err == nil {
		t.Error("expected error for unknown policy")
	}
}
