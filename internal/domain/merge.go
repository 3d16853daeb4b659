package domain

import "fmt"

// MergePolicy selects how a guest (session) cart folds into a member cart.
type MergePolicy string

const (
	MergeMaxQuantity MergePolicy = "max-quantity"
	MergeAddWithCap  MergePolicy = "add-with-cap"
	MergeOverwrite   MergePolicy = "overwrite"
)

func ParseMergePolicy(s string) (MergePolicy, error) {
	switch MergePolicy(s) {
	case MergeMaxQuantity, MergeAddWithCap, MergeOverwrite:
		return MergePolicy(s), nil
	}
	return "", fmt.Errorf("unknown merge policy %q", s)
}

// MergeCarts folds guestCart into memberCart under the given policy and
// returns memberCart. All policies are total: every guest line lands in the
// member cart with a quantity within [1, 999].
func MergeCarts(memberCart, guestCart *Cart, policy MergePolicy) (*Cart, error) {
	switch policy {
	case MergeMaxQuantity:
		mergeMaxQuantity(memberCart, guestCart)
	case MergeAddWithCap:
		mergeAddWithCap(memberCart, guestCart)
	case MergeOverwrite:
		mergeOverwrite(memberCart, guestCart)
	default:
		return nil, fmt.Errorf("unknown merge policy %q", policy)
	}
	return memberCart, nil
}

// mergeMaxQuantity sums quantities while the sum fits under the cap. When
// the sum would exceed 999 it falls back to the larger of the two
// quantities, which is always within range on its own.
func mergeMaxQuantity(memberCart, guestCart *Cart) {
	for _, guest := range guestCart.Items() {
		if !memberCart.ContainsProduct(guest.ProductID) {
			_ = memberCart.AddProduct(guest.ProductID, guest.Quantity)
			continue
		}

		memberQty := memberCart.Quantity(guest.ProductID)
		merged := memberQty + guest.Quantity
		if merged > MaxCartQuantity {
			merged = max(memberQty, guest.Quantity)
		}
		_ = memberCart.UpdateQuantity(guest.ProductID, merged)
	}
}

// mergeAddWithCap adds quantities outright and clamps to the cap on
// overflow.
func mergeAddWithCap(memberCart, guestCart *Cart) {
	for _, guest := range guestCart.Items() {
		if err := memberCart.AddProduct(guest.ProductID, guest.Quantity); err == nil {
			continue
		}

		if memberCart.ContainsProduct(guest.ProductID) {
			_ = memberCart.UpdateQuantity(guest.ProductID, MaxCartQuantity)
		} else {
			_ = memberCart.AddProduct(guest.ProductID, min(guest.Quantity, MaxCartQuantity))
		}
	}
}

// mergeOverwrite lets the guest quantity win for shared products.
func mergeOverwrite(memberCart, guestCart *Cart) {
	for _, guest := range guestCart.Items() {
		if memberCart.ContainsProduct(guest.ProductID) {
			_ = memberCart.UpdateQuantity(guest.ProductID, guest.Quantity)
		} else {
			_ = memberCart.AddProduct(guest.ProductID, guest.Quantity)
		}
	}
}
