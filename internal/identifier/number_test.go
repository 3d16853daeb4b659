package identifier

import (
	"math/rand"
	"strings"
	"testing"
	"time"
)

func TestNumberGenerator(t *testing.T) {
	fixedNow := func() time.Time {
		return time.Date(2025, 6, 1, 13, 45, 9, 0, time.UTC)
	}

	t.Run("order numbers carry the prefix and timestamp", func(t *testing.T) {
		gen := NewNumberGenerator(fixedNow, rand.New(rand.NewSource(1)))

		number, err := gen.NextOrderNumber()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		s := number.String()
		if !strings.HasPrefix(s, "ORD20250601134509") {
			t.Errorf("unexpected number %s", s)
		}
		if len(s) != len("ORD")+14+3 {
			t.Errorf("expected 20 characters, got %d (%s)", len(s), s)
		}
		for _, c := range s[len("ORD"):] {
			if c < '0' || c > '9' {
				t.Errorf("non-digit %q in %s", c, s)
			}
		}
	})

	t.Run("payment numbers use the PAY prefix", func(t *testing.T) {
		gen := NewNumberGenerator(fixedNow, rand.New(rand.NewSource(1)))

		number, err := gen.NextPaymentNumber()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(number.String(), "PAY20250601134509") {
			t.Errorf("unexpected number %s", number)
		}
	})

	t.Run("nil clock and source fall back to real ones", func(t *testing.T) {
		gen := NewNumberGenerator(nil, nil)
		if _, err := gen.NextOrderNumber(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
