package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseMoney(t *testing.T) {
	t.Run("parses whole and fractional amounts", func(t *testing.T) {
		cases := []struct {
			in    string
			cents int64
		}{
			{"100", 10000},
			{"99.9", 9990},
			{"99.99", 9999},
			{"0.01", 1},
			{"0", 0},
			{".5", 50},
		}
		for _, tc := range cases {
			m, err := ParseMoney(tc.in)
			if err != nil {
				t.Fatalf("ParseMoney(%q): unexpected error: %v", tc.in, err)
			}
			if m.Cents() != tc.cents {
				t.Errorf("ParseMoney(%q) = %d cents, want %d", tc.in, m.Cents(), tc.cents)
			}
		}
	})

	t.Run("rounds the third fractional digit half-up", func(t *testing.T) {
		cases := []struct {
			in    string
			cents int64
		}{
			{"12.344", 1234},
			{"12.345", 1235},
			{"12.3449", 1234},
			{"0.005", 1},
		}
		for _, tc := range cases {
			m, err := ParseMoney(tc.in)
			if err != nil {
				t.Fatalf("ParseMoney(%q): unexpected error: %v", tc.in, err)
			}
			if m.Cents() != tc.cents {
				t.Errorf("ParseMoney(%q) = %d cents, want %d", tc.in, m.Cents(), tc.cents)
			}
		}
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		if _, err := ParseMoney("-1.00"); !errors.Is(err, ErrNegativeAmount) {
			t.Errorf("expected ErrNegativeAmount, got %v", err)
		}
		if _, err := MoneyFromCents(-1); !errors.Is(err, ErrNegativeAmount) {
			t.Errorf("expected ErrNegativeAmount, got %v", err)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		for _, in := range []string{"", "abc", "1.2x", "1..2"} {
			if _, err := ParseMoney(in); err == nil {
				t.Errorf("ParseMoney(%q): expected error", in)
			}
		}
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	t.Run("add and multiply", func(t *testing.T) {
		price := MustMoney("19.99")
		subtotal, err := price.MulQuantity(3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if subtotal.String() != "59.97" {
			t.Errorf("expected 59.97, got %s", subtotal)
		}

		total := subtotal.Add(MustMoney("0.03"))
		if total.String() != "60.00" {
			t.Errorf("expected 60.00, got %s", total)
		}
	})

	t.Run("sub refuses to go negative", func(t *testing.T) {
		if _, err := MustMoney("1.00").Sub(MustMoney("2.00")); !errors.Is(err, ErrNegativeAmount) {
			t.Errorf("expected ErrNegativeAmount, got %v", err)
		}
	})

	t.Run("equal is exact", func(t *testing.T) {
		if MustMoney("99.99").Equal(MustMoney("100.00")) {
			t.Error("99.99 must not equal 100.00")
		}
		if !MustMoney("100").Equal(MustMoney("100.00")) {
			t.Error("100 must equal 100.00")
		}
	})
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(MustMoney("1234.50"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `"1234.50"` {
		t.Errorf(`expected "1234.50", got %s`, data)
	}

	var m Money
	if err := json.Unmarshal([]byte(`"0.07"`), &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Cents() != 7 {
		t.Errorf("expected 7 cents, got %d", m.Cents())
	}

	if err := json.Unmarshal([]byte(`7`), &m); err == nil {
		t.Error("expected error for non-string amount")
	}
}
