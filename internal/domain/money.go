package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Money is a fixed-point amount with two fractional digits, stored in
// minor units (cents). Amounts are never negative.
type Money struct {
	cents int64
}

var ErrNegativeAmount = errors.New("amount must not be negative")

func MoneyFromCents(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativeAmount
	}
	return Money{cents: cents}, nil
}

// ParseMoney parses a decimal string such as "100", "99.9" or "12.345".
// Fractional digits beyond the second are rounded half-up.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, errors.New("amount must not be empty")
	}
	if strings.HasPrefix(s, "-") {
		return Money{}, ErrNegativeAmount
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	cents := units * 100
	if frac != "" {
		for _, c := range frac {
			if c < '0' || c > '9' {
				return Money{}, fmt.Errorf("invalid amount %q", s)
			}
		}
		// Normalize to three digits so the third can drive half-up rounding.
		if len(frac) > 3 {
			frac = frac[:3]
		}
		for len(frac) < 3 {
			frac += "0"
		}
		n, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
		}
		cents += (n + 5) / 10
	}

	return Money{cents: cents}, nil
}

// MustMoney is a test and fixture helper; it panics on a malformed amount.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func ZeroMoney() Money {
	return Money{}
}

func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

func (m Money) Sub(other Money) (Money, error) {
	if other.cents > m.cents {
		return Money{}, ErrNegativeAmount
	}
	return Money{cents: m.cents - other.cents}, nil
}

func (m Money) MulQuantity(quantity int) (Money, error) {
	if quantity < 0 {
		return Money{}, errors.New("quantity must not be negative")
	}
	return Money{cents: m.cents * int64(quantity)}, nil
}

// Equal compares normalized values exactly. Payment callbacks rely on this
// being an exact decimal comparison.
func (m Money) Equal(other Money) bool {
	return m.cents == other.cents
}

func (m Money) LessThan(other Money) bool {
	return m.cents < other.cents
}

func (m Money) GreaterThan(other Money) bool {
	return m.cents > other.cents
}

func (m Money) IsZero() bool {
	return m.cents == 0
}

func (m Money) Cents() int64 {
	return m.cents
}

func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", m.cents/100, m.cents%100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("amount must be a decimal string: %w", err)
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
