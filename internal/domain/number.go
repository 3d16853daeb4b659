package domain

import (
	"fmt"
	"strings"
)

const (
	OrderNumberPrefix   = "ORD"
	PaymentNumberPrefix = "PAY"
)

// OrderNumber is the human-readable order identifier. It is only ever
// constructed through parsing so a held value is always well formed.
type OrderNumber struct {
	value string
}

func ParseOrderNumber(s string) (OrderNumber, error) {
	if err := validateNumber(s, OrderNumberPrefix); err != nil {
		return OrderNumber{}, err
	}
	return OrderNumber{value: s}, nil
}

func (n OrderNumber) String() string {
	return n.value
}

// PaymentNumber is the human-readable payment identifier.
type PaymentNumber struct {
	value string
}

func ParsePaymentNumber(s string) (PaymentNumber, error) {
	if err := validateNumber(s, PaymentNumberPrefix); err != nil {
		return PaymentNumber{}, err
	}
	return PaymentNumber{value: s}, nil
}

func (n PaymentNumber) String() string {
	return n.value
}

func validateNumber(s, prefix string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("business number must not be empty")
	}
	if !strings.HasPrefix(s, prefix) {
		return fmt.Errorf("business number %q must start with %s", s, prefix)
	}
	return nil
}
