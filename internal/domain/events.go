package domain

import "time"

type OrderCreatedEvent struct {
	OrderID     int64     `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	MemberID    int64     `json:"member_id"`
	Total       Money     `json:"total"`
	Timestamp   time.Time `json:"timestamp"`
}

type PaymentExpiredEvent struct {
	PaymentID     int64     `json:"payment_id"`
	PaymentNumber string    `json:"payment_number"`
	OrderID       int64     `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	MemberID      int64     `json:"member_id"`
	Timestamp     time.Time `json:"timestamp"`
}
