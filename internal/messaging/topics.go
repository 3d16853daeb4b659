// Package messaging wraps kafka-go with trace propagation. Producers key
// messages by business number so all events for one order land on the same
// partition in order.
package messaging

const (
	TopicOrderCreated   = "order.created"
	TopicPaymentExpired = "payment.expired"
)
