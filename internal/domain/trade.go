package domain

import "time"

// OrderAck is the gateway's acknowledgement of a placed order.
type OrderAck struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// ExecutedOrder pairs an acknowledgement with the intent that produced it.
// Appended to the trade log after every successful gateway call.
type ExecutedOrder struct {
	Intent        OrderIntent `json:"intent"`
	Ack           OrderAck    `json:"ack"`
	ClientOrderID string      `json:"client_order_id"`
	ExecutedAt    time.Time   `json:"executed_at"`
}
