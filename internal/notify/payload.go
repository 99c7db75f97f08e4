// Package notify sends the "order created" notification to the queue and
// drains it on the consumer side. Delivery is best-effort: one attempt per
// order, no retry, nothing persisted for replay.
package notify

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// EventOrderCreated is the event_type message attribute of OrderCreated.
const EventOrderCreated = "order_created"

// OrderCreated is the notification payload.
type OrderCreated struct {
	OrderID    int64           `json:"order_id"`
	CustomerID int64           `json:"customer_id"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// MarshalJSON writes total_value as a decimal string with two places.
func (m OrderCreated) MarshalJSON() ([]byte, error) {
	type wire struct {
		OrderID    int64  `json:"order_id"`
		CustomerID int64  `json:"customer_id"`
		TotalValue string `json:"total_value"`
	}
	return json.Marshal(wire{
		OrderID:    m.OrderID,
		CustomerID: m.CustomerID,
		TotalValue: m.TotalValue.StringFixed(2),
	})
}

// Decode parses a queue message body.
func Decode(body string) (OrderCreated, error) {
	var m OrderCreated
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return OrderCreated{}, fmt.Errorf("decode order notification: %w", err)
	}
	if m.OrderID <= 0 {
		return OrderCreated{}, fmt.Errorf("decode order notification: missing order_id")
	}
	return m, nil
}
