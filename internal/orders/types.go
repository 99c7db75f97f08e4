package orders

import (
	"github.com/shopspring/decimal"

	"github.com/imrishuroy/easyorder/internal/store"
)

// Order belongs to exactly one customer.
type Order struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	CustomerID  int64  `json:"customer_id"`
}

// CreateInput is the Order Workflow input. TotalValue only travels in the
// notification payload; it is not stored.
type CreateInput struct {
	CustomerID  int64
	Description string
	TotalValue  decimal.Decimal
}

func fromRecord(r store.OrderRecord) Order {
	return Order{ID: r.ID, Description: r.Description, CustomerID: r.CustomerID}
}
