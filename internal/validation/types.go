package validation

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerRequest is the payload for POST and PUT /customers.
type CustomerRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
}

// CreateOrderRequest is the payload for POST /orders. The customer comes from
// the body, the customer_id query parameter or the /customers/:id path.
type CreateOrderRequest struct {
	CustomerID  int64            `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	Description string           `json:"description" validate:"required,max=1024"`
	TotalValue  *decimal.Decimal `json:"total_value,omitempty" validate:"omitempty,money"` // carried in the notification only
}

// UpdateOrderRequest is the payload for PUT /orders/:id.
type UpdateOrderRequest struct {
	CustomerID  int64  `json:"customer_id" validate:"required,gt=0"`
	Description string `json:"description" validate:"required,max=1024"`
}

// ProductRequest is the payload for POST and PUT /products.
type ProductRequest struct {
	Name          string          `json:"name" validate:"required,max=255"`
	Price         decimal.Decimal `json:"price" validate:"money"`
	Category      string          `json:"category" validate:"required,max=100"`
	StockQuantity int             `json:"stock_quantity" validate:"min=0"`
}

// PaymentRequest is the payload for POST and PUT /payments. Status may be
// omitted on create.
type PaymentRequest struct {
	OrderID       int64           `json:"order_id" validate:"required,gt=0"`
	Amount        decimal.Decimal `json:"amount" validate:"money"`
	Status        string          `json:"status,omitempty" validate:"omitempty,oneof=pending paid cancelled"`
	PaymentMethod string          `json:"payment_method" validate:"required,max=50"`
}

// PaymentStatusRequest is the payload for PATCH /payments/:id/status.
type PaymentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid cancelled"`
}

// DeliveryRequest is the payload for POST and PUT /deliveries.
type DeliveryRequest struct {
	Address      string     `json:"address" validate:"required,max=512"`
	Status       string     `json:"status" validate:"required,max=32"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
	OrderID      int64      `json:"order_id" validate:"required,gt=0"`
}

// PageQuery binds ?offset=&limit=.
type PageQuery struct {
	Offset int `form:"offset" validate:"min=0"`
	Limit  int `form:"limit" validate:"min=0"`
}
