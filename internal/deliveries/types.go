package deliveries

import (
	"time"

	"github.com/imrishuroy/easyorder/internal/store"
)

// Delivery ships an order to an address. Status is free text such as
// "em transporte" or "entregue".
type Delivery struct {
	ID           int64     `json:"id"`
	Address      string    `json:"address"`
	Status       string    `json:"status"`
	DeliveryDate time.Time `json:"delivery_date"`
	OrderID      int64     `json:"order_id"`
}

func fromRecord(r store.DeliveryRecord) Delivery {
	return Delivery{
		ID:           r.ID,
		Address:      r.Address,
		Status:       r.Status,
		DeliveryDate: r.DeliveryDate.UTC(),
		OrderID:      r.OrderID,
	}
}
