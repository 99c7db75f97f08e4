package products

import (
	"github.com/shopspring/decimal"

	"github.com/imrishuroy/easyorder/internal/store"
)

// Product is a catalogue item. StockQuantity is never negative.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	StockQuantity int             `json:"stock_quantity"`
}

func fromRecord(r store.ProductRecord) Product {
	return Product{
		ID:            r.ID,
		Name:          r.Name,
		Price:         r.Price.Round(2),
		Category:      r.Category,
		StockQuantity: r.StockQuantity,
	}
}

func (p Product) apply(r *store.ProductRecord) {
	r.Name = p.Name
	r.Price = p.Price.Round(2)
	r.Category = p.Category
	r.StockQuantity = p.StockQuantity
}
