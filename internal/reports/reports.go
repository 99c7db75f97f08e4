// Package reports holds read-only aggregate queries over the entity store.
package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/imrishuroy/easyorder/internal/apperr"
	"github.com/imrishuroy/easyorder/internal/store"
)

const (
	dateLayout = "2006-01-02"

	// DefaultLowStockThreshold applies when the caller gives no threshold.
	DefaultLowStockThreshold = 5
)

type CustomerOrders struct {
	CustomerID   int64  `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	TotalOrders  int64  `json:"total_orders"`
}

type Revenue struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	Period       string          `json:"period"`
}

type LowStockProduct struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	StockQuantity int    `json:"stock_quantity"`
}

// Service runs reporting queries.
type Service struct {
	db *store.DB
}

func NewService(db *store.DB) *Service {
	return &Service{db: db}
}

// OrdersPerCustomer counts orders per customer, including customers without any.
func (s *Service) OrdersPerCustomer(ctx context.Context) ([]CustomerOrders, error) {
	out := []CustomerOrders{}
	err := s.db.UnitOfWork(ctx, "orders per customer", func(tx *gorm.DB) error {
		return tx.Table("customers").
			Select("customers.id AS customer_id, customers.name AS customer_name, COUNT(orders.id) AS total_orders").
			Joins("LEFT JOIN orders ON orders.customer_id = customers.id").
			Group("customers.id, customers.name").
			Order("customers.id").
			Scan(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Revenue sums paid payments created between start and end, both inclusive
// calendar days (YYYY-MM-DD, UTC).
func (s *Service) Revenue(ctx context.Context, start, end string) (*Revenue, error) {
	from, err := time.Parse(dateLayout, start)
	if err != nil {
		return nil, apperr.Validation("start must be a YYYY-MM-DD date, got %q", start)
	}
	to, err := time.Parse(dateLayout, end)
	if err != nil {
		return nil, apperr.Validation("end must be a YYYY-MM-DD date, got %q", end)
	}
	if from.After(to) {
		return nil, apperr.Validation("start %s is after end %s", start, end)
	}

	var amounts []decimal.Decimal
	err = s.db.UnitOfWork(ctx, "revenue", func(tx *gorm.DB) error {
		return tx.Model(&store.PaymentRecord{}).
			Where("status = ? AND created_at >= ? AND created_at < ?", store.PaymentPaid, from, to.AddDate(0, 0, 1)).
			Pluck("amount", &amounts).Error
	})
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return &Revenue{
		TotalRevenue: total.Round(2),
		Period:       start + " to " + end,
	}, nil
}

// LowStock lists products with stock strictly below threshold. A zero
// threshold matches nothing, since stock is never negative.
func (s *Service) LowStock(ctx context.Context, threshold int) ([]LowStockProduct, error) {
	if threshold < 0 {
		return nil, apperr.Validation("threshold must be >= 0, got %d", threshold)
	}
	out := []LowStockProduct{}
	err := s.db.UnitOfWork(ctx, "low stock", func(tx *gorm.DB) error {
		return tx.Model(&store.ProductRecord{}).
			Select("id, name, stock_quantity").
			Where("stock_quantity < ?", threshold).
			Order("id").
			Scan(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
