package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentPaid      = "paid"
	PaymentCancelled = "cancelled"
)

// CustomerRecord is a row of customers.
type CustomerRecord struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"size:255;not null"`
	Email string `gorm:"size:255;not null;uniqueIndex"`
}

func (CustomerRecord) TableName() string { return "customers" }

// OrderRecord is a row of orders. Customers with orders cannot be deleted.
type OrderRecord struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	Description string          `gorm:"size:1024;not null"`
	CustomerID  int64           `gorm:"not null;index"`
	Customer    *CustomerRecord `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (OrderRecord) TableName() string { return "orders" }

// ProductRecord is a row of products.
type ProductRecord struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	Name          string          `gorm:"size:255;not null;index"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Category      string          `gorm:"size:100;not null;index"`
	StockQuantity int             `gorm:"not null;default:0;check:stock_quantity >= 0"`
}

func (ProductRecord) TableName() string { return "products" }

// PaymentRecord is a row of payments; removed with its order.
type PaymentRecord struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	OrderID       int64           `gorm:"not null;index"`
	Order         *OrderRecord    `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status        string          `gorm:"size:16;not null;default:pending;index:idx_payments_status_created,priority:1"`
	PaymentMethod string          `gorm:"size:50;not null"`
	CreatedAt     time.Time       `gorm:"not null;index:idx_payments_status_created,priority:2"`
}

func (PaymentRecord) TableName() string { return "payments" }

// DeliveryRecord is a row of deliveries; removed with its order.
type DeliveryRecord struct {
	ID           int64        `gorm:"primaryKey;autoIncrement"`
	Address      string       `gorm:"size:512;not null"`
	Status       string       `gorm:"size:32;not null"`
	DeliveryDate time.Time    `gorm:"not null"`
	OrderID      int64        `gorm:"not null;index"`
	Order        *OrderRecord `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (DeliveryRecord) TableName() string { return "deliveries" }

// Models lists every table in dependency order.
func Models() []any {
	return []any{
		&CustomerRecord{},
		&OrderRecord{},
		&ProductRecord{},
		&PaymentRecord{},
		&DeliveryRecord{},
	}
}

// Migrate creates or updates the schema.
func Migrate(ctx context.Context, db *DB) error {
	if err := db.gorm.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
