package main

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/imrishuroy/easyorder/internal/store"
)

// Summary counts the rows inserted by Seed.
type Summary struct {
	Customers  int
	Products   int
	Orders     int
	Payments   int
	Deliveries int
}

// Seed wipes every table and inserts the sample data set in one transaction.
func Seed(ctx context.Context, db *store.DB, now time.Time) (Summary, error) {
	now = now.UTC()
	var sum Summary
	err := db.UnitOfWork(ctx, "seed", func(tx *gorm.DB) error {
		wipe := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []any{
			&store.PaymentRecord{},
			&store.DeliveryRecord{},
			&store.ProductRecord{},
			&store.OrderRecord{},
			&store.CustomerRecord{},
		} {
			if err := wipe.Delete(model).Error; err != nil {
				return err
			}
		}

		customers := []store.CustomerRecord{
			{Name: "Alice Souza", Email: "alice@example.com"},
			{Name: "Bruno Lima", Email: "bruno@example.com"},
			{Name: "Carla Mendes", Email: "carla@example.com"},
		}
		if err := tx.Create(&customers).Error; err != nil {
			return err
		}

		products := []store.ProductRecord{
			{Name: "Notebook", Price: decimal.RequireFromString("3500.00"), Category: "Eletrônicos", StockQuantity: 10},
			{Name: "Mouse Gamer", Price: decimal.RequireFromString("150.00"), Category: "Acessórios", StockQuantity: 30},
			{Name: "Teclado Mecânico", Price: decimal.RequireFromString("400.00"), Category: "Acessórios", StockQuantity: 20},
		}
		if err := tx.Create(&products).Error; err != nil {
			return err
		}

		orders := []store.OrderRecord{
			{Description: "Compra Notebook e Mouse", CustomerID: customers[0].ID},
			{Description: "Compra Teclado", CustomerID: customers[1].ID},
		}
		if err := tx.Create(&orders).Error; err != nil {
			return err
		}

		payments := []store.PaymentRecord{
			{OrderID: orders[0].ID, Amount: decimal.RequireFromString("3650.00"), Status: store.PaymentPaid, PaymentMethod: "cartão", CreatedAt: now},
			{OrderID: orders[1].ID, Amount: decimal.RequireFromString("400.00"), Status: store.PaymentPending, PaymentMethod: "boleto", CreatedAt: now},
		}
		if err := tx.Create(&payments).Error; err != nil {
			return err
		}

		deliveries := []store.DeliveryRecord{
			{Address: "Rua das Flores, 123", Status: "entregue", DeliveryDate: now.AddDate(0, 0, -2), OrderID: orders[0].ID},
			{Address: "Av. Paulista, 500", Status: "em transporte", DeliveryDate: now.AddDate(0, 0, 3), OrderID: orders[1].ID},
		}
		if err := tx.Create(&deliveries).Error; err != nil {
			return err
		}

		sum = Summary{
			Customers:  len(customers),
			Products:   len(products),
			Orders:     len(orders),
			Payments:   len(payments),
			Deliveries: len(deliveries),
		}
		return nil
	})
	return sum, err
}
