package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/imrishuroy/easyorder/internal/apperr"
	"github.com/imrishuroy/easyorder/internal/store"
)

const entity = "order"

// Store encapsulates operations on the orders table.
type Store struct {
	db *store.DB
}

// NewStore creates a new orders Store.
func NewStore(db *store.DB) *Store {
	return &Store{db: db}
}

// Create inserts an order for an existing customer. An unknown customer is a
// constraint violation and leaves no row behind.
func (s *Store) Create(ctx context.Context, in Order) (*Order, error) {
	rec := store.OrderRecord{Description: in.Description, CustomerID: in.CustomerID}
	err := s.db.UnitOfWork(ctx, "create order", func(tx *gorm.DB) error {
		return tx.Create(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	out := fromRecord(rec)
	return &out, nil
}

// List returns orders ordered by id.
func (s *Store) List(ctx context.Context, page store.Page) ([]Order, error) {
	var recs []store.OrderRecord
	err := s.db.UnitOfWork(ctx, "list orders", func(tx *gorm.DB) error {
		return page.Scope(tx).Find(&recs).Error
	})
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(recs))
	for _, r := range recs {
		out = append(out, fromRecord(r))
	}
	return out, nil
}

// Get fetches an order by id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, id int64) (*Order, error) {
	var (
		rec   store.OrderRecord
		found bool
	)
	err := s.db.UnitOfWork(ctx, "get order", func(tx *gorm.DB) (err error) {
		found, err = store.Find(tx, &rec, id)
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	out := fromRecord(rec)
	return &out, nil
}

// Update replaces description and customer of an existing order.
func (s *Store) Update(ctx context.Context, id int64, in Order) (*Order, error) {
	var rec store.OrderRecord
	err := s.db.UnitOfWork(ctx, "update order", func(tx *gorm.DB) error {
		found, err := store.Find(tx, &rec, id)
		if err != nil {
			return err
		}
		if !found {
			return apperr.NotFound(entity, id)
		}
		rec.Description = in.Description
		rec.CustomerID = in.CustomerID
		return tx.Save(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	out := fromRecord(rec)
	return &out, nil
}

// Delete removes an order together with its payments and deliveries.
func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.db.UnitOfWork(ctx, "delete order", func(tx *gorm.DB) error {
		var rec store.OrderRecord
		found, err := store.Find(tx, &rec, id)
		if err != nil {
			return err
		}
		if !found {
			return apperr.NotFound(entity, id)
		}
		return tx.Delete(&rec).Error
	})
}
