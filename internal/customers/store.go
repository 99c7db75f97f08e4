package customers

import (
	"context"

	"gorm.io/gorm"

	"github.com/imrishuroy/easyorder/internal/apperr"
	"github.com/imrishuroy/easyorder/internal/store"
)

const entity = "customer"

// Store encapsulates operations on the customers table.
type Store struct {
	db *store.DB
}

// NewStore creates a new customers Store.
func NewStore(db *store.DB) *Store {
	return &Store{db: db}
}

// Create inserts a customer as submitted. A duplicate email is a constraint
// violation; emails differing only in case are distinct.
func (s *Store) Create(ctx context.Context, in Customer) (*Customer, error) {
	rec := store.CustomerRecord{Name: in.Name, Email: in.Email}
	err := s.db.UnitOfWork(ctx, "create customer", func(tx *gorm.DB) error {
		return tx.Create(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	out := fromRecord(rec)
	return &out, nil
}

// List returns customers ordered by id.
func (s *Store) List(ctx context.Context, page store.Page) ([]Customer, error) {
	var recs []store.CustomerRecord
	err := s.db.UnitOfWork(ctx, "list customers", func(tx *gorm.DB) error {
		return page.Scope(tx).Find(&recs).Error
	})
	if err != nil {
		return nil, err
	}
	out := make([]Customer, 0, len(recs))
	for _, r := range recs {
		out = append(out, fromRecord(r))
	}
	return out, nil
}

// Get fetches a customer by id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, id int64) (*Customer, error) {
	var (
		rec   store.CustomerRecord
		found bool
	)
	err := s.db.UnitOfWork(ctx, "get customer", func(tx *gorm.DB) (err error) {
		found, err = store.Find(tx, &rec, id)
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	out := fromRecord(rec)
	return &out, nil
}

// Update replaces name and email of an existing customer.
func (s *Store) Update(ctx context.Context, id int64, in Customer) (*Customer, error) {
	var rec store.CustomerRecord
	err := s.db.UnitOfWork(ctx, "update customer", func(tx *gorm.DB) error {
		found, err := store.Find(tx, &rec, id)
		if err != nil {
			return err
		}
		if !found {
			return apperr.NotFound(entity, id)
		}
		rec.Name = in.Name
		rec.Email = in.Email
		return tx.Save(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	out := fromRecord(rec)
	return &out, nil
}

// Delete removes a customer. Customers that still have orders cannot be deleted.
func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.db.UnitOfWork(ctx, "delete customer", func(tx *gorm.DB) error {
		var rec store.CustomerRecord
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
