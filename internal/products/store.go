package products

import (
	"context"

	"gorm.io/gorm"

	"github.com/imrishuroy/easyorder/internal/apperr"
	"github.com/imrishuroy/easyorder/internal/store"
)

const entity = "product"

// Store encapsulates operations on the products table.
type Store struct {
	db *store.DB
}

func NewStore(db *store.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, in Product) (*Product, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	var rec store.ProductRecord
	in.apply(&rec)
	err := s.db.UnitOfWork(ctx, "create product", func(tx *gorm.DB) error {
		return tx.Create(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	out := fromRecord(rec)
	return &out, nil
}

func (s *Store) List(ctx context.Context, page store.Page) ([]Product, error) {
	var recs []store.ProductRecord
	err := s.db.UnitOfWork(ctx, "list products", func(tx *gorm.DB) error {
		return page.Scope(tx).Find(&recs).Error
	})
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(recs))
	for _, r := range recs {
		out = append(out, fromRecord(r))
	}
	return out, nil
}

// Get fetches a product by id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, id int64) (*Product, error) {
	var (
		rec   store.ProductRecord
		found bool
	)
	err := s.db.UnitOfWork(ctx, "get product", func(tx *gorm.DB) (err error) {
		found, err = store.Find(tx, &rec, id)
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	out := fromRecord(rec)
	return &out, nil
}

func (s *Store) Update(ctx context.Context, id int64, in Product) (*Product, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	var rec store.ProductRecord
	err := s.db.UnitOfWork(ctx, "update product", func(tx *gorm.DB) error {
		found, err := store.Find(tx, &rec, id)
		if err != nil {
			return err
		}
		if !found {
			return apperr.NotFound(entity, id)
		}
		in.apply(&rec)
		return tx.Save(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	out := fromRecord(rec)
	return &out, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.db.UnitOfWork(ctx, "delete product", func(tx *gorm.DB) error {
		var rec store.ProductRecord
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

func validate(p Product) error {
	if p.StockQuantity < 0 {
		return apperr.Validation("stock_quantity must be >= 0")
	}
	if p.Price.IsNegative() {
		return apperr.Validation("price must be >= 0")
	}
	return nil
}
