package deliveries

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/imrishuroy/easyorder/internal/apperr"
	"github.com/imrishuroy/easyorder/internal/store"
)

const entity = "delivery"

// Store encapsulates operations on the deliveries table.
type Store struct {
	db      *store.DB
	nowFunc func() time.Time
}

func NewStore(db *store.DB) *Store {
	return &Store{db: db, nowFunc: time.Now}
}

// Create schedules a delivery for an existing order. A zero delivery date
// means now.
func (s *Store) Create(ctx context.Context, in Delivery) (*Delivery, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	rec := store.DeliveryRecord{
		Address:      strings.TrimSpace(in.Address),
		Status:       strings.TrimSpace(in.Status),
		DeliveryDate: s.dateOrNow(in.DeliveryDate),
		OrderID:      in.OrderID,
	}
	err := s.db.UnitOfWork(ctx, "create delivery", func(tx *gorm.DB) error {
		return tx.Create(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	out := fromRecord(rec)
	return &out, nil
}

func (s *Store) List(ctx context.Context, page store.Page) ([]Delivery, error) {
	var recs []store.DeliveryRecord
	err := s.db.UnitOfWork(ctx, "list deliveries", func(tx *gorm.DB) error {
		return page.Scope(tx).Find(&recs).Error
	})
	if err != nil {
		return nil, err
	}
	out := make([]Delivery, 0, len(recs))
	for _, r := range recs {
		out = append(out, fromRecord(r))
	}
	return out, nil
}

// Get fetches a delivery by id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, id int64) (*Delivery, error) {
	var (
		rec   store.DeliveryRecord
		found bool
	)
	err := s.db.UnitOfWork(ctx, "get delivery", func(tx *gorm.DB) (err error) {
		found, err = store.Find(tx, &rec, id)
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	out := fromRecord(rec)
	return &out, nil
}

func (s *Store) Update(ctx context.Context, id int64, in Delivery) (*Delivery, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	var rec store.DeliveryRecord
	err := s.db.UnitOfWork(ctx, "update delivery", func(tx *gorm.DB) error {
		found, err := store.Find(tx, &rec, id)
		if err != nil {
			return err
		}
		if !found {
			return apperr.NotFound(entity, id)
		}
		rec.Address = strings.TrimSpace(in.Address)
		rec.Status = strings.TrimSpace(in.Status)
		rec.OrderID = in.OrderID
		if !in.DeliveryDate.IsZero() {
			rec.DeliveryDate = in.DeliveryDate.UTC()
		}
		return tx.Save(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	out := fromRecord(rec)
	return &out, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.db.UnitOfWork(ctx, "delete delivery", func(tx *gorm.DB) error {
		var rec store.DeliveryRecord
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

func (s *Store) dateOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return s.nowFunc().UTC()
	}
	return t.UTC()
}

func validate(d Delivery) error {
	if strings.TrimSpace(d.Address) == "" {
		return apperr.Validation("address is required")
	}
	if strings.TrimSpace(d.Status) == "" {
		return apperr.Validation("status is required")
	}
	return nil
}
