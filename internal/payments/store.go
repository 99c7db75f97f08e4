package payments

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/imrishuroy/easyorder/internal/apperr"
	"github.com/imrishuroy/easyorder/internal/store"
)

const entity = "payment"

// Store encapsulates operations on the payments table.
type Store struct {
	db      *store.DB
	nowFunc func() time.Time
}

func NewStore(db *store.DB) *Store {
	return &Store{db: db, nowFunc: time.Now}
}

// Create records a payment for an existing order. Status defaults to pending
// and created_at to now.
func (s *Store) Create(ctx context.Context, in Payment) (*Payment, error) {
	if in.Status == "" {
		in.Status = StatusPending
	}
	if err := validate(in); err != nil {
		return nil, err
	}
	rec := store.PaymentRecord{
		OrderID:       in.OrderID,
		Amount:        in.Amount.Round(2),
		Status:        in.Status,
		PaymentMethod: in.PaymentMethod,
		CreatedAt:     s.nowFunc().UTC(),
	}
	err := s.db.UnitOfWork(ctx, "create payment", func(tx *gorm.DB) error {
		return tx.Create(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	out := fromRecord(rec)
	return &out, nil
}

func (s *Store) List(ctx context.Context, page store.Page) ([]Payment, error) {
	var recs []store.PaymentRecord
	err := s.db.UnitOfWork(ctx, "list payments", func(tx *gorm.DB) error {
		return page.Scope(tx).Find(&recs).Error
	})
	if err != nil {
		return nil, err
	}
	out := make([]Payment, 0, len(recs))
	for _, r := range recs {
		out = append(out, fromRecord(r))
	}
	return out, nil
}

// Get fetches a payment by id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, id int64) (*Payment, error) {
	var (
		rec   store.PaymentRecord
		found bool
	)
	err := s.db.UnitOfWork(ctx, "get payment", func(tx *gorm.DB) (err error) {
		found, err = store.Find(tx, &rec, id)
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	out := fromRecord(rec)
	return &out, nil
}

// Update replaces order, amount, method and status. The status change must be
// a permitted transition; created_at is kept.
func (s *Store) Update(ctx context.Context, id int64, in Payment) (*Payment, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	var rec store.PaymentRecord
	err := s.db.UnitOfWork(ctx, "update payment", func(tx *gorm.DB) error {
		found, err := store.Find(tx, &rec, id)
		if err != nil {
			return err
		}
		if !found {
			return apperr.NotFound(entity, id)
		}
		if err := checkTransition(rec.Status, in.Status); err != nil {
			return err
		}
		rec.OrderID = in.OrderID
		rec.Amount = in.Amount.Round(2)
		rec.Status = in.Status
		rec.PaymentMethod = in.PaymentMethod
		return tx.Save(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	out := fromRecord(rec)
	return &out, nil
}

// UpdateStatus moves a payment along its lifecycle. Setting the current
// status again is a no-op.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status string) (*Payment, error) {
	var rec store.PaymentRecord
	err := s.db.UnitOfWork(ctx, "update payment status", func(tx *gorm.DB) error {
		found, err := store.Find(tx, &rec, id)
		if err != nil {
			return err
		}
		if !found {
			return apperr.NotFound(entity, id)
		}
		if err := checkTransition(rec.Status, status); err != nil {
			return err
		}
		if rec.Status == status {
			return nil
		}
		rec.Status = status
		return tx.Model(&rec).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}
	out := fromRecord(rec)
	return &out, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.db.UnitOfWork(ctx, "delete payment", func(tx *gorm.DB) error {
		var rec store.PaymentRecord
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

func validate(p Payment) error {
	if !ValidStatus(p.Status) {
		return apperr.Validation("status must be one of pending, paid, cancelled; got %q", p.Status)
	}
	if p.Amount.IsNegative() {
		return apperr.Validation("amount must be >= 0")
	}
	if p.PaymentMethod == "" {
		return apperr.Validation("payment_method is required")
	}
	return nil
}
