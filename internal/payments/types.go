package payments

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/easyorder/internal/apperr"
	"github.com/imrishuroy/easyorder/internal/store"
)

// Payment statuses.
const (
	StatusPending   = store.PaymentPending
	StatusPaid      = store.PaymentPaid
	StatusCancelled = store.PaymentCancelled
)

// ErrInvalidTransition is returned for a status change the lifecycle does not allow.
var ErrInvalidTransition = fmt.Errorf("%w: invalid payment status transition", apperr.ErrConstraintViolation)

// Payment settles (part of) an order.
type Payment struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ValidStatus reports whether s is a known payment status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a payment may move from one status to another.
// pending may become paid or cancelled; paid and cancelled are final.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	return from == StatusPending && (to == StatusPaid || to == StatusCancelled)
}

func checkTransition(from, to string) error {
	if !ValidStatus(to) {
		return apperr.Validation("status must be one of pending, paid, cancelled; got %q", to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// IsInvalidTransition reports whether err came from a rejected status change.
func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

func fromRecord(r store.PaymentRecord) Payment {
	return Payment{
		ID:            r.ID,
		OrderID:       r.OrderID,
		Amount:        r.Amount.Round(2),
		Status:        r.Status,
		PaymentMethod: r.PaymentMethod,
		CreatedAt:     r.CreatedAt.UTC(),
	}
}
