package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Find loads the row with the given primary key into dest. A missing row is
// reported as found=false with a nil error.
func Find(tx *gorm.DB, dest any, id int64) (bool, error) {
	err := tx.Take(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UnitOfWork runs fn in one transaction. Once started the transaction is not
// cancelled by the caller; it is bounded by database.op_timeout instead.
// Inside fn use tx only: SQLite runs on a single connection.
func (db *DB) UnitOfWork(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), db.opTimeout)
	defer cancel()
	return Classify(op, db.gorm.WithContext(opCtx).Transaction(fn))
}
