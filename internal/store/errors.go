package store

import (
	"errors"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/imrishuroy/easyorder/internal/apperr"
)

type constraintKind int

const (
	constraintUnique constraintKind = iota + 1
	constraintForeignKey
	constraintCheck
)

func (k constraintKind) String() string {
	switch k {
	case constraintUnique:
		return "duplicate value for a unique field"
	case constraintForeignKey:
		return "referenced row does not exist or is still referenced"
	case constraintCheck:
		return "value rejected by a check constraint"
	default:
		return "constraint failed"
	}
}

// Classify maps a database error onto the error taxonomy. Errors that already
// carry a taxonomy kind pass through unchanged.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if classified(err) {
		return err
	}
	if kind, ok := constraintOf(err); ok {
		return apperr.Constraint(op+": "+kind.String(), err)
	}
	return apperr.StoreFault(op, err)
}

func classified(err error) bool {
	return errors.Is(err, apperr.ErrNotFound) ||
		errors.Is(err, apperr.ErrValidation) ||
		errors.Is(err, apperr.ErrConstraintViolation) ||
		errors.Is(err, apperr.ErrStoreFault)
}

func constraintOf(err error) (constraintKind, bool) {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return constraintUnique, true
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return constraintForeignKey, true
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return constraintCheck, true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return sqlStateKind(pgErr.Code)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return sqlStateKind(string(pqErr.Code))
	}
	var myErr *mysqldrv.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return constraintUnique, true
		case 1451, 1452:
			return constraintForeignKey, true
		case 1048, 3819:
			return constraintCheck, true
		}
		return 0, false
	}
	return classifySQLite(err)
}

// sqlStateKind covers the integrity constraint class (23xxx).
func sqlStateKind(code string) (constraintKind, bool) {
	switch code {
	case "23505":
		return constraintUnique, true
	case "23503":
		return constraintForeignKey, true
	case "23514", "23502":
		return constraintCheck, true
	}
	return 0, false
}
