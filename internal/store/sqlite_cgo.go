//go:build sqlite_cgo

package store

// CGO build: github.com/mattn/go-sqlite3.
//   CGO_ENABLED=1 go build -tags sqlite_cgo ./...

import (
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const sqliteDriverName = "sqlite3"

func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=%d&_journal_mode=WAL", path, sqliteBusyTimeout)
}

func sqliteDialector(path string) gorm.Dialector {
	return sqlite.New(sqlite.Config{DriverName: sqliteDriverName, DSN: sqliteDSN(path)})
}

func classifySQLite(err error) (constraintKind, bool) {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return 0, false
	}
	switch se.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return constraintUnique, true
	case sqlite3.ErrConstraintForeignKey:
		return constraintForeignKey, true
	case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
		return constraintCheck, true
	}
	return 0, false
}
