//go:build !sqlite_cgo

package store

// Default build: pure Go SQLite (modernc.org/sqlite), no C toolchain needed.
// Build with -tags sqlite_cgo to use github.com/mattn/go-sqlite3 instead.

import (
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const sqliteDriverName = "sqlite"

func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		path, sqliteBusyTimeout)
}

func sqliteDialector(path string) gorm.Dialector {
	return sqlite.New(sqlite.Config{DriverName: sqliteDriverName, DSN: sqliteDSN(path)})
}

// classifySQLite reports the constraint family of a modernc error.
func classifySQLite(err error) (constraintKind, bool) {
	var se *msqlite.Error
	if !errors.As(err, &se) {
		return 0, false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return constraintUnique, true
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return constraintForeignKey, true
	case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return constraintCheck, true
	}
	return 0, false
}
