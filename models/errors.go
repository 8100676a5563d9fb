package models

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	// ErrForfaitNotFound is returned when a lookup, update or delete
	// matches no row.
	ErrForfaitNotFound = errors.New("forfait not found")

	// ErrDuplicate is returned when an insert or update violates a unique key.
	ErrDuplicate = errors.New("record already exists")
)

const (
	mysqlDupEntry     = 1062    // ER_DUP_ENTRY
	pgUniqueViolation = "23505" // unique_violation
)

// translateError maps driver specific errors to the package sentinels.
// Errors it does not recognise are returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrForfaitNotFound
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDupEntry {
		return ErrDuplicate
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		return ErrDuplicate
	}

	return err
}
