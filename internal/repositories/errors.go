// Package repositories contains the MySQL persistence layer
package repositories

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// StorageError wraps a database failure with the operation that caused it
type StorageError struct {
	Op      string
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error in %s: %s", e.Op, e.Message)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op, message string, err error) *StorageError {
	return &StorageError{Op: op, Message: message, Err: err}
}

// isTransient reports whether a retry on a fresh connection may succeed
func isTransient(err error) bool {
	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn)
}
