package repository

import (
	"errors"
	"fmt"
)

// ErrStatusChanged is returned by a status write whose expected current status
// no longer matches the stored one.
var ErrStatusChanged = errors.New("order status changed concurrently")

// SchemaMismatchError reports a write rejected because the deployed schema
// lacks a column the write tried to set. Column is empty when the driver
// message did not name one.
type SchemaMismatchError struct {
	Table  string
	Column string
	Err    error
}

func (e *SchemaMismatchError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("schema mismatch on %s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("schema mismatch on %s: unknown column %q: %v", e.Table, e.Column, e.Err)
}

func (e *SchemaMismatchError) Unwrap() error {
	return e.Err
}
