package report

import (
	"errors"
	"fmt"

	"campusreport/backend/internal/access"
	"campusreport/backend/internal/lifecycle"
	"campusreport/backend/internal/storage"
)

var (
	// ErrNotFound is returned for unknown ids and for any tracking lookup
	// whose ticket and email do not match the same report.
	ErrNotFound        = errors.New("report not found")
	ErrNoChange        = lifecycle.ErrNoChange
	ErrUnauthorized    = access.ErrUnauthorized
	ErrTooManyAttempts = errors.New("could not allocate a unique ticket code")
	ErrThrottled       = errors.New("too many failed lookups")
	ErrFileTooLarge    = errors.New("file exceeds the size limit")
	ErrEmptyFile       = errors.New("file is empty")
)

// PersistenceError wraps a storage or network failure. Admin surfaces show
// Err verbatim; reporter surfaces show a generic message.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// UploadError is a per-file failure. It never rolls back the report.
type UploadError struct {
	FileName string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.FileName, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

func persistence(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return &PersistenceError{Op: op, Err: err}
}
