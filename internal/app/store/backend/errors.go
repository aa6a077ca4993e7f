package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an update or lookup matched no row.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique index rejected a write.
	ErrDuplicate = errors.New("duplicate record")
)

// Error is the typed failure every Backend returns.
type Error struct {
	Op      string // find, count, insert, update, delete, ping, schema
	Table   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	switch {
	case msg == "" && e.Err != nil:
		msg = e.Err.Error()
	case e.Err != nil:
		msg += ": " + e.Err.Error()
	}
	if e.Table == "" {
		return fmt.Sprintf("backend %s: %s", e.Op, msg)
	}
	return fmt.Sprintf("backend %s %s: %s", e.Op, e.Table, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap converts err into a *Error. It returns nil for a nil err and leaves
// an existing *Error untouched.
func Wrap(op, table string, err error) error {
	if err == nil {
		return nil
	}
	var be *Error
	if errors.As(err, &be) {
		return err
	}
	return &Error{Op: op, Table: table, Err: err}
}

// Fail builds a *Error with a message and an optional cause.
func Fail(op, table, message string, cause error) error {
	return &Error{Op: op, Table: table, Message: message, Err: cause}
}

// IsNotFound reports whether err means no row matched.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsDuplicate reports whether err means a unique constraint was violated.
func IsDuplicate(err error) bool { return errors.Is(err, ErrDuplicate) }
