package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSlugExhausted means every generated slug collided with an existing one.
	ErrSlugExhausted = errors.New("unable to generate a unique slug")
	ErrInviteInvalid = errors.New("invalid invite token")
	ErrInviteExpired = errors.New("invite token has expired")

	// Stores translate driver specific conditions into these two.
	ErrNoRows          = errors.New("no rows in result set")
	ErrUniqueViolation = errors.New("unique constraint violation")
)

// StoreError is a persistence failure annotated with the phase that failed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// wrap keeps an already annotated error as is.
func wrap(op string, err error) error {
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// IsStoreError reports whether err came from the persistence client.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
