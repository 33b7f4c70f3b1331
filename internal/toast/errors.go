package toast

import (
	"errors"
	"strconv"
)

var (
	// ErrInvalidArgument is returned when a required argument is missing or
	// malformed, such as an empty id for a loading toast.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when an update targets an id with no live toast.
	ErrNotFound = errors.New("not found")
)

// Error describes a failed registry operation.
type Error struct {
	Op  string
	ID  string
	Err error
}

func (e *Error) Error() string {
	msg := "toast: " + e.Op
	if e.ID != "" {
		msg += " " + strconv.Quote(e.ID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}
