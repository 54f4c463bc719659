package models

import (
	"errors"
	"fmt"
)

// ErrNoDeadline is returned when a unix timestamp is requested for an
// entity that has no deadline set.
var ErrNoDeadline = errors.New("no deadline set")

// DeadlineFormatError indicates that a deadline string did not match the
// expected "dd mm yyyy" format or named an impossible calendar date.
// It is always returned before any state is mutated.
type DeadlineFormatError struct {
	Input string
}

func (e *DeadlineFormatError) Error() string {
	return fmt.Sprintf("invalid deadline %q: expected format \"dd mm yyyy\"", e.Input)
}

// IndexError indicates that a 1-based positional operation was given a
// number outside the current list bounds.
type IndexError struct {
	What   string
	Index  int
	Length int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s number %d out of range (have %d)", e.What, e.Index, e.Length)
}

// NotFoundError indicates that a keyed removal targeted an entry that does
// not exist. Lookups by id or name do not use this type; they return a
// comma-ok boolean instead.
type NotFoundError struct {
	What string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.What, e.Key)
}

// DuplicateNameError indicates an attempt to create or rename a project or
// team to a name already taken within its workflow. Names are unique per
// workflow so that lookups by name are unambiguous.
type DuplicateNameError struct {
	What string
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s named %q already exists", e.What, e.Name)
}
