package command

import (
	"errors"
	"fmt"
)

var (
	// ErrCommandNotFound is returned when a command ID is not in the catalog.
	ErrCommandNotFound = errors.New("command: not found")

	// ErrDuplicateCommand is returned when two catalog entries share an ID.
	ErrDuplicateCommand = errors.New("command: duplicate id")

	// ErrInvalidCommand is returned when a catalog entry is incomplete.
	ErrInvalidCommand = errors.New("command: invalid")

	// ErrMalformedTemplate is returned when a template has unbalanced braces
	// or an empty placeholder.
	ErrMalformedTemplate = errors.New("command: malformed template")

	// ErrUnresolvedPlaceholder is returned when a placeholder has no value.
	ErrUnresolvedPlaceholder = errors.New("command: unresolved placeholder")
)

// PlaceholderError reports the placeholder that could not be substituted.
type PlaceholderError struct {
	Name string
}

func (e *PlaceholderError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnresolvedPlaceholder, e.Name)
}

func (e *PlaceholderError) Unwrap() error {
	return ErrUnresolvedPlaceholder
}
