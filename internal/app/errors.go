package app

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCollection is returned when navigating to an unregistered key
	ErrInvalidCollection = errors.New("invalid collection")

	// ErrValidation is returned when a submit is missing required fields
	ErrValidation = errors.New("validation failed")

	// ErrNoActiveForm is returned when submitting without a form open
	ErrNoActiveForm = errors.New("no active form")

	// ErrMissingID is returned when editing a record that has no usable id
	ErrMissingID = errors.New("record has no id")
)

// FetchFailedMessage is the user-facing message for any failed fetch
const FetchFailedMessage = "Failed to fetch data."

// ValidationError names the required fields that were empty on submit
type ValidationError struct {
	Collection string
	Fields     []string // field names, in descriptor order
	Labels     []string // matching display labels
}

func (e *ValidationError) Error() string {
	names := e.Labels
	if len(names) == 0 {
		names = e.Fields
	}
	return fmt.Sprintf("%s: missing required fields: %s", e.Collection, strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
