package services

import (
	"fmt"
	"sort"
	"strings"

	"foodgram/internal/repositories"
)

// ErrNotFound is returned when a referenced object does not exist.
var ErrNotFound = repositories.ErrNotFound

// ValidationError maps request fields to the problems found in them.
type ValidationError struct {
	Fields map[string][]string
}

func newValidationError(field, message string) *ValidationError {
	e := &ValidationError{Fields: make(map[string][]string)}
	e.Add(field, message)
	return e
}

// Add records a message against field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e.Fields[field], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ConflictError is a rule violation caused by the current state of the data,
// such as bookmarking a recipe twice.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

var (
	ErrAlreadyFavorited  = &ConflictError{Message: "recipe is already in favorites"}
	ErrAlreadyInCart     = &ConflictError{Message: "recipe is already in the shopping cart"}
	ErrAlreadySubscribed = &ConflictError{Message: "you are already subscribed to this author"}
	ErrSelfSubscribe     = &ConflictError{Message: "you cannot subscribe to yourself"}
	ErrNotSubscribed     = &ConflictError{Message: "you are not subscribed to this author"}
	ErrEmptyCart         = &ConflictError{Message: "shopping cart is empty"}
)
