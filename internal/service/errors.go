package service

import "fmt"

// ValidationError reports a bad input shape or value. It is surfaced
// to callers unchanged so the UI layer can render it inline.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// validationf builds a ValidationError for a field.
func validationf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced id that is absent from its
// collection.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// notFound builds a NotFoundError.
func notFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}
