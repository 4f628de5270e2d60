package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when a create or rename would duplicate a username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when the addressed username is not stored.
	ErrUserNotFound = errors.New("user not found")
	// ErrPriceDateNotFound is returned when no price table exists for a date.
	ErrPriceDateNotFound = errors.New("no prices for date")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
