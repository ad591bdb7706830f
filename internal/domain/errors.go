package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when input fails basic shape validation.
var ErrInvalidInput = errors.New("invalid input")

func invalid(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidInput, field, reason)
}
