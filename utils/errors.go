package utils

import (
	"github.com/pkg/errors"
)

// NewComponentNotFoundError is used when a component is not found.
func NewComponentNotFoundError(name string) error {
	return errors.Errorf("component %q not found", name)
}

// NewUnexpectedTypeError is used when there is a type mismatch.
func NewUnexpectedTypeError(expected interface{}, actual interface{}) error {
	return errors.Errorf("expected %T but got %T", expected, actual)
}
