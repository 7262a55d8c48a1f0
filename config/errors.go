package config

import (
	"fmt"

	"github.com/pkg/errors"
)

// NewValidationError wraps err with the config path it was found at.
func NewValidationError(path string, err error) error {
	return errors.Wrapf(err, "error validating %q", path)
}

// NewFieldRequiredError is returned when a required field is missing.
func NewFieldRequiredError(path, field string) error {
	return NewValidationError(path, fmt.Errorf("%q is required", field))
}
