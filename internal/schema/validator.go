// Package schema validates relay events before they leave the service.
package schema

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator checks events against their struct-tag schema.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate returns an error describing every violated constraint.
func (v *Validator) Validate(event any) error {
	if err := v.v.Struct(event); err != nil {
		return fmt.Errorf("event schema: %w", err)
	}
	return nil
}
