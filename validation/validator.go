package validation

import (
	"github.com/kbukum/fittrack/errors"
)

// Validator collects field errors from programmatic checks. The first
// failure recorded for a field wins.
type Validator struct {
	fields map[string]string
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{fields: make(map[string]string)}
}

// Check records message against field when ok is false.
func (v *Validator) Check(ok bool, field, message string) *Validator {
	if !ok {
		v.AddError(field, message)
	}
	return v
}

// AddError records a failure for field.
func (v *Validator) AddError(field, message string) {
	if _, exists := v.fields[field]; !exists {
		v.fields[field] = message
	}
}

// Merge folds the field errors of a VALIDATION error into v. Any other
// error is ignored.
func (v *Validator) Merge(err error) *Validator {
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeValidation {
		return v
	}
	if fields, ok := appErr.Details["fields"].(map[string]string); ok {
		for f, m := range fields {
			v.AddError(f, m)
		}
	}
	return v
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool {
	return len(v.fields) > 0
}

// Err returns the collected failures as a VALIDATION error, or nil.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return errors.Validation(v.fields)
}
