// Package validation checks request payloads and reports failures as a
// VALIDATION *errors.AppError whose details map each json field name to a
// message.
//
// Struct tags cover single-field rules:
//
//	type registerRequest struct {
//	    Email string `json:"email" validate:"required,email"`
//	}
//	err := validation.Struct(req)
//
// Rules spanning fields go through a Validator:
//
//	v := validation.New()
//	v.Check(req.ValidReps+req.InvalidReps <= req.Reps, "validReps", "exceeds reps")
//	err := v.Err()
package validation
