// Package validation validates request input and reports failures as
// INVALID_INPUT application errors with per-field details.
//
// # Struct Tag Validation
//
// Field names come from json tags. Besides the validator built-ins, two rules
// are registered: strongpassword and year.
//
//	type registerRequest struct {
//	    Courriel string `json:"courriel" validate:"required,email"`
//	    Mdp      string `json:"mdp" validate:"required,strongpassword"`
//	}
//	err := validation.Validate(req)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.OneOf("ordre", ordre, []string{"asc", "desc"})
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
