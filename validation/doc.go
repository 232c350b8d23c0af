// Package validation provides input validation for pipeline descriptions and
// API requests.
//
// Struct tag validation uses the go-playground validator library; the
// programmatic Validator collects positional rule violations that tags cannot
// express (for example "the first stage must be a scan").
//
// # Struct Tag Validation
//
//	type RunRequest struct {
//	    Strategy string `json:"strategy" validate:"omitempty,oneof=pull push"`
//	}
//	err := validation.Validate(req)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Custom(len(stages) >= 2, "stages", "needs at least a scan and a collect")
//	err := v.ValidateWith(errors.InvalidPipeline)
package validation
