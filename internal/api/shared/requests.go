package shared

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest validates a decoded request value. Types implementing
// their own Validate method are validated with it; everything else goes
// through the struct-tag validator.
func ValidateRequest(v interface{}) error {
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}
	return validate.Struct(v)
}
