package shared

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs validator tags against v and wraps failures in the
// validation error family.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return fmt.Errorf("%w: field %s failed on %s", ErrValidation, first.Field(), first.Tag())
	}
	return fmt.Errorf("%w: %s", ErrValidation, err.Error())
}
