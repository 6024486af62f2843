package validators

import (
	"github.com/go-playground/validator/v10"

	"github.com/anonto42/sparkmatch/backend/internal/apperrors"
)

// CustomValidator adapts go-playground/validator to echo.Validator.
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate reports struct tag violations as a ValidationError naming the first bad field.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		return apperrors.Validation(fe.Field(), "failed on the '"+fe.Tag()+"' rule")
	}
	return apperrors.Validation("", err.Error())
}
