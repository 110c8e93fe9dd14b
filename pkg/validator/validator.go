package validator

import (
	"path"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator with the objectkey rule registered
func New() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("objectkey", validateObjectKey)
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// validateObjectKey rejects keys that are absolute or climb out of their prefix
func validateObjectKey(fl validator.FieldLevel) bool {
	key := fl.Field().String()
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	cleaned := path.Clean(key)
	return cleaned == key && !strings.HasPrefix(cleaned, "..") && !strings.Contains(cleaned, "/../")
}
