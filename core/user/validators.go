package user

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/teamunity/lms/core"
)

var (
	roleTag  = "role"
	roleText = msgInvalidRoleText
)

// InitValidators registers the user validators. core.InitValidators must run first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)
}

// roleValidation checks that the field names one of the known roles.
func roleValidation(fl validator.FieldLevel) bool {
	_, ok := ParseRole(fl.Field().String())
	return ok
}

func invalidRoleError() error {
	return core.NewValidationError(ErrInvalidRole, core.FieldError{Field: "role", Error: roleText})
}
