package api

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"staffcall-backend/internal/apperr"
	"staffcall-backend/internal/model"
)

// NewValidator returns a validator that also knows the domain tags:
// staffrole, joinrole, targetrole, priority and category.
func NewValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "staffrole", func(fl validator.FieldLevel) bool {
		return model.Role(fl.Field().String()).Valid()
	})
	mustRegister(v, "joinrole", func(fl validator.FieldLevel) bool {
		return model.Role(fl.Field().String()).Joinable()
	})
	mustRegister(v, "targetrole", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == model.RoleAll || model.Role(s).Valid()
	})
	mustRegister(v, "priority", func(fl validator.FieldLevel) bool {
		return model.Priority(fl.Field().String()).Valid()
	})
	mustRegister(v, "category", func(fl validator.FieldLevel) bool {
		return model.Category(fl.Field().String()).Valid()
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// validationMessage turns the first failed rule into the user-facing message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return msgInvalidRequest
	}
	switch verrs[0].Tag() {
	case "staffrole", "joinrole":
		return apperr.ErrInvalidRole.Message
	case "targetrole", "required_without", "excluded_with":
		return apperr.ErrInvalidTarget.Message
	case "priority":
		return apperr.ErrInvalidPriority.Message
	case "category":
		return apperr.ErrInvalidCategory.Message
	}
	return msgInvalidRequest
}
