package api

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"valuation_service/internal/domain/model"
)

// Validator reports struct validation failures by JSON field name.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Validate returns nil or an AppError for the first failing field. A missing
// required field reports "Missing field: <name>".
func (val *Validator) Validate(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return model.NewAppError(model.ErrCodeValidationInvalidBody, err.Error(), err)
	}

	fe := verrs[0]
	if fe.Tag() == "required" {
		return model.MissingField(fe.Field())
	}
	appErr := model.NewAppError(model.ErrCodeValidationInvalidField, "Invalid field: "+fe.Field(), err)
	appErr.Details = map[string]any{"field": fe.Field(), "rule": fe.Tag()}
	return appErr
}
