package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/angelmondragon/agrimarket/pkg/enums"
	pkgerrors "github.com/angelmondragon/agrimarket/pkg/errors"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

type enumValue interface {
	IsValid() bool
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return enums.Currency(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if !field.CanInterface() {
			return false
		}
		e, ok := field.Interface().(enumValue)
		return ok && e.IsValid()
	})
	return v
}

// Struct validates input against its `validate` tags and returns a
// VALIDATION_ERROR carrying one message per failing field.
func Struct(input any) error {
	if err := validate.Struct(input); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "currency":
		return "must be a 3-letter ISO currency code"
	case "enum":
		return "is not an allowed value"
	case "nefield":
		return fmt.Sprintf("must differ from %s", fe.Param())
	}
	return "is invalid"
}
