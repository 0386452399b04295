package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/codemission/internal/api"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared form validator with the custom rules registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
		_ = validate.RegisterValidation("password_complexity", passwordComplexity)
	})
	return validate
}

// Form validates a request struct and converts failures into a single validation error.
func Form(form any) error {
	err := Validator().Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return api.NewValidationError(err.Error())
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fieldErr := range fieldErrors {
		messages = append(messages, describe(fieldErr))
	}
	return reject("form", strings.Join(messages, "; "))
}

func passwordComplexity(fl validator.FieldLevel) bool {
	var lower, upper, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

func describe(fieldErr validator.FieldError) string {
	label := fieldLabel(fieldErr)
	switch fieldErr.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Enter a valid email address"
	case "min":
		if fieldErr.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fieldErr.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fieldErr.Param())
	case "max":
		if fieldErr.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, fieldErr.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fieldErr.Param())
	case "eqfield":
		return "Passwords do not match"
	case "password_complexity":
		return "Password must contain at least one lowercase letter, one uppercase letter and one number"
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func fieldLabel(fieldErr validator.FieldError) string {
	switch fieldErr.Field() {
	case "studentId", "StudentID":
		return "Student ID"
	case "-", "ConfirmPassword":
		return "Password confirmation"
	}
	name := fieldErr.Field()
	if name == "" {
		return "Field"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
