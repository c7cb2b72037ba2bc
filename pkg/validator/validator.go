package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ReservedUsername cannot be registered because /users/me addresses the caller.
const ReservedUsername = "me"

const MaxUsernameLength = 150

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// ValidUsername checks the username character-set policy: 1 to 150 ASCII
// letters, digits or any of _ . @ + -, and never the reserved "me".
func ValidUsername(s string) bool {
	return len(s) <= MaxUsernameLength &&
		usernamePattern.MatchString(s) &&
		!IsReservedUsername(s)
}

func IsReservedUsername(s string) bool {
	return strings.EqualFold(s, ReservedUsername)
}

func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

var registerOnce sync.Once

// RegisterCustomValidations installs the username and slug tags on gin's
// binding validator and reports fields by their json names.
func RegisterCustomValidations() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return ValidUsername(fl.Field().String())
		})
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return ValidSlug(fl.Field().String())
		})
	})
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		name = strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
	}
	if name == "" {
		return f.Name
	}
	return name
}

// FieldErrors maps each failing field to a readable message. Errors that are
// not validator.ValidationErrors (malformed JSON, wrong types) are reported
// under "non_field_errors".
func FieldErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"non_field_errors": err.Error()}
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		fields[fe.Field()] = getFieldErrorMessage(fe)
	}
	return fields
}

func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, fieldError := range validationErrors {
			messages = append(messages, fmt.Sprintf("%s: %s", fieldError.Field(), getFieldErrorMessage(fieldError)))
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "username":
		return fmt.Sprintf("must be 1-%d characters of letters, digits and @/./+/-/_ and not %q", MaxUsernameLength, ReservedUsername)
	case "slug":
		return "must consist of letters, numbers, underscores or hyphens"
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return "is not valid"
	}
}
