// Package validation configures the shared validator and turns its failures
// into per-field messages keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/health-program-api/pkg/errors"
)

// NonFieldErrors collects errors that do not belong to a single field.
const NonFieldErrors = "non_field_errors"

var (
	phonePattern    = regexp.MustCompile(`^\d{10,15}$`)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	dateType        = reflect.TypeOf(time.Time{})
)

// New returns a validator with the project tags registered and field names
// reported by their json tag.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("birthdate", notInFuture)
	return v
}

// notInFuture accepts dates up to and including today.
func notInFuture(fl validator.FieldLevel) bool {
	field := fl.Field()
	if !field.Type().ConvertibleTo(dateType) {
		return false
	}
	value := field.Convert(dateType).Interface().(time.Time)
	now := time.Now()
	return value.Format("2006-01-02") <= now.Format("2006-01-02")
}

// FieldErrors converts validator errors into messages per JSON field.
func FieldErrors(err error) map[string][]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		fields[name] = append(fields[name], message(fe))
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "phone":
		return "Enter a valid phone number."
	case "birthdate":
		return "Date of birth cannot be in the future"
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	case "uuid", "uuid4":
		return "Must be a valid UUID."
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}

// Error wraps a validator failure as a 400 application error carrying field
// messages. Non validator errors pass through FromError.
func Error(err error, message string) error {
	fields := FieldErrors(err)
	if fields == nil {
		return appErrors.FromError(err)
	}
	appErr := appErrors.Invalid(message, fields)
	appErr.Err = err
	return appErr
}
