package domain

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Struct tags backed by the contact field rules.
const (
	TagPhone    = "phone"
	TagEmail    = "contact_email"
	TagBirthday = "birthday_past"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the contact field tags registered.
// Field names in errors come from the `name` struct tag when present.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("name"), ",", 2)[0]
			if name == "" {
				return fld.Name
			}

			if name == "-" {
				return ""
			}

			return name
		})

		_ = validate.RegisterValidation(TagPhone, fieldRule(ValidatePhone))
		_ = validate.RegisterValidation(TagEmail, fieldRule(ValidateEmail))
		_ = validate.RegisterValidationCtx(TagBirthday, func(ctx context.Context, fl validator.FieldLevel) bool {
			_, err := ValidateBirthday(fl.Field().String(), nowFrom(ctx))
			return err == nil
		})
	})

	return validate
}

func fieldRule(rule func(string) (string, error)) validator.Func {
	return func(fl validator.FieldLevel) bool {
		_, err := rule(fl.Field().String())
		return err == nil
	}
}

type nowKey struct{}

// nowFrom returns the time "today" is measured from during a validation run.
func nowFrom(ctx context.Context) time.Time {
	if now, ok := ctx.Value(nowKey{}).(time.Time); ok {
		return now
	}

	return time.Now()
}

// ValidateStruct checks v's struct tags against the wall clock and reports
// the first failing field as a *ValidationError.
func ValidateStruct(v any) error {
	return ValidateStructAt(v, time.Now())
}

// ValidateStructAt is ValidateStruct with birthdays checked against now.
func ValidateStructAt(v any, now time.Time) error {
	err := Validator().StructCtx(context.WithValue(context.Background(), nowKey{}, now), v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]

	return NewValidationErrorWithValue(fe.Field(), tagMessage(fe), fe.Value())
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case TagPhone:
		return "does not match the phone format"
	case TagEmail:
		return "does not match the email format"
	case TagBirthday:
		return "must be a day.month.year date before today"
	default:
		return "failed validation: " + fe.Tag()
	}
}
