package cli

import (
	"errors"

	"github.com/jsamuelsen/address-book/internal/domain"
)

// Exit codes returned by the addressbook binary.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitNotFound    = 2
	ExitInvalid     = 3
	ExitUnavailable = 4
)

// Describe maps an error to the message shown to the user.
// Errors without a domain meaning are shown as they are.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var (
		notFound   *domain.NotFoundError
		validation *domain.ValidationError
		exhausted  *domain.ExhaustedError
	)

	switch {
	case errors.As(err, &exhausted):
		return "Too many invalid values; the " + string(exhausted.Field) + " was not changed."

	case errors.As(err, &notFound):
		if notFound.Entity == "birthday of" {
			return "Contact " + notFound.Key + " has no birthday saved."
		}

		return "Contact " + notFound.Key + " was not found."

	case domain.IsConflict(err):
		return "A contact with this name already exists."

	case errors.As(err, &validation):
		switch kind := domain.FieldKind(validation.Field); kind {
		case domain.FieldName, domain.FieldPhone, domain.FieldEmail, domain.FieldBirthday:
			return domain.FormatHint(kind)
		default:
			return validation.Error()
		}

	case domain.IsUnavailable(err):
		return "The address book could not be saved or read: " + err.Error()

	default:
		return err.Error()
	}
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case domain.IsNotFound(err):
		return ExitNotFound
	case domain.IsValidation(err), domain.IsConflict(err), domain.IsExhausted(err):
		return ExitInvalid
	case domain.IsUnavailable(err):
		return ExitUnavailable
	default:
		return ExitFailure
	}
}
