package domain

import (
	"regexp"
	"time"
)

// FieldKind names a contact field for messages and prompts.
type FieldKind string

const (
	FieldName     FieldKind = "name"
	FieldPhone    FieldKind = "phone"
	FieldEmail    FieldKind = "email"
	FieldBirthday FieldKind = "birthday"
)

// BirthdayLayout is the day.month.year layout accepted for birthdays.
// Day and month may be written with one or two digits.
const BirthdayLayout = "2.1.2006"

var (
	// Ukrainian-style numbers: optional +, optional 3 and 8, optional parenthesised
	// 0XX area code, then 3-2-2 digit groups separated by optional space or hyphen.
	phonePattern = regexp.MustCompile(`^\+?3?\s?8?\s?\(?0\d{2}\)?\s?\d{3}[\s-]?\d{2}[\s-]?\d{2}$`)

	emailPattern = regexp.MustCompile(`^[-\w.]+@([-\w]+\.)+[-\w]{2,4}$`)
)

// FormatHint returns the corrective message shown when a value of kind is rejected.
func FormatHint(kind FieldKind) string {
	switch kind {
	case FieldPhone:
		return "Incorrect phone number format entered.\nEnter your phone in the format '+380991122333'"
	case FieldEmail:
		return "Email entered incorrectly.\nPlease enter a valid email: 'example@gmail.com'"
	case FieldBirthday:
		return "Birthday invalid.\nBirthday should be in the format\n'day.month.year' and less than current date."
	case FieldName:
		return "Contact name is required"
	default:
		return "Invalid value."
	}
}

// ValidatePhone returns s unchanged when it is a valid phone number.
func ValidatePhone(s string) (string, error) {
	if !phonePattern.MatchString(s) {
		return "", NewValidationErrorWithValue(string(FieldPhone), "does not match the phone format", s)
	}

	return s, nil
}

// ValidateEmail returns s unchanged when it is a syntactically valid email address.
func ValidateEmail(s string) (string, error) {
	if !emailPattern.MatchString(s) {
		return "", NewValidationErrorWithValue(string(FieldEmail), "does not match the email format", s)
	}

	return s, nil
}

// ValidateBirthday returns s unchanged when it is a real calendar date in
// day.month.year form strictly before the date of now.
func ValidateBirthday(s string, now time.Time) (string, error) {
	if _, err := parseBirthday(s, now); err != nil {
		return "", err
	}

	return s, nil
}

func parseBirthday(s string, now time.Time) (time.Time, error) {
	date, err := time.Parse(BirthdayLayout, s)
	if err != nil {
		return time.Time{}, NewValidationErrorWithValue(string(FieldBirthday), "not a day.month.year date", s)
	}

	if !date.Before(dateOf(now)) {
		return time.Time{}, NewValidationErrorWithValue(string(FieldBirthday), "must be before today", s)
	}

	return date, nil
}

// dateOf drops the clock part of t, keeping its calendar date in UTC.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Name is a contact's name. Any non-empty string is a name.
type Name struct{ value string }

// NewName creates a Name, rejecting the empty string.
func NewName(s string) (Name, error) {
	if s == "" {
		return Name{}, NewValidationError(string(FieldName), "is required")
	}

	return Name{value: s}, nil
}

// Value returns the name string.
func (n Name) Value() string { return n.value }

func (n Name) String() string { return n.value }

// Phone is a validated phone number.
type Phone struct{ value string }

// NewPhone validates s and wraps it.
func NewPhone(s string) (Phone, error) {
	v, err := ValidatePhone(s)
	if err != nil {
		return Phone{}, err
	}

	return Phone{value: v}, nil
}

// Value returns the phone string as entered.
func (p Phone) Value() string { return p.value }

func (p Phone) String() string { return p.value }

// Email is a validated email address.
type Email struct{ value string }

// NewEmail validates s and wraps it.
func NewEmail(s string) (Email, error) {
	v, err := ValidateEmail(s)
	if err != nil {
		return Email{}, err
	}

	return Email{value: v}, nil
}

// Value returns the email string as entered.
func (e Email) Value() string { return e.value }

func (e Email) String() string { return e.value }

// Birthday is a validated date of birth. It keeps the string as entered
// alongside the parsed calendar date.
type Birthday struct {
	value string
	date  time.Time
}

// NewBirthday validates s against the date of now and wraps it.
func NewBirthday(s string, now time.Time) (Birthday, error) {
	date, err := parseBirthday(s, now)
	if err != nil {
		return Birthday{}, err
	}

	return Birthday{value: s, date: date}, nil
}

// Value returns the birthday string as entered.
func (b Birthday) Value() string { return b.value }

func (b Birthday) String() string { return b.value }

// Date returns the birth date at midnight UTC.
func (b Birthday) Date() time.Time { return b.date }

// NextOccurrence returns the first anniversary of b on or after the date of now.
// A 29 February birthday falls on 28 February in non-leap years.
func (b Birthday) NextOccurrence(now time.Time) time.Time {
	today := dateOf(now)

	next := anniversary(b.date, today.Year())
	if next.Before(today) {
		next = anniversary(b.date, today.Year()+1)
	}

	return next
}

// DaysUntilNext returns how many days remain until the next birthday; 0 on the day itself.
func (b Birthday) DaysUntilNext(now time.Time) int {
	const day = 24 * time.Hour

	return int(b.NextOccurrence(now).Sub(dateOf(now)) / day)
}

func anniversary(date time.Time, year int) time.Time {
	month, day := date.Month(), date.Day()
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
