package domain

import (
	"context"
	"slices"
	"time"
)

// Placeholders used by View for fields a record does not have.
const (
	PhoneMissing    = "Phone number missing."
	EmailMissing    = "Email is missing."
	BirthdayMissing = "Date of birth is missing."
)

// DefaultMaxAttempts bounds how many candidate values are validated for one field.
const DefaultMaxAttempts = 10

// PhoneMode selects how a validated phone is committed.
type PhoneMode int

const (
	// PhoneAppend adds the phone after the existing ones.
	PhoneAppend PhoneMode = iota
	// PhoneReplace makes the phone the only one.
	PhoneReplace
)

// Record is one contact. Its name is fixed; renaming is done by the address book,
// which re-keys the entry.
type Record struct {
	name     Name
	phones   []Phone
	email    *Email
	birthday *Birthday
}

// NewRecord creates a record with only a name.
func NewRecord(name Name) *Record {
	return &Record{name: name}
}

// Name returns the record's name.
func (r *Record) Name() Name { return r.name }

// Phones returns a copy of the phones in insertion order.
func (r *Record) Phones() []Phone { return slices.Clone(r.phones) }

// Email returns the email and whether one is set.
func (r *Record) Email() (Email, bool) {
	if r.email == nil {
		return Email{}, false
	}

	return *r.email, true
}

// Birthday returns the birthday and whether one is set.
func (r *Record) Birthday() (Birthday, bool) {
	if r.birthday == nil {
		return Birthday{}, false
	}

	return *r.birthday, true
}

// AddPhone appends p.
func (r *Record) AddPhone(p Phone) { r.phones = append(r.phones, p) }

// ReplacePhones makes p the only phone.
func (r *Record) ReplacePhones(p Phone) { r.phones = []Phone{p} }

// SetEmail sets or replaces the email.
func (r *Record) SetEmail(e Email) { r.email = &e }

// SetBirthday sets or replaces the birthday.
func (r *Record) SetBirthday(b Birthday) { r.birthday = &b }

// WithName returns a copy of r carrying name. Used by the address book to re-key.
func (r *Record) WithName(name Name) *Record {
	c := r.Clone()
	c.name = name

	return c
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	c := &Record{name: r.name, phones: slices.Clone(r.phones)}
	if r.email != nil {
		e := *r.email
		c.email = &e
	}

	if r.birthday != nil {
		b := *r.birthday
		c.birthday = &b
	}

	return c
}

// Prompter supplies a replacement value after a rejected one.
// The hint describes the expected format.
type Prompter interface {
	Reprompt(ctx context.Context, field FieldKind, hint string) (string, error)
}

// Retry configures the retry-until-valid protocol.
type Retry struct {
	// Prompter asks for replacement values. Nil allows a single attempt.
	Prompter Prompter

	// MaxAttempts bounds validated candidates; zero means DefaultMaxAttempts.
	MaxAttempts int

	// Now is the reference time for birthday checks; nil means time.Now.
	Now func() time.Time
}

func (rt Retry) attempts() int {
	switch {
	case rt.Prompter == nil:
		return 1
	case rt.MaxAttempts <= 0:
		return DefaultMaxAttempts
	default:
		return rt.MaxAttempts
	}
}

func (rt Retry) now() time.Time {
	if rt.Now == nil {
		return time.Now()
	}

	return rt.Now()
}

// CreatePhone validates input and commits it according to mode.
// Empty input is a no-op. A rejected value is re-prompted until accepted or
// the attempt budget is spent, in which case an *ExhaustedError is returned
// and the phones are unchanged.
func (r *Record) CreatePhone(ctx context.Context, input string, mode PhoneMode, rt Retry) error {
	phone, ok, err := obtain(ctx, rt, FieldPhone, input, NewPhone)
	if err != nil || !ok {
		return err
	}

	if mode == PhoneReplace {
		r.ReplacePhones(phone)
	} else {
		r.AddPhone(phone)
	}

	return nil
}

// CreateEmail validates input and replaces the email with it.
// It follows the same protocol as CreatePhone.
func (r *Record) CreateEmail(ctx context.Context, input string, rt Retry) error {
	email, ok, err := obtain(ctx, rt, FieldEmail, input, NewEmail)
	if err != nil || !ok {
		return err
	}

	r.SetEmail(email)

	return nil
}

// CreateBirthday validates input and replaces the birthday with it.
// It follows the same protocol as CreatePhone.
func (r *Record) CreateBirthday(ctx context.Context, input string, rt Retry) error {
	parse := func(s string) (Birthday, error) { return NewBirthday(s, rt.now()) }

	birthday, ok, err := obtain(ctx, rt, FieldBirthday, input, parse)
	if err != nil || !ok {
		return err
	}

	r.SetBirthday(birthday)

	return nil
}

// obtain runs the retry protocol. ok is false when input was empty.
func obtain[T any](
	ctx context.Context,
	rt Retry,
	kind FieldKind,
	input string,
	parse func(string) (T, error),
) (value T, ok bool, err error) {
	if input == "" {
		return value, false, nil
	}

	limit := rt.attempts()
	candidate := input

	var last error

	for attempt := 1; attempt <= limit; attempt++ {
		value, last = parse(candidate)
		if last == nil {
			return value, true, nil
		}

		if attempt == limit {
			break
		}

		candidate, err = rt.Prompter.Reprompt(ctx, kind, FormatHint(kind))
		if err != nil {
			var zero T
			return zero, false, err
		}
	}

	var zero T

	return zero, false, &ExhaustedError{Field: kind, Attempts: limit, Last: last}
}

// View is the display projection of a record.
type View struct {
	Name     string
	Phones   []string
	Email    string
	Birthday string
}

// View projects r for display, substituting placeholders for missing fields.
func (r *Record) View() View {
	v := View{
		Name:     r.name.Value(),
		Phones:   []string{PhoneMissing},
		Email:    EmailMissing,
		Birthday: BirthdayMissing,
	}

	if len(r.phones) > 0 {
		v.Phones = make([]string, len(r.phones))
		for i, p := range r.phones {
			v.Phones[i] = p.Value()
		}
	}

	if r.email != nil {
		v.Email = r.email.Value()
	}

	if r.birthday != nil {
		v.Birthday = r.birthday.Value()
	}

	return v
}
