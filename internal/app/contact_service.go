// Package app contains the address book and the use cases built on it.
// This is the application layer: it coordinates domain records and the
// contact archive through ports, and knows nothing about terminals.
package app

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/jsamuelsen/address-book/internal/domain"
)

// ContactService runs the address book use cases. Every mutation is saved
// before it returns; if saving fails the book is put back as it was.
type ContactService struct {
	book        *AddressBook
	exec        *Executor
	maxAttempts int
	logger      *slog.Logger
}

// ContactServiceConfig holds the service dependencies.
type ContactServiceConfig struct {
	Book *AddressBook

	// MaxAttempts bounds how many values are tried per field; zero means domain.DefaultMaxAttempts.
	MaxAttempts int

	Logger *slog.Logger
}

// NewContactService creates the service. It panics without an address book.
func NewContactService(cfg ContactServiceConfig) *ContactService {
	if cfg.Book == nil {
		panic("app: ContactService requires an address book")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	logger := cfg.Logger.With(slog.String("component", "app.ContactService"))

	return &ContactService{
		book:        cfg.Book,
		exec:        NewExecutor(logger, cfg.Book.clock),
		maxAttempts: cfg.MaxAttempts,
		logger:      logger,
	}
}

// Now returns the address book's current time.
func (s *ContactService) Now() time.Time {
	return s.book.Now()
}

func (s *ContactService) retry(p domain.Prompter) domain.Retry {
	return domain.Retry{Prompter: p, MaxAttempts: s.maxAttempts, Now: s.book.Now}
}

// commit applies mutate to the book and saves it, restoring the previous
// contents when either fails.
func (s *ContactService) commit(ctx context.Context, mutate func() error) error {
	snapshot := s.book.All()

	if err := mutate(); err != nil {
		s.book.restore(snapshot)
		return err
	}

	if err := s.book.Save(ctx); err != nil {
		s.book.restore(snapshot)
		return err
	}

	return nil
}

// ContactInput is the raw data for a new contact. Only Name is required;
// empty optional fields are left unset.
type ContactInput struct {
	Name     string `name:"name" validate:"required"`
	Phone    string `name:"phone"`
	Email    string `name:"email"`
	Birthday string `name:"birthday"`
}

// AddResult describes a contact that was added.
type AddResult struct {
	Record *domain.Record

	// Skipped lists fields that were given but never accepted.
	Skipped []domain.FieldKind

	// Replaced is true when a contact with the same name was overwritten.
	Replaced bool
}

// FieldSource supplies the first value given for a field of a new contact.
// An empty value leaves the field unset.
type FieldSource interface {
	Ask(ctx context.Context, field domain.FieldKind) (string, error)
}

// Ask returns the value in already holds for field.
func (in ContactInput) Ask(_ context.Context, field domain.FieldKind) (string, error) {
	switch field {
	case domain.FieldPhone:
		return in.Phone, nil
	case domain.FieldEmail:
		return in.Email, nil
	case domain.FieldBirthday:
		return in.Birthday, nil
	default:
		return "", nil
	}
}

// AddContact creates a contact from in, re-prompting through p for rejected
// fields. A field that is never accepted is skipped and the contact is still added.
func (s *ContactService) AddContact(ctx context.Context, in ContactInput, p domain.Prompter) (*AddResult, error) {
	return s.addContact(ctx, "AddContact", in, in, p)
}

// AddContactFrom creates a contact named name, asking src for each field in
// turn. A field is checked and re-prompted through p before the next one is
// asked for.
func (s *ContactService) AddContactFrom(ctx context.Context, name string, src FieldSource, p domain.Prompter) (*AddResult, error) {
	return s.addContact(ctx, "AddContactFrom", ContactInput{Name: name}, src, p)
}

func (s *ContactService) addContact(
	ctx context.Context,
	opName string,
	in ContactInput,
	src FieldSource,
	p domain.Prompter,
) (*AddResult, error) {
	type draft struct {
		record  *domain.Record
		skipped []domain.FieldKind
	}

	var replaced bool

	op := Operation[ContactInput, draft, *AddResult]{
		Name:     opName,
		Validate: func(_ context.Context, in ContactInput) error { return domain.ValidateStructAt(in, s.book.Now()) },
		Perform: func(ctx context.Context, in ContactInput) (draft, error) {
			name, err := domain.NewName(in.Name)
			if err != nil {
				return draft{}, err
			}

			d := draft{record: domain.NewRecord(name)}
			rt := s.retry(p)

			steps := []struct {
				field domain.FieldKind
				apply func(string) error
			}{
				{domain.FieldPhone, func(v string) error { return d.record.CreatePhone(ctx, v, domain.PhoneReplace, rt) }},
				{domain.FieldEmail, func(v string) error { return d.record.CreateEmail(ctx, v, rt) }},
				{domain.FieldBirthday, func(v string) error { return d.record.CreateBirthday(ctx, v, rt) }},
			}

			for _, step := range steps {
				value, err := src.Ask(ctx, step.field)
				if err != nil {
					return draft{}, err
				}

				err = step.apply(value)
				if domain.IsExhausted(err) {
					d.skipped = append(d.skipped, step.field)
					continue
				}

				if err != nil {
					return draft{}, err
				}
			}

			return d, nil
		},
		Verify: func(_ context.Context, in ContactInput, d draft) error {
			return verifyKey(d.record, in.Name)
		},
		Archive: func(ctx context.Context, in ContactInput, d draft) error {
			_, err := s.book.Get(in.Name)
			replaced = err == nil

			return s.commit(ctx, func() error {
				s.book.Add(d.record)
				return nil
			})
		},
		Respond: func(_ context.Context, _ ContactInput, d draft) (*AddResult, error) {
			return &AddResult{Record: d.record, Skipped: d.skipped, Replaced: replaced}, nil
		},
	}

	return Execute(ctx, s.exec, op, in)
}

// FieldChange is the raw input for changing one field of an existing contact.
type FieldChange struct {
	Name  string
	Value string
}

// AddPhone appends a phone to the named contact.
func (s *ContactService) AddPhone(ctx context.Context, ch FieldChange, p domain.Prompter) (*domain.Record, error) {
	return s.update(ctx, "AddPhone", ch, func(ctx context.Context, r *domain.Record) error {
		return r.CreatePhone(ctx, ch.Value, domain.PhoneAppend, s.retry(p))
	})
}

// ReplacePhone makes the given phone the contact's only phone.
func (s *ContactService) ReplacePhone(ctx context.Context, ch FieldChange, p domain.Prompter) (*domain.Record, error) {
	return s.update(ctx, "ReplacePhone", ch, func(ctx context.Context, r *domain.Record) error {
		return r.CreatePhone(ctx, ch.Value, domain.PhoneReplace, s.retry(p))
	})
}

// ChangeEmail sets or replaces the contact's email.
func (s *ContactService) ChangeEmail(ctx context.Context, ch FieldChange, p domain.Prompter) (*domain.Record, error) {
	return s.update(ctx, "ChangeEmail", ch, func(ctx context.Context, r *domain.Record) error {
		return r.CreateEmail(ctx, ch.Value, s.retry(p))
	})
}

// ChangeBirthday sets or replaces the contact's birthday.
func (s *ContactService) ChangeBirthday(ctx context.Context, ch FieldChange, p domain.Prompter) (*domain.Record, error) {
	return s.update(ctx, "ChangeBirthday", ch, func(ctx context.Context, r *domain.Record) error {
		return r.CreateBirthday(ctx, ch.Value, s.retry(p))
	})
}

// update runs apply on a copy of the named record and stores the copy.
func (s *ContactService) update(
	ctx context.Context,
	name string,
	ch FieldChange,
	apply func(context.Context, *domain.Record) error,
) (*domain.Record, error) {
	op := Operation[FieldChange, *domain.Record, *domain.Record]{
		Name: name,
		Validate: func(_ context.Context, ch FieldChange) error {
			if ch.Value == "" {
				return domain.NewValidationError("value", "is required")
			}

			_, err := s.book.Get(ch.Name)

			return err
		},
		Perform: func(ctx context.Context, ch FieldChange) (*domain.Record, error) {
			current, err := s.book.Get(ch.Name)
			if err != nil {
				return nil, err
			}

			working := current.Clone()
			if err := apply(ctx, working); err != nil {
				return nil, err
			}

			return working, nil
		},
		Verify: func(_ context.Context, ch FieldChange, r *domain.Record) error {
			return verifyKey(r, ch.Name)
		},
		Archive: func(ctx context.Context, _ FieldChange, r *domain.Record) error {
			return s.commit(ctx, func() error {
				s.book.Add(r)
				return nil
			})
		},
		Respond: respondRecord[FieldChange],
	}

	return Execute(ctx, s.exec, op, ch)
}

// Rename is the input for RenameContact.
type Rename struct {
	From string
	To   string
}

// RenameContact moves a contact to a new name, keeping its position.
func (s *ContactService) RenameContact(ctx context.Context, in Rename) (*domain.Record, error) {
	var renamed *domain.Record

	op := Operation[Rename, struct{}, *domain.Record]{
		Name: "RenameContact",
		Validate: func(_ context.Context, in Rename) error {
			if _, err := domain.NewName(in.To); err != nil {
				return err
			}

			if _, err := s.book.Get(in.From); err != nil {
				return err
			}

			if _, err := s.book.Get(in.To); err == nil && in.To != in.From {
				return domain.NewConflictErrorWithDetails(contactEntity, "name already in use", in.To)
			}

			return nil
		},
		Archive: func(ctx context.Context, in Rename, _ struct{}) error {
			return s.commit(ctx, func() error {
				var err error
				renamed, err = s.book.Rename(in.From, in.To)

				return err
			})
		},
		Respond: func(_ context.Context, in Rename, _ struct{}) (*domain.Record, error) {
			if err := verifyKey(renamed, in.To); err != nil {
				return nil, err
			}

			return renamed, nil
		},
	}

	return Execute(ctx, s.exec, op, in)
}

// DeleteContact removes the named contact.
func (s *ContactService) DeleteContact(ctx context.Context, name string) error {
	op := Operation[string, struct{}, struct{}]{
		Name: "DeleteContact",
		Validate: func(_ context.Context, name string) error {
			_, err := s.book.Get(name)
			return err
		},
		Archive: func(ctx context.Context, name string, _ struct{}) error {
			return s.commit(ctx, func() error { return s.book.Delete(name) })
		},
	}

	_, err := Execute(ctx, s.exec, op, name)

	return err
}

// ClearContacts removes every contact and returns how many there were.
func (s *ContactService) ClearContacts(ctx context.Context) (int, error) {
	op := Operation[struct{}, int, int]{
		Name:    "ClearContacts",
		Perform: func(context.Context, struct{}) (int, error) { return s.book.Len(), nil },
		Archive: func(ctx context.Context, _ struct{}, _ int) error {
			return s.commit(ctx, func() error {
				s.book.ClearAll()
				return nil
			})
		},
		Respond: func(_ context.Context, _ struct{}, n int) (int, error) { return n, nil },
	}

	return Execute(ctx, s.exec, op, struct{}{})
}

// ListContacts returns every contact in display order.
func (s *ContactService) ListContacts() []*domain.Record {
	return s.book.All()
}

// Pages returns every contact in display order, size at a time.
func (s *ContactService) Pages(size int) iter.Seq[[]*domain.Record] {
	return s.book.Pages(size)
}

// FindContacts returns contacts whose name or a phone starts with query.
func (s *ContactService) FindContacts(query string) []*domain.Record {
	return s.book.Find(query)
}

// GetContact returns the contact with exactly this name.
func (s *ContactService) GetContact(name string) (*domain.Record, error) {
	return s.book.Get(name)
}

// UpcomingBirthdays returns contacts with a birthday in the next days days.
func (s *ContactService) UpcomingBirthdays(days int) ([]BirthdayMatch, error) {
	return s.book.UpcomingBirthdays(days)
}

// DaysToBirthday returns the days left until the named contact's next birthday.
func (s *ContactService) DaysToBirthday(name string) (int, error) {
	r, err := s.book.Get(name)
	if err != nil {
		return 0, err
	}

	b, ok := r.Birthday()
	if !ok {
		return 0, domain.NewNotFoundError("birthday of", name)
	}

	return b.DaysUntilNext(s.book.Now()), nil
}

func verifyKey(r *domain.Record, name string) error {
	if r == nil || r.Name().Value() != name {
		return fmt.Errorf("record is not keyed by %q", name)
	}

	return nil
}

func respondRecord[I any](_ context.Context, _ I, r *domain.Record) (*domain.Record, error) {
	return r, nil
}
