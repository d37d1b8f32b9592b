// Package storage holds what the contact archive adapters share: the stored
// shape of a contact and its translation to and from domain records.
//
// Stored data is treated as untrusted input. Every field goes back through the
// domain constructors, so a record that would be rejected at the prompt is also
// rejected when read from disk.
package storage

import (
	"fmt"
	"time"

	"github.com/jsamuelsen/address-book/internal/domain"
)

// ContactDTO is the persisted form of a contact. Empty Email or Birthday means unset.
type ContactDTO struct {
	Name     string
	Phones   []string
	Email    string
	Birthday string
}

// Translator converts a stored DTO into a domain type, validating it.
type Translator[External any, Domain any] func(ext *External) (*Domain, error)

// TranslateSlice applies translate to every item, failing on the first error.
func TranslateSlice[E any, D any](items []E, translate Translator[E, D]) ([]*D, error) {
	result := make([]*D, 0, len(items))

	for i := range items {
		translated, err := translate(&items[i])
		if err != nil {
			return nil, fmt.Errorf("translating item %d: %w", i, err)
		}

		result = append(result, translated)
	}

	return result, nil
}

// FromRecords flattens records into DTOs, keeping order.
func FromRecords(records []*domain.Record) []ContactDTO {
	out := make([]ContactDTO, 0, len(records))

	for _, r := range records {
		dto := ContactDTO{Name: r.Name().Value()}

		for _, p := range r.Phones() {
			dto.Phones = append(dto.Phones, p.Value())
		}

		if e, ok := r.Email(); ok {
			dto.Email = e.Value()
		}

		if b, ok := r.Birthday(); ok {
			dto.Birthday = b.Value()
		}

		out = append(out, dto)
	}

	return out
}

// RecordTranslator returns a Translator that rebuilds records, checking
// birthdays against now.
func RecordTranslator(now time.Time) Translator[ContactDTO, domain.Record] {
	return func(dto *ContactDTO) (*domain.Record, error) {
		name, err := domain.NewName(dto.Name)
		if err != nil {
			return nil, err
		}

		record := domain.NewRecord(name)

		for _, raw := range dto.Phones {
			phone, err := domain.NewPhone(raw)
			if err != nil {
				return nil, fmt.Errorf("contact %q: %w", dto.Name, err)
			}

			record.AddPhone(phone)
		}

		if dto.Email != "" {
			email, err := domain.NewEmail(dto.Email)
			if err != nil {
				return nil, fmt.Errorf("contact %q: %w", dto.Name, err)
			}

			record.SetEmail(email)
		}

		if dto.Birthday != "" {
			birthday, err := domain.NewBirthday(dto.Birthday, now)
			if err != nil {
				return nil, fmt.Errorf("contact %q: %w", dto.Name, err)
			}

			record.SetBirthday(birthday)
		}

		return record, nil
	}
}

// ToRecords rebuilds and validates every DTO.
func ToRecords(dtos []ContactDTO, now time.Time) ([]*domain.Record, error) {
	return TranslateSlice(dtos, RecordTranslator(now))
}
