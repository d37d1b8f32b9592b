package app

import (
	"cmp"
	"context"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/jsamuelsen/address-book/internal/domain"
	"github.com/jsamuelsen/address-book/internal/ports"
)

const contactEntity = "contact"

// AddressBook is the in-memory contact store. Records are keyed by their exact
// name and kept in display order. It is not safe for concurrent use.
type AddressBook struct {
	archive ports.ContactArchive
	clock   clock.Clock
	logger  *slog.Logger

	index   map[string]int
	records []*domain.Record
}

// AddressBookConfig holds the address book dependencies.
type AddressBookConfig struct {
	Archive ports.ContactArchive
	Clock   clock.Clock
	Logger  *slog.Logger
}

// NewAddressBook creates an empty address book. It panics without an archive.
func NewAddressBook(cfg AddressBookConfig) *AddressBook {
	if cfg.Archive == nil {
		panic("app: AddressBook requires an archive")
	}

	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &AddressBook{
		archive: cfg.Archive,
		clock:   cfg.Clock,
		logger:  cfg.Logger.With(slog.String("component", "app.AddressBook")),
		index:   make(map[string]int),
	}
}

// Now returns the book's notion of the current time.
func (b *AddressBook) Now() time.Time { return b.clock.Now() }

// Len returns the number of contacts.
func (b *AddressBook) Len() int { return len(b.records) }

// Add inserts record, or replaces the record with the same name in place.
func (b *AddressBook) Add(record *domain.Record) {
	key := record.Name().Value()

	if i, ok := b.index[key]; ok {
		b.records[i] = record
		return
	}

	b.index[key] = len(b.records)
	b.records = append(b.records, record)
}

// All returns the records in display order. The slice is a copy.
func (b *AddressBook) All() []*domain.Record {
	return slices.Clone(b.records)
}

// Get looks a record up by exact name.
func (b *AddressBook) Get(name string) (*domain.Record, error) {
	i, ok := b.index[name]
	if !ok {
		return nil, domain.NewNotFoundError(contactEntity, name)
	}

	return b.records[i], nil
}

// Delete removes the record with exact name.
func (b *AddressBook) Delete(name string) error {
	i, ok := b.index[name]
	if !ok {
		return domain.NewNotFoundError(contactEntity, name)
	}

	b.records = slices.Delete(b.records, i, i+1)
	delete(b.index, name)

	for j := i; j < len(b.records); j++ {
		b.index[b.records[j].Name().Value()] = j
	}

	return nil
}

// ClearAll removes every record.
func (b *AddressBook) ClearAll() {
	b.records = nil
	b.index = make(map[string]int)
}

// restore replaces the contents with records, which must have unique names.
func (b *AddressBook) restore(records []*domain.Record) {
	b.records = records
	b.index = make(map[string]int, len(records))

	for i, r := range records {
		b.index[r.Name().Value()] = i
	}
}

// Rename re-keys the record stored under oldName. The record keeps its
// display position. Renaming onto another existing record is a conflict.
func (b *AddressBook) Rename(oldName, newName string) (*domain.Record, error) {
	name, err := domain.NewName(newName)
	if err != nil {
		return nil, err
	}

	i, ok := b.index[oldName]
	if !ok {
		return nil, domain.NewNotFoundError(contactEntity, oldName)
	}

	if oldName == newName {
		return b.records[i], nil
	}

	if _, taken := b.index[newName]; taken {
		return nil, domain.NewConflictErrorWithDetails(contactEntity, "name already in use", newName)
	}

	renamed := b.records[i].WithName(name)
	b.records[i] = renamed

	delete(b.index, oldName)
	b.index[newName] = i

	return renamed, nil
}

// Find returns records whose name, or any phone, starts with query.
func (b *AddressBook) Find(query string) []*domain.Record {
	var found []*domain.Record

	for _, r := range b.records {
		if strings.HasPrefix(r.Name().Value(), query) {
			found = append(found, r)
			continue
		}

		if slices.ContainsFunc(r.Phones(), func(p domain.Phone) bool {
			return strings.HasPrefix(p.Value(), query)
		}) {
			found = append(found, r)
		}
	}

	return found
}

// Pages yields the records in display order, size at a time.
// A size below one yields everything in a single page.
func (b *AddressBook) Pages(size int) iter.Seq[[]*domain.Record] {
	return func(yield func([]*domain.Record) bool) {
		all := b.All()
		if len(all) == 0 {
			return
		}

		if size < 1 {
			size = len(all)
		}

		for page := range slices.Chunk(all, size) {
			if !yield(page) {
				return
			}
		}
	}
}

// Load replaces the contents with what the archive holds. Any failure is
// logged and leaves the book unchanged. It reports whether contacts were loaded.
func (b *AddressBook) Load(ctx context.Context) bool {
	records, err := b.archive.Load(ctx)
	if err != nil {
		if domain.IsNotFound(err) {
			b.logger.InfoContext(ctx, "no saved contacts, starting empty")
		} else {
			b.logger.WarnContext(ctx, "saved contacts could not be loaded, starting empty", slog.Any("error", err))
		}

		return false
	}

	index := make(map[string]int, len(records))
	kept := make([]*domain.Record, 0, len(records))

	for _, r := range records {
		key := r.Name().Value()
		if i, dup := index[key]; dup {
			kept[i] = r
			continue
		}

		index[key] = len(kept)
		kept = append(kept, r)
	}

	b.index = index
	b.records = kept

	b.logger.InfoContext(ctx, "contacts loaded", slog.Int("contacts", len(kept)))

	return true
}

// Save writes every record through the archive, replacing what was there.
func (b *AddressBook) Save(ctx context.Context) error {
	if err := b.archive.Store(ctx, b.records); err != nil {
		return err
	}

	b.logger.DebugContext(ctx, "contacts saved", slog.Int("contacts", len(b.records)))

	return nil
}

// BirthdayMatch is a record whose next birthday falls inside a window.
type BirthdayMatch struct {
	Record    *domain.Record
	Next      time.Time
	DaysUntil int
}

// UpcomingBirthdays returns records whose next birthday falls within
// [today, today+days). Results are ordered by date, then name.
func (b *AddressBook) UpcomingBirthdays(days int) ([]BirthdayMatch, error) {
	if days < 0 {
		return nil, domain.NewValidationErrorWithValue("days", "must not be negative", days)
	}

	now := b.clock.Now()

	var matches []BirthdayMatch

	for _, r := range b.records {
		birthday, ok := r.Birthday()
		if !ok {
			continue
		}

		until := birthday.DaysUntilNext(now)
		if until >= days {
			continue
		}

		matches = append(matches, BirthdayMatch{
			Record:    r,
			Next:      birthday.NextOccurrence(now),
			DaysUntil: until,
		})
	}

	slices.SortStableFunc(matches, func(x, y BirthdayMatch) int {
		return cmp.Or(
			x.Next.Compare(y.Next),
			strings.Compare(x.Record.Name().Value(), y.Record.Name().Value()),
		)
	})

	return matches, nil
}
