// Package ports defines the contracts the application layer depends on.
// Adapters implement them, so the address book never sees file formats,
// SQL, or terminals directly.
//
// Port design:
//   - Context as first parameter on anything that does I/O
//   - Domain types in, domain types out
//   - Failures reported with domain error types (ErrUnavailable, ...)
package ports

import (
	"context"

	"github.com/jsamuelsen/address-book/internal/domain"
)

// ContactArchive persists the whole contact collection as one unit.
// There is no incremental update: every Store replaces what was stored before.
type ContactArchive interface {
	// Load returns every stored record in display order.
	// Returns domain.ErrNotFound when the archive does not exist yet,
	// domain.ErrUnavailable when stored data cannot be read or decoded and
	// domain.ErrValidation when a stored record breaks a field rule.
	Load(ctx context.Context) ([]*domain.Record, error)

	// Store overwrites the archive with records, in the given order.
	// Returns domain.ErrUnavailable when the archive cannot be written.
	Store(ctx context.Context, records []*domain.Record) error
}
