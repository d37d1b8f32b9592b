// Package sqlite stores the address book in a SQLite database. Each Store
// replaces the stored snapshot inside one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/benbjohnson/clock"

	"github.com/jsamuelsen/address-book/internal/adapters/storage"
	"github.com/jsamuelsen/address-book/internal/domain"
	"github.com/jsamuelsen/address-book/internal/ports"
)

const resource = "contact database"

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	position INTEGER NOT NULL,
	name     TEXT    NOT NULL PRIMARY KEY,
	email    TEXT    NOT NULL DEFAULT '',
	birthday TEXT    NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS contact_phones (
	contact_name TEXT    NOT NULL REFERENCES contacts(name) ON DELETE CASCADE,
	position     INTEGER NOT NULL,
	number       TEXT    NOT NULL,
	PRIMARY KEY (contact_name, position)
);`

// Archive implements ports.ContactArchive on a *sql.DB.
type Archive struct {
	db     *sql.DB
	clock  clock.Clock
	logger *slog.Logger
}

var _ ports.ContactArchive = (*Archive)(nil)

// New opens the database at path and ensures the schema exists.
func New(ctx context.Context, path string, clk clock.Clock, logger *slog.Logger) (*Archive, error) {
	db, err := Open(path)
	if err != nil {
		return nil, domain.NewUnavailableError(resource, err.Error())
	}

	a, err := NewWithDB(ctx, db, clk, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return a, nil
}

// NewWithDB wraps an existing connection and ensures the schema exists.
func NewWithDB(ctx context.Context, db *sql.DB, clk clock.Clock, logger *slog.Logger) (*Archive, error) {
	if clk == nil {
		clk = clock.New()
	}

	if logger == nil {
		logger = slog.Default()
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Archive{
		db:     db,
		clock:  clk,
		logger: logger.With(slog.String("component", "sqlite.Archive")),
	}, nil
}

// Load returns every stored contact in display order. An empty database
// yields an empty slice.
func (a *Archive) Load(ctx context.Context) ([]*domain.Record, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT name, email, birthday FROM contacts ORDER BY position`)
	if err != nil {
		return nil, domain.NewUnavailableError(resource, err.Error())
	}
	defer rows.Close()

	var dtos []storage.ContactDTO

	index := make(map[string]int)

	for rows.Next() {
		var dto storage.ContactDTO
		if err := rows.Scan(&dto.Name, &dto.Email, &dto.Birthday); err != nil {
			return nil, domain.NewUnavailableError(resource, err.Error())
		}

		index[dto.Name] = len(dtos)
		dtos = append(dtos, dto)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.NewUnavailableError(resource, err.Error())
	}

	if err := a.loadPhones(ctx, dtos, index); err != nil {
		return nil, err
	}

	records, err := storage.ToRecords(dtos, a.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("validating stored contacts: %w", err)
	}

	a.logger.DebugContext(ctx, "contacts loaded", slog.Int("contacts", len(records)))

	return records, nil
}

func (a *Archive) loadPhones(ctx context.Context, dtos []storage.ContactDTO, index map[string]int) error {
	rows, err := a.db.QueryContext(ctx,
		`SELECT contact_name, number FROM contact_phones ORDER BY contact_name, position`)
	if err != nil {
		return domain.NewUnavailableError(resource, err.Error())
	}
	defer rows.Close()

	for rows.Next() {
		var name, number string
		if err := rows.Scan(&name, &number); err != nil {
			return domain.NewUnavailableError(resource, err.Error())
		}

		i, ok := index[name]
		if !ok {
			continue
		}

		dtos[i].Phones = append(dtos[i].Phones, number)
	}

	if err := rows.Err(); err != nil {
		return domain.NewUnavailableError(resource, err.Error())
	}

	return nil
}

// Store replaces the stored contacts with records.
func (a *Archive) Store(ctx context.Context, records []*domain.Record) (err error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewUnavailableError(resource, err.Error())
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM contact_phones`); err != nil {
		return domain.NewUnavailableError(resource, err.Error())
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM contacts`); err != nil {
		return domain.NewUnavailableError(resource, err.Error())
	}

	for pos, dto := range storage.FromRecords(records) {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO contacts (position, name, email, birthday) VALUES (?,?,?,?)`,
			pos, dto.Name, dto.Email, dto.Birthday); err != nil {
			return domain.NewUnavailableError(resource, err.Error())
		}

		for i, number := range dto.Phones {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO contact_phones (contact_name, position, number) VALUES (?,?,?)`,
				dto.Name, i, number); err != nil {
				return domain.NewUnavailableError(resource, err.Error())
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return domain.NewUnavailableError(resource, err.Error())
	}

	a.logger.DebugContext(ctx, "contacts stored", slog.Int("contacts", len(records)))

	return nil
}

// HealthCheck pings the database.
func (a *Archive) HealthCheck(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// Close closes the underlying connection.
func (a *Archive) Close() error {
	return a.db.Close()
}
