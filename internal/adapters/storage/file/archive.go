// Package file stores the address book as a single binary blob: a gob-encoded
// snapshot compressed with zstd. Every Store rewrites the whole file.
package file

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/benbjohnson/clock"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"

	"github.com/jsamuelsen/address-book/internal/adapters/storage"
	"github.com/jsamuelsen/address-book/internal/domain"
	"github.com/jsamuelsen/address-book/internal/ports"
)

// DefaultPath is the archive file name used when none is configured.
const DefaultPath = "AddressBook.bin"

// formatVersion is written into every snapshot; other versions are rejected.
const formatVersion = 1

const resource = "contact archive"

// snapshot is the gob payload.
type snapshot struct {
	Version  int
	Contacts []storage.ContactDTO
}

// Config configures an Archive.
type Config struct {
	// Path of the blob. Defaults to DefaultPath.
	Path string

	// Fs is the filesystem to use. Defaults to the OS filesystem.
	Fs afero.Fs

	// Clock supplies "today" for birthday checks on load. Defaults to the wall clock.
	Clock clock.Clock

	Logger *slog.Logger
}

// Archive implements ports.ContactArchive on a single file.
type Archive struct {
	path   string
	fs     afero.Fs
	clock  clock.Clock
	logger *slog.Logger

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

var _ ports.ContactArchive = (*Archive)(nil)

// New creates a file archive. Nothing is read or written until Load or Store.
func New(cfg Config) (*Archive, error) {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}

	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}

	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}

	return &Archive{
		path:    cfg.Path,
		fs:      cfg.Fs,
		clock:   cfg.Clock,
		logger:  cfg.Logger.With(slog.String("component", "file.Archive"), slog.String("path", cfg.Path)),
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Path returns the blob location.
func (a *Archive) Path() string { return a.path }

// Load reads and validates the whole snapshot.
// A missing file is reported as domain.ErrNotFound; unreadable or corrupt
// data as domain.ErrUnavailable.
func (a *Archive) Load(ctx context.Context) ([]*domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	compressed, err := afero.ReadFile(a.fs, a.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.NewNotFoundError(resource, a.path)
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", a.path, domain.NewUnavailableError(resource, err.Error()))
	}

	raw, err := a.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", a.path, domain.NewUnavailableError(resource, err.Error()))
	}

	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", a.path, domain.NewUnavailableError(resource, err.Error()))
	}

	if snap.Version != formatVersion {
		reason := fmt.Sprintf("unsupported format version %d", snap.Version)
		return nil, domain.NewUnavailableError(resource, reason)
	}

	records, err := storage.ToRecords(snap.Contacts, a.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", a.path, err)
	}

	a.logger.DebugContext(ctx, "archive loaded", slog.Int("contacts", len(records)))

	return records, nil
}

// Store replaces the file with a snapshot of records. The snapshot is written
// to a sibling temp file first and renamed over the target.
func (a *Archive) Store(ctx context.Context, records []*domain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer

	snap := snapshot{Version: formatVersion, Contacts: storage.FromRecords(records)}
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	compressed := a.encoder.EncodeAll(buf.Bytes(), nil)

	if dir := filepath.Dir(a.path); dir != "." {
		if err := a.fs.MkdirAll(dir, 0o755); err != nil {
			return domain.NewUnavailableError(resource, err.Error())
		}
	}

	tmp := a.path + ".tmp"
	if err := afero.WriteFile(a.fs, tmp, compressed, 0o600); err != nil {
		return domain.NewUnavailableError(resource, err.Error())
	}

	if err := a.fs.Rename(tmp, a.path); err != nil {
		_ = a.fs.Remove(tmp)
		return domain.NewUnavailableError(resource, err.Error())
	}

	a.logger.DebugContext(ctx, "archive stored",
		slog.Int("contacts", len(records)),
		slog.Int("bytes", len(compressed)),
	)

	return nil
}

// Close releases the compression workers.
func (a *Archive) Close() error {
	a.decoder.Close()
	return a.encoder.Close()
}
