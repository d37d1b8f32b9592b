// Package main is the entry point for the address book.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/jsamuelsen/address-book/internal/adapters/cli"
	"github.com/jsamuelsen/address-book/internal/adapters/storage/file"
	"github.com/jsamuelsen/address-book/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/address-book/internal/app"
	"github.com/jsamuelsen/address-book/internal/platform/config"
	"github.com/jsamuelsen/address-book/internal/platform/logging"
	"github.com/jsamuelsen/address-book/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the binary.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", cli.Describe(err))
		os.Exit(cli.ExitCode(err))
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(cli.NewBuildInfo(Version, Commit, BuildTime), bootstrap)

	return root.ExecuteContext(ctx)
}

// bootstrap wires the program for one command run.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Runtime, error) {
	// 1. Determine profile from flags, then environment
	profile := opts.Profile
	if profile == "" {
		profile = os.Getenv("APP_ENVIRONMENT")
	}

	// 2. Load configuration, apply flag overrides and validate (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if opts.Book != "" {
		cfg.Storage.Path = opts.Book
	}

	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger, logCloser := logging.Open(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	}, os.Stderr)

	// 4. Tag this run with a session id
	ctx = logging.WithSessionID(logging.WithContext(ctx, logger), uuid.NewString())
	logger = logging.FromContext(ctx)
	logging.SetDefault(logger)

	logger.DebugContext(ctx, "starting address book",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("storage_driver", cfg.Storage.Driver),
	)

	// 5. Open the contact archive
	clk := clock.New()

	archive, closeArchive, err := openArchive(ctx, cfg.Storage, clk, logger)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("opening contact archive: %w", err)
	}

	// 6. Create the address book and load saved contacts
	book := app.NewAddressBook(app.AddressBookConfig{
		Archive: archive,
		Clock:   clk,
		Logger:  logger,
	})
	book.Load(ctx)

	// 7. Create the contact service (application layer)
	service := app.NewContactService(app.ContactServiceConfig{
		Book:        book,
		MaxAttempts: cfg.Book.MaxAttempts,
		Logger:      logger,
	})

	return &cli.Runtime{
		Service:        service,
		PageSize:       cfg.Book.PageSize,
		BirthdayWindow: cfg.Book.BirthdayWindow,
		Logger:         logger,
		Close: func() error {
			return errors.Join(closeArchive(), logCloser.Close())
		},
	}, nil
}

// openArchive returns the archive for the configured driver and a function
// that releases it.
func openArchive(
	ctx context.Context,
	cfg config.StorageConfig,
	clk clock.Clock,
	logger *slog.Logger,
) (ports.ContactArchive, func() error, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		archive, err := sqlite.New(ctx, cfg.Path, clk, logger)
		if err != nil {
			return nil, nil, err
		}

		if err := archive.HealthCheck(ctx); err != nil {
			_ = archive.Close()
			return nil, nil, err
		}

		return archive, archive.Close, nil

	default:
		archive, err := file.New(file.Config{
			Path:   cfg.Path,
			Fs:     afero.NewOsFs(),
			Clock:  clk,
			Logger: logger,
		})
		if err != nil {
			return nil, nil, err
		}

		return archive, archive.Close, nil
	}
}
