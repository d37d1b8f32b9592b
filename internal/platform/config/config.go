// Package config loads address book settings using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultDir holds base.yaml and the profile files.
	DefaultDir = "configs"

	// EnvPrefix marks environment variables that override configuration.
	EnvPrefix = "APP_"

	// DefaultArchivePath is the file the book is kept in.
	DefaultArchivePath = "AddressBook.bin"

	// DefaultMaxAttempts bounds how many values are tried per contact field.
	DefaultMaxAttempts = 10

	// DefaultBirthdayWindow is the day count used when none is given.
	DefaultBirthdayWindow = 7

	// DefaultPageSize is how many contacts are shown per page.
	DefaultPageSize = 10

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 10

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28
)

// Storage drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Config is the root configuration structure.
type Config struct {
	App     AppConfig     `koanf:"app"     validate:"required"`
	Storage StorageConfig `koanf:"storage" validate:"required"`
	Book    BookConfig    `koanf:"book"    validate:"required"`
	Log     LogConfig     `koanf:"log"     validate:"required"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev test prod"`
}

// StorageConfig selects where contacts are kept.
type StorageConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=file sqlite"`
	Path   string `koanf:"path"   validate:"required"`
}

// BookConfig tunes address book behaviour.
type BookConfig struct {
	MaxAttempts    int `koanf:"max_attempts"    validate:"required,min=1,max=100"`
	BirthdayWindow int `koanf:"birthday_window" validate:"min=0,max=366"`
	PageSize       int `koanf:"page_size"       validate:"required,min=1,max=1000"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// defaults returns the built-in values, lowest precedence.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "addressbook",
		"app.version":     "dev",
		"app.environment": "local",

		"storage.driver": DriverFile,
		"storage.path":   DefaultArchivePath,

		"book.max_attempts":    DefaultMaxAttempts,
		"book.birthday_window": DefaultBirthdayWindow,
		"book.page_size":       DefaultPageSize,

		"log.level":            "warn",
		"log.format":           "pretty",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/addressbook.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,
	}
}

// Load reads configuration from DefaultDir. See LoadFrom.
func Load(profile string) (*Config, error) {
	return LoadFrom(DefaultDir, profile)
}

// LoadFrom loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (APP_ prefix, e.g. APP_BOOK_MAX_ATTEMPTS)
//  2. Profile config file ({dir}/{profile}.yaml)
//  3. Base config file ({dir}/base.yaml)
//  4. Default values
//
// Missing files are skipped.
func LoadFrom(dir, profile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := loadFileIfExists(k, filepath.Join(dir, "base.yaml")); err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		if err := loadFileIfExists(k, filepath.Join(dir, profile+".yaml")); err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey(k.Keys())), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKey maps APP_LOG_FILE_MAX_SIZE to log.file.max_size by matching against
// the known keys, so underscores inside key names survive. Unknown variables
// are ignored.
func envKey(known []string) func(string) string {
	lookup := make(map[string]string, len(known))
	for _, key := range known {
		lookup[strings.ReplaceAll(key, ".", "_")] = key
	}

	return func(name string) string {
		return lookup[strings.ToLower(strings.TrimPrefix(name, EnvPrefix))]
	}
}

// loadFileIfExists loads a YAML config file if it exists.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
