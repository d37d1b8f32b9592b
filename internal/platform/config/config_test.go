package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, "addressbook", cfg.App.Name)
	assert.Equal(t, "local", cfg.App.Environment)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, DefaultArchivePath, cfg.Storage.Path)
	assert.Equal(t, DefaultMaxAttempts, cfg.Book.MaxAttempts)
	assert.Equal(t, DefaultBirthdayWindow, cfg.Book.BirthdayWindow)
	assert.Equal(t, DefaultPageSize, cfg.Book.PageSize)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "pretty", cfg.Log.Format)
	assert.False(t, cfg.Log.File.Enabled)
	assert.True(t, cfg.Log.File.Compress)

	require.NoError(t, cfg.Validate())
}

func TestLoadFrom_FilePrecedence(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "base.yaml", `
storage:
  path: data/base.bin
book:
  max_attempts: 5
  page_size: 20
`)
	writeFile(t, dir, "test.yaml", `
app:
  environment: test
storage:
  driver: sqlite
  path: data/test.db
`)

	cfg, err := LoadFrom(dir, "test")
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Environment)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "data/test.db", cfg.Storage.Path, "profile beats base")
	assert.Equal(t, 5, cfg.Book.MaxAttempts, "base beats defaults")
	assert.Equal(t, 20, cfg.Book.PageSize)
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "book:\n  max_attempts: 5\n")

	t.Setenv("APP_BOOK_MAX_ATTEMPTS", "3")
	t.Setenv("APP_LOG_LEVEL", "debug")
	t.Setenv("APP_LOG_FILE_ENABLED", "true")
	t.Setenv("APP_LOG_FILE_MAX_SIZE", "50")
	t.Setenv("APP_UNKNOWN_SETTING", "ignored")

	cfg, err := LoadFrom(dir, "")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Book.MaxAttempts)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.File.Enabled)
	assert.Equal(t, 50, cfg.Log.File.MaxSizeMB)
}

func TestLoadFrom_MissingProfileIsIgnored(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir(), "nonexistent")
	require.NoError(t, err)
	assert.Equal(t, "addressbook", cfg.App.Name)
}

func TestLoadFrom_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "book: [unclosed")

	_, err := LoadFrom(dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading base config")
}

func TestLoad_UsesDefaultDir(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultArchivePath, cfg.Storage.Path)
}
