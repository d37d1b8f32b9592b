package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/address-book/internal/adapters/storage/file"
	"github.com/jsamuelsen/address-book/internal/app"
	"github.com/jsamuelsen/address-book/internal/domain"
)

var testNow = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

type harness struct {
	svc    *app.ContactService
	closed int
}

func newHarness(t *testing.T, maxAttempts int) *harness {
	t.Helper()

	return newHarnessAt(t, maxAttempts, testNow)
}

// newHarnessAt is newHarness with the address book clock set to now.
func newHarnessAt(t *testing.T, maxAttempts int, now time.Time) *harness {
	t.Helper()

	clk := clock.NewMock()
	clk.Set(now)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	archive, err := file.New(file.Config{Path: "book.bin", Fs: afero.NewMemMapFs(), Clock: clk, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = archive.Close() })

	book := app.NewAddressBook(app.AddressBookConfig{Archive: archive, Clock: clk, Logger: logger})

	return &harness{
		svc: app.NewContactService(app.ContactServiceConfig{Book: book, MaxAttempts: maxAttempts, Logger: logger}),
	}
}

func (h *harness) seed(t *testing.T, in app.ContactInput) {
	t.Helper()

	_, err := h.svc.AddContact(context.Background(), in, nil)
	require.NoError(t, err)
}

func (h *harness) boot(context.Context, Options) (*Runtime, error) {
	return &Runtime{
		Service:        h.svc,
		PageSize:       2,
		BirthdayWindow: 7,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Close: func() error {
			h.closed++
			return nil
		},
	}, nil
}

func (h *harness) execute(stdin string, args ...string) (string, error) {
	return execute(h.boot, stdin, args...)
}

func execute(boot Bootstrap, stdin string, args ...string) (string, error) {
	var out bytes.Buffer

	cmd := NewRootCmd(NewBuildInfo("1.2.3", "abc123", "2026-10-15T10:00:00Z"), boot)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{}, args...))

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func TestVersionCmd_SkipsBootstrap(t *testing.T) {
	boot := func(context.Context, Options) (*Runtime, error) {
		t.Fatal("bootstrap must not run for version")
		return nil, nil
	}

	out, err := execute(boot, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "addressbook 1.2.3")
	assert.Contains(t, out, "abc123")
}

func TestRootCmd_PassesFlagsToBootstrap(t *testing.T) {
	h := newHarness(t, 0)

	var got Options
	boot := func(ctx context.Context, opts Options) (*Runtime, error) {
		got = opts
		return h.boot(ctx, opts)
	}

	_, err := execute(boot, "", "--profile", "test", "--book", "data/book.bin", "--log-level", "debug", "list")
	require.NoError(t, err)
	assert.Equal(t, Options{Profile: "test", Book: "data/book.bin", LogLevel: "debug"}, got)
	assert.Equal(t, 1, h.closed)
}

func TestRootCmd_BootstrapFailure(t *testing.T) {
	boot := func(context.Context, Options) (*Runtime, error) {
		return nil, errors.New("config validation failed")
	}

	_, err := execute(boot, "", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "starting address book: config validation failed")
}

func TestRootCmd_StartsShell(t *testing.T) {
	h := newHarness(t, 0)

	out, err := h.execute("hello\nexit\n")
	require.NoError(t, err)
	assert.Contains(t, out, "How can I help you?")
	assert.Contains(t, out, farewell)
	assert.Equal(t, 1, h.closed)
}

func TestAddCmd(t *testing.T) {
	t.Run("full contact", func(t *testing.T) {
		h := newHarness(t, 0)

		out, err := h.execute("", "add", "--name", "Ann", "--phone", "+380991122333",
			"--email", "ann@gmail.com", "--birthday", "01.01.2000")
		require.NoError(t, err)
		assert.Contains(t, out, msgSaved)
		assert.Contains(t, out, "ann@gmail.com")

		r, err := h.svc.GetContact("Ann")
		require.NoError(t, err)
		assert.Equal(t, []string{"+380991122333"}, r.View().Phones)
	})

	t.Run("name only shows placeholders", func(t *testing.T) {
		h := newHarness(t, 0)

		out, err := h.execute("", "add", "--name", "Bob")
		require.NoError(t, err)
		assert.Contains(t, out, domain.PhoneMissing)
		assert.Contains(t, out, domain.EmailMissing)
		assert.Contains(t, out, domain.BirthdayMissing)
	})

	t.Run("invalid phone is rejected before storing", func(t *testing.T) {
		h := newHarness(t, 0)

		_, err := h.execute("", "add", "--name", "Ann", "--phone", "12345")
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.Equal(t, ExitInvalid, ExitCode(err))
		assert.Contains(t, Describe(err), "Incorrect phone number format entered.")

		_, err = h.svc.GetContact("Ann")
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("birthday is measured against the book clock", func(t *testing.T) {
		tests := []struct {
			name     string
			now      time.Time
			birthday string
			wantErr  bool
		}{
			{name: "far future", now: testNow, birthday: "01.01.2999", wantErr: true},
			{name: "tomorrow", now: testNow, birthday: "16.10.2026", wantErr: true},
			{name: "yesterday", now: testNow, birthday: "14.10.2026"},
			{name: "past for a later clock", now: time.Date(2100, time.January, 1, 9, 0, 0, 0, time.UTC), birthday: "01.01.2050"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				h := newHarnessAt(t, 0, tt.now)

				_, err := h.execute("", "add", "--name", "Ann", "--birthday", tt.birthday)
				if tt.wantErr {
					require.Error(t, err)
					assert.Contains(t, Describe(err), "Birthday invalid.")

					_, err = h.svc.GetContact("Ann")
					assert.True(t, domain.IsNotFound(err))

					return
				}

				require.NoError(t, err)

				r, err := h.svc.GetContact("Ann")
				require.NoError(t, err)
				assert.Equal(t, tt.birthday, r.View().Birthday)
			})
		}
	})

	t.Run("name flag is required", func(t *testing.T) {
		h := newHarness(t, 0)

		_, err := h.execute("", "add", "--phone", "+380991122333")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name")
	})
}

func TestListCmd(t *testing.T) {
	h := newHarness(t, 0)

	out, err := h.execute("", "list")
	require.NoError(t, err)
	assert.Contains(t, out, msgEmpty)

	for _, name := range []string{"Ann", "Bob", "Cid"} {
		h.seed(t, app.ContactInput{Name: name})
	}

	out, err = h.execute("", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Page 2")
	assert.Less(t, strings.Index(out, "Ann"), strings.Index(out, "Cid"))

	out, err = h.execute("", "ls", "--page-size", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Page 1")
	assert.NotContains(t, out, "Page 2")
	assert.Contains(t, out, "Cid")
}

func TestFindCmd(t *testing.T) {
	h := newHarness(t, 0)
	h.seed(t, app.ContactInput{Name: "Ann", Phone: "+380991122333"})
	h.seed(t, app.ContactInput{Name: "Bob", Phone: "0501234567"})

	out, err := h.execute("", "find", "+38099")
	require.NoError(t, err)
	assert.Contains(t, out, "Ann")
	assert.NotContains(t, out, "Bob")

	out, err = h.execute("", "find", "Zed")
	require.NoError(t, err)
	assert.Contains(t, out, msgNoMatch)

	_, err = h.execute("", "find")
	require.Error(t, err)
}

func TestBirthdaysCmd(t *testing.T) {
	h := newHarness(t, 0)
	h.seed(t, app.ContactInput{Name: "Ann", Birthday: "17.10.1990"})
	h.seed(t, app.ContactInput{Name: "Bob", Birthday: "01.12.1985"})

	out, err := h.execute("", "birthdays")
	require.NoError(t, err)
	assert.Contains(t, out, "Ann")
	assert.Contains(t, out, "17.10.2026")
	assert.NotContains(t, out, "Bob")

	out, err = h.execute("", "birthdays", "--days", "2")
	require.NoError(t, err)
	assert.Contains(t, out, msgNoBirthdays)

	out, err = h.execute("", "birthdays", "-d", "60")
	require.NoError(t, err)
	assert.Contains(t, out, "Bob")

	_, err = h.execute("", "birthdays", "--days", "-1")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestDeleteCmd(t *testing.T) {
	h := newHarness(t, 0)
	h.seed(t, app.ContactInput{Name: "Ann"})

	out, err := h.execute("", "delete", "Ann")
	require.NoError(t, err)
	assert.Contains(t, out, "Contact Ann deleted.")

	_, err = h.execute("", "del", "Ann")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCode(err))
	assert.Equal(t, "Contact Ann was not found.", Describe(err))
	assert.Equal(t, 2, h.closed)
}

func TestRenameCmd(t *testing.T) {
	h := newHarness(t, 0)
	h.seed(t, app.ContactInput{Name: "Ann"})
	h.seed(t, app.ContactInput{Name: "Bob"})

	out, err := h.execute("", "rename", "Ann", "Anna")
	require.NoError(t, err)
	assert.Contains(t, out, "Contact Ann renamed to Anna.")

	_, err = h.execute("", "rename", "Anna", "Bob")
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
	assert.Equal(t, "A contact with this name already exists.", Describe(err))
}

func TestDescribeAndExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantMsg  string
		wantCode int
	}{
		{name: "nil", err: nil, wantMsg: "", wantCode: ExitOK},
		{
			name:     "exhausted",
			err:      &domain.ExhaustedError{Field: domain.FieldEmail, Attempts: 10},
			wantMsg:  "Too many invalid values; the email was not changed.",
			wantCode: ExitInvalid,
		},
		{
			name:     "missing birthday",
			err:      domain.NewNotFoundError("birthday of", "Ann"),
			wantMsg:  "Contact Ann has no birthday saved.",
			wantCode: ExitNotFound,
		},
		{
			name:     "unknown validation field",
			err:      domain.NewValidationError("days", "must not be negative"),
			wantMsg:  "validation failed for days: must not be negative",
			wantCode: ExitInvalid,
		},
		{
			name:     "archive",
			err:      &app.ExecutionError{Operation: "AddContact", Step: app.StepArchive, Cause: domain.NewUnavailableError("contact archive", "disk full")},
			wantMsg:  "The address book could not be saved or read",
			wantCode: ExitUnavailable,
		},
		{name: "other", err: errors.New("boom"), wantMsg: "boom", wantCode: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Contains(t, Describe(tt.err), tt.wantMsg)
			assert.Equal(t, tt.wantCode, ExitCode(tt.err))
		})
	}
}
