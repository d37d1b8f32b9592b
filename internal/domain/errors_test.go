package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrNotFound,
		ErrConflict,
		ErrValidation,
		ErrUnavailable,
		ErrExhausted,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b,
					"sentinels should be distinct: %v vs %v", a, b)
			}
		}
	}
}

func TestNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		entity      string
		key         string
		expectedMsg string
	}{
		{
			name:        "with entity and key",
			entity:      "contact",
			key:         "Ann",
			expectedMsg: `contact "Ann" not found`,
		},
		{
			name:        "with entity only",
			entity:      "contact",
			expectedMsg: "contact not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := NewNotFoundError(tt.entity, tt.key)

			assert.Equal(t, tt.expectedMsg, err.Error())
			require.ErrorIs(t, err, ErrNotFound)

			var notFound *NotFoundError
			require.ErrorAs(t, err, &notFound)
			assert.Equal(t, tt.entity, notFound.Entity)
			assert.Equal(t, tt.key, notFound.Key)
		})
	}
}

func TestConflictError(t *testing.T) {
	t.Parallel()

	t.Run("basic", func(t *testing.T) {
		t.Parallel()

		err := NewConflictError("contact", "name already taken")

		assert.Equal(t, "contact conflict: name already taken", err.Error())
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("with details", func(t *testing.T) {
		t.Parallel()

		err := NewConflictErrorWithDetails("contact", "name already taken", "Bob")

		assert.Equal(t, "contact conflict: name already taken (Bob)", err.Error())

		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "Bob", conflict.Details)
	})
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		field       string
		message     string
		expectedMsg string
	}{
		{
			name:        "with field",
			field:       "email",
			message:     "does not match the email format",
			expectedMsg: "validation failed for email: does not match the email format",
		},
		{
			name:        "without field",
			message:     "days must not be negative",
			expectedMsg: "validation failed: days must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := NewValidationError(tt.field, tt.message)

			assert.Equal(t, tt.expectedMsg, err.Error())
			require.ErrorIs(t, err, ErrValidation)

			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
			assert.Equal(t, tt.message, validation.Message)
		})
	}
}

func TestValidationErrorWithValue(t *testing.T) {
	t.Parallel()

	err := NewValidationErrorWithValue("phone", "does not match the phone format", "12345")

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "12345", validation.Value)
}

func TestUnavailableError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "contact archive unavailable: permission denied",
		NewUnavailableError("contact archive", "permission denied").Error())
	assert.Equal(t, "contact archive unavailable",
		NewUnavailableError("contact archive", "").Error())
	assert.ErrorIs(t, NewUnavailableError("contact archive", ""), ErrUnavailable)
}

func TestExhaustedError(t *testing.T) {
	t.Parallel()

	last := NewValidationError("phone", "does not match the phone format")
	err := &ExhaustedError{Field: FieldPhone, Attempts: 10, Last: last}

	assert.Equal(t, "phone not saved after 10 attempts", err.Error())
	assert.ErrorIs(t, err, ErrExhausted)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestIsHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		isFunc   func(error) bool
		expected bool
	}{
		{"IsNotFound with NotFoundError", NewNotFoundError("contact", "Ann"), IsNotFound, true},
		{"IsNotFound with wrapped", fmt.Errorf("wrapped: %w", ErrNotFound), IsNotFound, true},
		{"IsNotFound with other error", ErrConflict, IsNotFound, false},
		{"IsNotFound with nil", nil, IsNotFound, false},

		{"IsConflict with ConflictError", NewConflictError("contact", "taken"), IsConflict, true},
		{"IsConflict with other error", ErrNotFound, IsConflict, false},

		{"IsValidation with ValidationError", NewValidationError("email", "invalid"), IsValidation, true},
		{"IsValidation with nil", nil, IsValidation, false},

		{"IsUnavailable with UnavailableError", NewUnavailableError("archive", "io"), IsUnavailable, true},
		{"IsUnavailable with other error", errors.New("boom"), IsUnavailable, false},

		{"IsExhausted with ExhaustedError", &ExhaustedError{Field: FieldEmail, Attempts: 1}, IsExhausted, true},
		{"IsExhausted with wrapped", fmt.Errorf("email: %w", ErrExhausted), IsExhausted, true},
		{"IsExhausted with validation", NewValidationError("email", "invalid"), IsExhausted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.isFunc(tt.err))
		})
	}
}

func TestErrorWrappingChain(t *testing.T) {
	t.Parallel()

	original := NewNotFoundError("contact", "Ann")
	wrapped := fmt.Errorf("layer2: %w", fmt.Errorf("layer1: %w", original))

	assert.True(t, IsNotFound(wrapped))

	var notFound *NotFoundError
	require.ErrorAs(t, wrapped, &notFound)
	assert.Equal(t, "Ann", notFound.Key)
}
