package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/address-book/internal/adapters/storage"
	"github.com/jsamuelsen/address-book/internal/domain"
)

func newTestArchive(t *testing.T) (*Archive, string) {
	t.Helper()

	clk := clock.NewMock()
	clk.Set(time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC))

	path := filepath.Join(t.TempDir(), "nested", "book.db")

	a, err := New(context.Background(), path, clk, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	return a, path
}

func records(t *testing.T, dtos ...storage.ContactDTO) []*domain.Record {
	t.Helper()

	out, err := storage.ToRecords(dtos, time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	return out
}

func TestArchive_EmptyDatabase(t *testing.T) {
	a, _ := newTestArchive(t)

	loaded, err := a.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
	require.NoError(t, a.HealthCheck(context.Background()))
}

func TestArchive_StoreThenLoadKeepsOrder(t *testing.T) {
	a, _ := newTestArchive(t)
	ctx := context.Background()

	in := records(t,
		storage.ContactDTO{Name: "Zed", Phones: []string{"0501234567", "+380991122333"}},
		storage.ContactDTO{Name: "Ann", Email: "ann@gmail.com", Birthday: "01.01.2000"},
		storage.ContactDTO{Name: "Mia", Phones: []string{"(067)1234567"}},
	)
	require.NoError(t, a.Store(ctx, in))

	loaded, err := a.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	for i := range in {
		assert.Equal(t, in[i].View(), loaded[i].View())
	}
}

func TestArchive_StoreReplacesSnapshot(t *testing.T) {
	a, _ := newTestArchive(t)
	ctx := context.Background()

	require.NoError(t, a.Store(ctx, records(t,
		storage.ContactDTO{Name: "Ann", Phones: []string{"0501234567"}},
		storage.ContactDTO{Name: "Bob"},
	)))
	require.NoError(t, a.Store(ctx, records(t, storage.ContactDTO{Name: "Bob"})))

	loaded, err := a.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Bob", loaded[0].Name().Value())
	assert.Empty(t, loaded[0].Phones())
}

func TestArchive_ReopenReadsPersistedData(t *testing.T) {
	a, path := newTestArchive(t)
	ctx := context.Background()

	require.NoError(t, a.Store(ctx, records(t, storage.ContactDTO{Name: "Ann", Phones: []string{"0501234567"}})))
	require.NoError(t, a.Close())

	reopened, err := New(ctx, path, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	loaded, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, []string{"0501234567"}, loaded[0].View().Phones)
}

func TestArchive_LoadRejectsInvalidRows(t *testing.T) {
	a, _ := newTestArchive(t)
	ctx := context.Background()

	_, err := a.db.ExecContext(ctx, `INSERT INTO contacts (position, name, email, birthday) VALUES (0, 'Ann', 'broken', '')`)
	require.NoError(t, err)

	_, err = a.Load(ctx)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestArchive_HealthCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		closed  bool
		wantErr bool
	}{
		{name: "open database answers", closed: false, wantErr: false},
		{name: "closed database fails", closed: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, _ := newTestArchive(t)
			if tt.closed {
				require.NoError(t, a.Close())
			}

			err := a.HealthCheck(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
		})
	}
}
