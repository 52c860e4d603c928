package repository

import (
	"context"
	"io/fs"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/resumidor"
	"github.com/set-night/resumidor/internal/domain"
)

// newPostgresStore migrates the database named by DATABASE_URL and skips
// when none is configured.
func newPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	migrations, err := fs.Sub(resumidor.MigrationsFS, "migrations")
	require.NoError(t, err)
	require.NoError(t, RunMigrations(url, migrations))

	pool, err := NewPool(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewPostgresStore(pool)
}

func TestPostgresStore_GetSet(t *testing.T) {
	st := newPostgresStore(t)
	ctx := context.Background()
	prefix := "test:" + uuid.NewString() + ":"

	tests := []struct {
		name   string
		writes []string
		want   string
		err    error
	}{
		{name: "missing key", err: domain.ErrKeyNotFound},
		{name: "single write", writes: []string{"one"}, want: "one"},
		{name: "upsert keeps last value", writes: []string{"one", "two", "three"}, want: "three"},
		{name: "empty value is stored", writes: []string{"x", ""}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := prefix + tt.name
			for _, v := range tt.writes {
				require.NoError(t, st.Set(ctx, key, v))
			}

			got, err := st.Get(ctx, key)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPostgresStore_KeysAreIndependent(t *testing.T) {
	st := newPostgresStore(t)
	ctx := context.Background()
	prefix := "test:" + uuid.NewString() + ":"

	require.NoError(t, st.Set(ctx, prefix+"iaResumidorConversations", "[]"))
	require.NoError(t, st.Set(ctx, prefix+"iaResumidorLastActiveId", "abc"))

	got, err := st.Get(ctx, prefix+"iaResumidorConversations")
	require.NoError(t, err)
	assert.Equal(t, "[]", got)

	_, err = st.Get(ctx, prefix+"other")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}
