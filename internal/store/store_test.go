package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/resumidor/internal/domain"
)

func TestStores_GetSet(t *testing.T) {
	ctx := context.Background()
	stores := map[string]Store{
		"memory":    NewMemoryStore(),
		"file":      NewFileStore(filepath.Join(t.TempDir(), "nested", "store.json")),
		"namespace": Namespace(NewMemoryStore(), "chat:1:"),
	}

	for name, st := range stores {
		t.Run(name, func(t *testing.T) {
			_, err := st.Get(ctx, "missing")
			require.ErrorIs(t, err, domain.ErrKeyNotFound)

			require.NoError(t, st.Set(ctx, "k", "v1"))
			require.NoError(t, st.Set(ctx, "k", "v2"))

			got, err := st.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v2", got)
		})
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")

	require.NoError(t, NewFileStore(path).Set(ctx, "a", `[{"id":"x"}]`))

	got, err := NewFileStore(path).Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"x"}]`, got)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should not be left behind")
}

func TestFileStore_CorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))

	st := NewFileStore(path)
	_, err := st.Get(ctx, "a")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrKeyNotFound)

	// Writing replaces the unreadable file.
	require.NoError(t, st.Set(ctx, "a", "1"))
	got, err := NewFileStore(path).Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestNamespace_IsolatesKeys(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	a := Namespace(inner, "a:")
	b := Namespace(inner, "b:")

	require.NoError(t, a.Set(ctx, "k", "from-a"))
	_, err := b.Get(ctx, "k")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)

	raw, err := inner.Get(ctx, "a:k")
	require.NoError(t, err)
	assert.Equal(t, "from-a", raw)
}
