package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) *Local {
	t.Helper()
	store, err := NewLocal(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return store
}

func write(t *testing.T, store *Local, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), name), []byte(content), 0o644))
}

func TestNewLocalCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	store, err := NewLocal(dir)
	require.NoError(t, err)

	info, err := os.Stat(store.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestExistsAndSize(t *testing.T) {
	store := newLocal(t)
	write(t, store, "a.png", "12345")

	assert.True(t, store.Exists("a.png"))
	assert.False(t, store.Exists("missing.png"))

	size, err := store.Size("a.png")
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	_, err = store.Size("missing.png")
	assert.Error(t, err)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newLocal(t)
	write(t, store, "a.png", "data")

	require.NoError(t, store.Delete("a.png"))
	assert.False(t, store.Exists("a.png"))
	require.NoError(t, store.Delete("a.png"))
}

func TestList(t *testing.T) {
	store := newLocal(t)
	write(t, store, "one.txt", "1")
	write(t, store, "two.txt", "2")
	require.NoError(t, os.Mkdir(filepath.Join(store.Dir(), "subdir"), 0o755))

	names, err := store.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"one.txt", "two.txt"}, names)
}

func TestPathTraversalRejected(t *testing.T) {
	store := newLocal(t)

	for _, name := range []string{"", "../escape", "a/b", `a\b`, ".."} {
		assert.False(t, store.Exists(name), "name %q must not resolve", name)
		_, err := store.Size(name)
		assert.Error(t, err, "name %q must not resolve", name)
		assert.Error(t, store.Delete(name), "name %q must not resolve", name)
	}
}
