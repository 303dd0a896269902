package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nacos", "session.yaml")
	store := NewFileStore(path)

	creds, err := store.Load()
	require.NoError(t, err)
	assert.False(t, creds.Authenticated())
	assert.Equal(t, "", store.Token())

	want := Credentials{Role: "admin", Username: "bursar", Token: "tkn"}
	require.NoError(t, store.Save(want))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	got, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, got.Authenticated())
	assert.Equal(t, "tkn", store.Token())

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	got, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, Credentials{}, got)
}

func TestFileStore_Load_invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("role: [admin"), 0o600))

	_, err := NewFileStore(path).Load()
	assert.Error(t, err)
	assert.Equal(t, "", NewFileStore(path).Token())
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(Credentials{Role: "student", Token: "abc"})
	creds, _ := store.Load()
	assert.True(t, creds.Authenticated())
	assert.Equal(t, "abc", store.Token())

	require.NoError(t, store.Save(Credentials{Token: "xyz"}))
	creds, _ = store.Load()
	assert.False(t, creds.Authenticated(), "role is required")

	require.NoError(t, store.Clear())
	assert.Equal(t, "", store.Token())
}
