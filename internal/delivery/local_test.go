package delivery

import (
	"os"
	"path/filepath"
	"testing"

	"catalog/feedsync/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := NewLocalWriter(dir, "products.xml")

	path, err := w.Write("<products/>")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "products.xml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<products/>", string(data))
}

func TestLocalWriter_OverwritesPreviousRun(t *testing.T) {
	dir := t.TempDir()
	w := NewLocalWriter(dir, "products.xml")

	_, err := w.Write("first")
	require.NoError(t, err)
	path, err := w.Write("second")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestLocalWriter_DefaultsToDesktop(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := NewLocalWriter("", "products.xml").Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Desktop", "products.xml"), path)
}

func TestLocalWriter_Failure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := NewLocalWriter(filepath.Join(blocker, "sub"), "products.xml").Write("doc")

	var writeErr *domain.LocalWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, filepath.Join(blocker, "sub", "products.xml"), writeErr.Path)
}
