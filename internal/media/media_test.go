package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutRemove(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "shoe.jpg")
	require.NoError(t, os.WriteFile(src, []byte("v1"), 0o644))

	s := New(t.TempDir())
	assert.False(t, s.Exists(7, "shoe.jpg"))

	dst, err := s.Put(7, src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir, "products", "7", "shoe.jpg"), dst)
	assert.True(t, s.Exists(7, "shoe.jpg"))

	require.NoError(t, os.WriteFile(src, []byte("v2"), 0o644))
	_, err = s.Put(7, src)
	require.NoError(t, err)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	require.NoError(t, s.Remove(7, "shoe.jpg"))
	assert.False(t, s.Exists(7, "shoe.jpg"))
	require.NoError(t, s.Remove(7, "shoe.jpg"))

	entries, err := os.ReadDir(filepath.Dir(dst))
	require.NoError(t, err)
	assert.Empty(t, entries, "bez plików tymczasowych")
}

func TestPut_MissingSource(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.Put(1, filepath.Join(t.TempDir(), "nope.jpg"))
	require.Error(t, err)
}
