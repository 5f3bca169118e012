package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploaded_ulogs")

	_, err := NewStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewStoreLeavesExistingDirectoryUntouched(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "flight.ulg")
	require.NoError(t, os.WriteFile(existing, []byte("payload"), 0o644))

	s, err := NewStore(dir)
	require.NoError(t, err)

	files, err := s.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "flight.ulg", files[0].Name)
	assert.Equal(t, int64(7), files[0].Size)
}

func TestListFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.ulg", "a.ulg", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.ulg"), 0o755))

	s, err := NewStore(dir)
	require.NoError(t, err)

	files, err := s.List()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.ulg", files[0].Name)
	assert.Equal(t, "b.ulg", files[1].Name)
}

func TestSaveRejectsBadNames(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../escape.ulg", "dir/log.ulg", "log.txt", "log"} {
		_, err := s.Save(name, strings.NewReader("x"))
		assert.Error(t, err, "name %q should be rejected", name)
	}
}

func TestSaveAndRead(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	info, err := s.Save("flight.ulg", strings.NewReader("ulog bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(10), info.Size)

	data, err := s.Read("flight.ulg")
	require.NoError(t, err)
	assert.Equal(t, "ulog bytes", string(data))

	stat, err := s.Stat("flight.ulg")
	require.NoError(t, err)
	assert.Equal(t, int64(10), stat.Size)

	_, err = s.Stat("missing.ulg")
	assert.Error(t, err)
}
