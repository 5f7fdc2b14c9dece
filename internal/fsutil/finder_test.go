package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, nil, 0644))
	}
}

func TestEntriesSplitsAndSorts(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "b.c", "a.h", "zdir/x.c", "adir/y.c")

	dirs, files, err := Entries(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"adir", "zdir"}, dirs)
	assert.Equal(t, []string{"a.h", "b.c"}, files)
}

func TestEntriesMissingDir(t *testing.T) {
	_, _, err := Entries(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "targets/b.hcl", "targets/a.json", "targets/readme.md")

	files, err := FindFilesByExtension(root, ".hcl", ".json")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "targets", "a.json"),
		filepath.Join(root, "targets", "b.hcl"),
	}, files)
}

func TestHasExtIsCaseSensitive(t *testing.T) {
	set := map[string]struct{}{".S": {}}
	assert.True(t, HasExt("startup.S", set))
	assert.False(t, HasExt("startup.s", set))
}

func TestIsFileAndIsDir(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a/b.c")

	assert.True(t, IsFile(filepath.Join(root, "a", "b.c")))
	assert.False(t, IsFile(filepath.Join(root, "a")))
	assert.True(t, IsDir(filepath.Join(root, "a")))
	assert.False(t, IsDir(filepath.Join(root, "a", "b.c")))
	assert.False(t, IsDir(filepath.Join(root, "missing")))
}
