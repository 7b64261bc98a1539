package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndListArchives(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveArchive(dir, "export-1.zip", []byte("payload"))
	require.NoError(t, err)
	assert.FileExists(t, path)

	// Path traversal in the filename is flattened to the base name.
	path, err = SaveArchive(dir, "../../escape.zip", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.zip"), path)

	items := ListArchives(dir)
	require.Len(t, items, 2)
}

func TestListArchivesIgnoresNonZip(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.zip"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.zip"), 0o755))

	items := ListArchives(dir)
	require.Len(t, items, 1)
	assert.Equal(t, "real.zip", items[0].Filename)
}

func TestPruneArchivesKeepsNewest(t *testing.T) {
	dir := t.TempDir()

	for i, name := range []string{"old.zip", "mid.zip", "new.zip"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
		mtime := time.Now().Add(time.Duration(i-3) * time.Hour)
		require.NoError(t, os.Chtimes(p, mtime, mtime))
	}

	removed := PruneArchives(dir, 2)
	assert.Equal(t, 1, removed)

	items := ListArchives(dir)
	require.Len(t, items, 2)
	assert.Equal(t, "new.zip", items[0].Filename)
	assert.Equal(t, "mid.zip", items[1].Filename)
}

func TestPruneArchivesNoopUnderKeepCount(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "only.zip"), []byte("x"), 0o644))

	assert.Zero(t, PruneArchives(dir, 5))
	assert.Zero(t, PruneArchives(dir, 0))
}

func TestRenderObjectKey(t *testing.T) {
	now := time.Date(2025, 3, 7, 16, 5, 9, 0, time.UTC)

	assert.Equal(t, "exports/2025/03/a.zip", renderObjectKey("exports/{Y}/{m}/{filename}", "a.zip", now))
	assert.Equal(t, "exports/2025/03/a.zip", renderObjectKey("", "a.zip", now))
	assert.Equal(t, "2025-03-07/16-05-09/a.zip", renderObjectKey("{Y}-{m}-{d}/{H}-{M}-{s}/{filename}", "a.zip", now))
	assert.Equal(t, "deep/a.zip", renderObjectKey("/deep//{filename}", "a.zip", now))
	assert.Equal(t, "a.zip", renderObjectKey("{filename}", "a.zip", now))
}
