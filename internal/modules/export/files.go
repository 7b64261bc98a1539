package export

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ArchiveFile describes one export archive saved on disk.
type ArchiveFile struct {
	Filename string    `json:"filename"`
	Size     string    `json:"size"`
	Created  time.Time `json:"created"`
}

// ListArchives returns the saved export archives in dir, newest first.
func ListArchives(dir string) []ArchiveFile {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return []ArchiveFile{}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []ArchiveFile{}
	}

	items := make([]ArchiveFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".zip") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		items = append(items, ArchiveFile{
			Filename: e.Name(),
			Size:     formatSize(info.Size()),
			Created:  info.ModTime(),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Created.After(items[j].Created) })
	return items
}

// SaveArchive writes an archive payload into dir under filename.
func SaveArchive(dir, filename string, payload []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// PruneArchives deletes the oldest archives in dir beyond keepCount.
func PruneArchives(dir string, keepCount int) int {
	if keepCount < 1 {
		return 0
	}
	items := ListArchives(dir)
	if len(items) <= keepCount {
		return 0
	}
	removed := 0
	for _, item := range items[keepCount:] {
		if err := os.Remove(filepath.Join(dir, item.Filename)); err == nil {
			removed++
		}
	}
	return removed
}

// CreateLocalExport runs a bulk export and saves the archive into dir.
// Used by the scheduled backup job.
func (e *Engine) CreateLocalExport(dir string) (string, error) {
	buf, filename, err := e.ExportAll(nil)
	if err != nil {
		return "", err
	}
	return SaveArchive(dir, filename, buf.Bytes())
}
