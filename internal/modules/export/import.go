package export

import (
	"archive/zip"
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// entrySet maps entry names (relative to one meeting's folder) to content.
type entrySet map[string][]byte

// ImportMeeting reconstructs one meeting from a single-meeting archive and
// persists it according to the duplicate policy. Returns the stored id.
func (e *Engine) ImportMeeting(zr *zip.Reader, policy DuplicatePolicy) (string, error) {
	entries, err := readEntries(zr, "")
	if err != nil {
		return "", err
	}
	return e.importEntrySet(entries, policy)
}

// ImportAll enumerates the top-level folders of a bulk archive and imports
// each independently. A folder with missing or malformed metadata is
// skipped and logged, not fatal to the batch. progress, when non-nil,
// receives (currentIndex, total) per processed folder. Returns every
// resulting id, including pre-existing ids under the skip policy.
func (e *Engine) ImportAll(zr *zip.Reader, policy DuplicatePolicy, progress func(current, total int)) ([]string, error) {
	folders := topLevelFolders(zr)
	ids := make([]string, 0, len(folders))

	for i, folder := range folders {
		entries, err := readEntries(zr, folder+"/")
		if err == nil {
			var id string
			id, err = e.importEntrySet(entries, policy)
			if err == nil {
				ids = append(ids, id)
			}
		}
		if err != nil {
			e.log.Warn("skipping sub-archive", zap.String("folder", folder), zap.Error(err))
		}
		if progress != nil {
			progress(i+1, len(folders))
		}
	}
	return ids, nil
}

func (e *Engine) importEntrySet(entries entrySet, policy DuplicatePolicy) (string, error) {
	metaRaw, ok := entries[metadataFileName]
	if !ok {
		return "", ErrInvalidMetadata
	}
	var meta Metadata
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		return "", ErrInvalidMetadata
	}
	if meta.ID == "" {
		return "", ErrInvalidMetadata
	}

	transcript := string(entries[transcriptFileName])

	var audio []byte
	if meta.AudioIncluded {
		audio = entries[audioFileName]
	}

	m := meta.toMeeting(transcript, audio)

	existing, err := e.meetings.Get(meta.ID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		switch policy {
		case PolicySkip:
			return existing.ID, nil
		case PolicyKeepBoth:
			m.ID = uuid.New().String()
		case PolicyReplace:
			// keep the id, overwrite in place
		}
	}

	if err := e.meetings.Save(m); err != nil {
		return "", err
	}
	return m.ID, nil
}

// readEntries collects the archive entries directly under prefix.
func readEntries(zr *zip.Reader, prefix string) (entrySet, error) {
	entries := entrySet{}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := f.Name
		if prefix != "" {
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			name = strings.TrimPrefix(name, prefix)
		}
		if strings.Contains(name, "/") {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		entries[name] = data
	}
	return entries, nil
}

// topLevelFolders lists the distinct first path segments in the archive.
func topLevelFolders(zr *zip.Reader) []string {
	seen := map[string]struct{}{}
	for _, f := range zr.File {
		name := strings.TrimPrefix(f.Name, "./")
		idx := strings.Index(name, "/")
		if idx <= 0 {
			continue
		}
		seen[name[:idx]] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for folder := range seen {
		out = append(out, folder)
	}
	sort.Strings(out)
	return out
}
