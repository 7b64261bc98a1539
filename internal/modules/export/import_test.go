package export

import (
	"archive/zip"
	"bytes"
	"testing"
	"time"

	"github.com/echomeet/core/internal/modules/meetings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, entries map[string][]byte) *zip.Reader {
	t.Helper()
	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	for name, data := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	return zr
}

func TestImportRoundTrip(t *testing.T) {
	engine, svc := newTestEngine(t)

	original := &meetings.Meeting{
		ID:         "round-trip-1",
		Title:      "Round Trip",
		Date:       time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC),
		Duration:   900,
		Audio:      []byte{0xde, 0xad, 0xbe, 0xef},
		Transcript: "full transcript text",
		Speakers:   []meetings.Speaker{{ID: "s1", Name: "Ana"}},
		Tags:       []string{"demo"},
		Category:   "review",
	}
	require.NoError(t, svc.Save(original))

	buf, _, err := engine.ExportMeeting("round-trip-1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete("round-trip-1"))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	id, err := engine.ImportMeeting(zr, PolicyReplace)
	require.NoError(t, err)
	assert.Equal(t, "round-trip-1", id)

	restored, err := svc.Get(id)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, original.Title, restored.Title)
	assert.True(t, original.Date.Equal(restored.Date))
	assert.Equal(t, original.Duration, restored.Duration)
	assert.Equal(t, original.Audio, restored.Audio)
	assert.Equal(t, original.Transcript, restored.Transcript)
	assert.Equal(t, original.Speakers, restored.Speakers)
	assert.Equal(t, original.Tags, restored.Tags)
	assert.Equal(t, original.Category, restored.Category)
}

func TestImportMissingMetadata(t *testing.T) {
	engine, _ := newTestEngine(t)

	zr := buildZip(t, map[string][]byte{
		transcriptFileName: []byte("just a transcript"),
	})
	_, err := engine.ImportMeeting(zr, PolicySkip)
	assert.ErrorIs(t, err, ErrInvalidMetadata)
}

func TestImportMalformedMetadata(t *testing.T) {
	engine, _ := newTestEngine(t)

	zr := buildZip(t, map[string][]byte{
		metadataFileName: []byte("{not json"),
	})
	_, err := engine.ImportMeeting(zr, PolicySkip)
	assert.ErrorIs(t, err, ErrInvalidMetadata)
}

func TestImportEmptyIDRejected(t *testing.T) {
	engine, _ := newTestEngine(t)

	zr := buildZip(t, map[string][]byte{
		metadataFileName: []byte(`{"id":"","title":"No ID"}`),
	})
	_, err := engine.ImportMeeting(zr, PolicySkip)
	assert.ErrorIs(t, err, ErrInvalidMetadata)
}

func TestImportDuplicatePolicies(t *testing.T) {
	makeArchive := func(t *testing.T) []byte {
		t.Helper()
		buf := &bytes.Buffer{}
		w := zip.NewWriter(buf)
		f, err := w.Create(metadataFileName)
		require.NoError(t, err)
		_, err = f.Write([]byte(`{"id":"dup-1","title":"Imported Copy","date":"2025-01-01T00:00:00Z"}`))
		require.NoError(t, err)
		f, err = w.Create(transcriptFileName)
		require.NoError(t, err)
		_, err = f.Write([]byte("imported transcript"))
		require.NoError(t, err)
		require.NoError(t, w.Close())
		return buf.Bytes()
	}

	t.Run("skip keeps the existing record", func(t *testing.T) {
		engine, svc := newTestEngine(t)
		require.NoError(t, svc.Save(&meetings.Meeting{ID: "dup-1", Title: "Existing"}))

		data := makeArchive(t)
		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)

		id, err := engine.ImportMeeting(zr, PolicySkip)
		require.NoError(t, err)
		assert.Equal(t, "dup-1", id)

		got, err := svc.Get("dup-1")
		require.NoError(t, err)
		assert.Equal(t, "Existing", got.Title)
	})

	t.Run("replace overwrites in place", func(t *testing.T) {
		engine, svc := newTestEngine(t)
		require.NoError(t, svc.Save(&meetings.Meeting{ID: "dup-1", Title: "Existing"}))

		data := makeArchive(t)
		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)

		id, err := engine.ImportMeeting(zr, PolicyReplace)
		require.NoError(t, err)
		assert.Equal(t, "dup-1", id)

		got, err := svc.Get("dup-1")
		require.NoError(t, err)
		assert.Equal(t, "Imported Copy", got.Title)

		all, err := svc.GetAll()
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("keep-both mints a new id", func(t *testing.T) {
		engine, svc := newTestEngine(t)
		require.NoError(t, svc.Save(&meetings.Meeting{ID: "dup-1", Title: "Existing"}))

		data := makeArchive(t)
		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)

		id, err := engine.ImportMeeting(zr, PolicyKeepBoth)
		require.NoError(t, err)
		assert.NotEqual(t, "dup-1", id)

		all, err := svc.GetAll()
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestImportAllSkipsBadFoldersAndContinues(t *testing.T) {
	engine, svc := newTestEngine(t)

	zr := buildZip(t, map[string][]byte{
		"2025-01-01-good-aaaa/" + metadataFileName:   []byte(`{"id":"good-1","title":"Good","date":"2025-01-01T00:00:00Z"}`),
		"2025-01-01-good-aaaa/" + transcriptFileName: []byte("good transcript"),
		"2025-01-02-bad-bbbb/" + metadataFileName:    []byte("{broken"),
		"2025-01-03-none-cccc/" + transcriptFileName: []byte("folder without metadata"),
		readmeFileName: []byte("top-level readme is ignored"),
	})

	var lastCurrent, lastTotal int
	ids, err := engine.ImportAll(zr, PolicySkip, func(current, total int) {
		lastCurrent, lastTotal = current, total
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"good-1"}, ids)
	assert.Equal(t, 3, lastTotal)
	assert.Equal(t, 3, lastCurrent)

	got, err := svc.Get("good-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "good transcript", got.Transcript)
}

func TestImportAllRoundTrip(t *testing.T) {
	engine, svc := newTestEngine(t)

	require.NoError(t, svc.Save(&meetings.Meeting{
		ID: "bulk-a", Title: "Alpha", Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, svc.Save(&meetings.Meeting{
		ID: "bulk-b", Title: "Beta", Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Transcript: "beta words",
	}))

	buf, _, err := engine.ExportAll(nil)
	require.NoError(t, err)

	require.NoError(t, svc.ClearAll())

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	ids, err := engine.ImportAll(zr, PolicyReplace, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bulk-a", "bulk-b"}, ids)

	restored, err := svc.Get("bulk-b")
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, "beta words", restored.Transcript)
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, PolicyReplace, ParsePolicy("replace"))
	assert.Equal(t, PolicyKeepBoth, ParsePolicy("keep-both"))
	assert.Equal(t, PolicySkip, ParsePolicy("skip"))
	assert.Equal(t, PolicySkip, ParsePolicy(""))
	assert.Equal(t, PolicySkip, ParsePolicy("nonsense"))
}
