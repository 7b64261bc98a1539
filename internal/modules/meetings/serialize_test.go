package meetings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageTimeRoundTrip(t *testing.T) {
	in := time.Date(2025, 3, 14, 15, 9, 26, 535_000_000, time.UTC)
	out := parseStorageTime(formatStorageTime(in))
	assert.True(t, in.Equal(out), "round trip changed the instant: %v vs %v", in, out)
}

func TestStorageTimeIsLexicographicallySortable(t *testing.T) {
	earlier := formatStorageTime(time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC))
	later := formatStorageTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Less(t, earlier, later)
	assert.Len(t, earlier, len(later), "layout must be fixed width")
}

func TestParseStorageTimeMalformed(t *testing.T) {
	for _, raw := range []string{"", "not-a-date", "2025-13-99T00:00:00.000Z"} {
		assert.True(t, parseStorageTime(raw).IsZero(), "input %q", raw)
	}
}

func TestModelRoundTrip(t *testing.T) {
	deadline := "2025-04-01"
	in := &Meeting{
		ID:         "m-1",
		Title:      "Weekly sync",
		Date:       time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Duration:   1800,
		Audio:      []byte{0x1a, 0x45, 0xdf, 0xa3},
		Transcript: "hello everyone",
		Summary: &Summary{
			Executive: "Team aligned on the release plan.",
			KeyPoints: []string{"release friday", "bugs triaged"},
			ActionItems: []ActionItem{
				{Task: "ship it", Owner: "sam", Deadline: &deadline, Priority: "high"},
			},
			Decisions:   []string{"ship on friday"},
			Questions:   []string{"what about QA?"},
			Category:    "planning",
			Tags:        []string{"release"},
			GeneratedAt: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
			Model:       "gpt-4o-mini",
		},
		Speakers: []Speaker{{ID: "s1", Name: "Sam", Color: "#ff0000"}},
		Tags:     []string{"weekly", "team"},
		Category: "standup",
	}

	out := fromModel(toModel(in))

	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Title, out.Title)
	assert.True(t, in.Date.Equal(out.Date))
	assert.Equal(t, in.Duration, out.Duration)
	assert.Equal(t, in.Audio, out.Audio)
	assert.Equal(t, in.Transcript, out.Transcript)
	assert.Equal(t, in.Speakers, out.Speakers)
	assert.Equal(t, in.Tags, out.Tags)
	assert.Equal(t, in.Category, out.Category)

	require.NotNil(t, out.Summary)
	assert.Equal(t, in.Summary.Executive, out.Summary.Executive)
	assert.Equal(t, in.Summary.KeyPoints, out.Summary.KeyPoints)
	assert.Equal(t, in.Summary.ActionItems, out.Summary.ActionItems)
	assert.True(t, in.Summary.GeneratedAt.Equal(out.Summary.GeneratedAt))
	assert.Equal(t, in.Summary.Model, out.Summary.Model)
}

func TestArchivedMeetingNeverStoresAudio(t *testing.T) {
	in := &Meeting{
		ID:       "m-2",
		Title:    "Old meeting",
		Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Audio:    []byte{1, 2, 3},
		Archived: true,
	}

	rec := toModel(in)
	assert.Nil(t, rec.Audio, "archived meetings must not persist audio")

	// The flag stays authoritative on the way out even if a row carries
	// stray bytes from before the archive transition.
	rec.Audio = []byte{9, 9, 9}
	out := fromModel(rec)
	assert.True(t, out.Archived)
	assert.Nil(t, out.Audio)
}

func TestSpeakerAndTagSlicesAreNeverNil(t *testing.T) {
	out := fromModel(toModel(&Meeting{ID: "m-3", Title: "Empty"}))
	assert.NotNil(t, out.Speakers)
	assert.Empty(t, out.Speakers)
	assert.Nil(t, out.Summary)
}
