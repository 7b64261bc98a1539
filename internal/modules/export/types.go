package export

import (
	"errors"
	"time"

	"github.com/echomeet/core/internal/modules/meetings"
)

// Fixed entry names inside an archive. A single-meeting archive carries
// them at the root; a bulk archive nests them one folder per meeting.
const (
	audioFileName       = "audio.webm"
	transcriptFileName  = "transcript.txt"
	summaryMDFileName   = "summary.md"
	summaryHTMLFileName = "summary.html"
	metadataFileName    = "metadata.json"
	readmeFileName      = "README.txt"
)

var (
	// ErrNothingToExport is returned when a bulk export finds zero meetings.
	ErrNothingToExport = errors.New("no meetings to export")
	// ErrInvalidMetadata is returned when an archive's metadata document is
	// missing or cannot be parsed.
	ErrInvalidMetadata = errors.New("missing or malformed metadata document")
)

// DuplicatePolicy selects how an import resolves an id collision.
type DuplicatePolicy string

const (
	PolicyReplace  DuplicatePolicy = "replace"
	PolicyKeepBoth DuplicatePolicy = "keep-both"
	PolicySkip     DuplicatePolicy = "skip"
)

// ParsePolicy maps a raw string onto a DuplicatePolicy, defaulting to skip.
func ParsePolicy(raw string) DuplicatePolicy {
	switch DuplicatePolicy(raw) {
	case PolicyReplace, PolicyKeepBoth, PolicySkip:
		return DuplicatePolicy(raw)
	default:
		return PolicySkip
	}
}

// Metadata is the structured document describing one exported meeting.
// It carries every non-binary field plus a flag for audio presence.
type Metadata struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Date          time.Time          `json:"date"`
	Duration      int                `json:"duration"`
	Speakers      []meetings.Speaker `json:"speakers"`
	Tags          []string           `json:"tags"`
	Category      string             `json:"category"`
	Archived      bool               `json:"archived"`
	Summary       *meetings.Summary  `json:"summary,omitempty"`
	Created       time.Time          `json:"created"`
	Modified      time.Time          `json:"modified"`
	AudioIncluded bool               `json:"audio_included"`
}

func metadataFromMeeting(m *meetings.Meeting) Metadata {
	return Metadata{
		ID:            m.ID,
		Title:         m.Title,
		Date:          m.Date,
		Duration:      m.Duration,
		Speakers:      m.Speakers,
		Tags:          m.Tags,
		Category:      m.Category,
		Archived:      m.Archived,
		Summary:       m.Summary,
		Created:       m.CreatedAt,
		Modified:      m.UpdatedAt,
		AudioIncluded: !m.Archived && len(m.Audio) > 0,
	}
}

func (meta *Metadata) toMeeting(transcript string, audio []byte) *meetings.Meeting {
	m := &meetings.Meeting{
		ID:         meta.ID,
		Title:      meta.Title,
		Date:       meta.Date,
		Duration:   meta.Duration,
		Transcript: transcript,
		Summary:    meta.Summary,
		Speakers:   meta.Speakers,
		Tags:       meta.Tags,
		Category:   meta.Category,
		Archived:   meta.Archived,
		CreatedAt:  meta.Created,
		UpdatedAt:  meta.Modified,
	}
	if !meta.Archived {
		m.Audio = audio
	}
	return m
}
