package meetings

import (
	"time"

	"github.com/echomeet/core/internal/models"
)

// storageTimeLayout is the canonical meeting-date form. Fixed-width UTC so
// lexicographic order on the stored column matches chronological order.
const storageTimeLayout = "2006-01-02T15:04:05.000Z"

func formatStorageTime(t time.Time) string {
	return t.UTC().Format(storageTimeLayout)
}

func parseStorageTime(s string) time.Time {
	t, err := time.Parse(storageTimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// toModel converts a domain meeting into its storage row. An archived
// meeting always stores a nil audio payload.
func toModel(m *Meeting) *models.MeetingModel {
	rec := &models.MeetingModel{
		Title:      m.Title,
		Date:       formatStorageTime(m.Date),
		Duration:   m.Duration,
		Transcript: m.Transcript,
		Summary:    toSummaryDoc(m.Summary),
		Speakers:   toSpeakerList(m.Speakers),
		Tags:       models.StringSlice(m.Tags),
		Category:   m.Category,
		Archived:   m.Archived,
	}
	rec.ID = m.ID
	rec.CreatedAt = m.CreatedAt
	rec.UpdatedAt = m.UpdatedAt
	if !m.Archived {
		rec.Audio = m.Audio
	}
	return rec
}

// fromModel converts a storage row back into a domain meeting. Audio
// presence alone does not indicate archival; the flag is authoritative.
func fromModel(rec *models.MeetingModel) *Meeting {
	m := &Meeting{
		ID:         rec.ID,
		Title:      rec.Title,
		Date:       parseStorageTime(rec.Date),
		Duration:   rec.Duration,
		Transcript: rec.Transcript,
		Summary:    fromSummaryDoc(rec.Summary),
		Speakers:   fromSpeakerList(rec.Speakers),
		Tags:       []string(rec.Tags),
		Category:   rec.Category,
		Archived:   rec.Archived,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
	if !rec.Archived {
		m.Audio = rec.Audio
	}
	return m
}

func toSummaryDoc(s *Summary) *models.SummaryDoc {
	if s == nil {
		return nil
	}
	doc := &models.SummaryDoc{
		Executive:   s.Executive,
		KeyPoints:   s.KeyPoints,
		Decisions:   s.Decisions,
		Questions:   s.Questions,
		Category:    s.Category,
		Tags:        s.Tags,
		GeneratedAt: formatStorageTime(s.GeneratedAt),
		Model:       s.Model,
	}
	for _, it := range s.ActionItems {
		doc.ActionItems = append(doc.ActionItems, models.ActionItem{
			Task: it.Task, Owner: it.Owner, Deadline: it.Deadline, Priority: it.Priority,
		})
	}
	return doc
}

func fromSummaryDoc(doc *models.SummaryDoc) *Summary {
	if doc == nil {
		return nil
	}
	s := &Summary{
		Executive:   doc.Executive,
		KeyPoints:   doc.KeyPoints,
		Decisions:   doc.Decisions,
		Questions:   doc.Questions,
		Category:    doc.Category,
		Tags:        doc.Tags,
		GeneratedAt: parseStorageTime(doc.GeneratedAt),
		Model:       doc.Model,
	}
	for _, it := range doc.ActionItems {
		s.ActionItems = append(s.ActionItems, ActionItem{
			Task: it.Task, Owner: it.Owner, Deadline: it.Deadline, Priority: it.Priority,
		})
	}
	return s
}

func toSpeakerList(speakers []Speaker) models.SpeakerList {
	out := make(models.SpeakerList, 0, len(speakers))
	for _, sp := range speakers {
		out = append(out, models.Speaker{ID: sp.ID, Name: sp.Name, Color: sp.Color})
	}
	return out
}

func fromSpeakerList(list models.SpeakerList) []Speaker {
	out := make([]Speaker, 0, len(list))
	for _, sp := range list {
		out = append(out, Speaker{ID: sp.ID, Name: sp.Name, Color: sp.Color})
	}
	return out
}
