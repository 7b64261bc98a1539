package meetings

import "time"

// Meeting is the in-memory representation of one recorded session.
type Meeting struct {
	ID         string
	Title      string
	Date       time.Time
	Duration   int // seconds
	Audio      []byte
	Transcript string
	Summary    *Summary
	Speakers   []Speaker
	Tags       []string
	Category   string
	Archived   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Speaker is one participant detected or entered at recording time.
type Speaker struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Summary is the structured AI-generated digest of a meeting.
// A meeting holds at most one; regeneration replaces it wholesale.
type Summary struct {
	Executive   string       `json:"executive"`
	KeyPoints   []string     `json:"key_points"`
	ActionItems []ActionItem `json:"action_items"`
	Decisions   []string     `json:"decisions"`
	Questions   []string     `json:"questions"`
	Category    string       `json:"category"`
	Tags        []string     `json:"tags"`
	GeneratedAt time.Time    `json:"generated_at"`
	Model       string       `json:"model"`
}

// ActionItem is one follow-up extracted from the meeting.
type ActionItem struct {
	Task     string  `json:"task"`
	Owner    string  `json:"owner"`
	Deadline *string `json:"deadline,omitempty"`
	Priority string  `json:"priority,omitempty"`
}

// UpdateMeetingDTO carries a partial update; nil fields are left untouched.
// Summary replaces the whole nested document when present.
type UpdateMeetingDTO struct {
	Title      *string    `json:"title"`
	Date       *time.Time `json:"date"`
	Transcript *string    `json:"transcript"`
	Summary    *Summary   `json:"summary"`
	Speakers   *[]Speaker `json:"speakers"`
	Tags       *[]string  `json:"tags"`
	Category   *string    `json:"category"`
	Archived   *bool      `json:"archived"`
}

// Stats aggregates over the whole meeting collection.
type Stats struct {
	Count                int `json:"count"`
	ArchivedCount        int `json:"archived_count"`
	TotalDurationSeconds int `json:"total_duration_seconds"`
}
