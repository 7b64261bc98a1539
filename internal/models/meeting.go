package models

// MeetingModel is the storage record for one recorded session.
//
// Date is stored as a fixed-width UTC string ("2006-01-02T15:04:05.000Z") so
// lexicographic index order equals chronological order across engines. Audio is
// NULL once the meeting is archived; the Archived flag is authoritative — an
// empty blob on an unarchived meeting is a legal state, not an archive marker.
type MeetingModel struct {
	Base
	Title      string       `json:"title"      gorm:"not null"`
	Date       string       `json:"date"       gorm:"size:24;index;not null"`
	Duration   int          `json:"duration"   gorm:"default:0"`
	Audio      []byte       `json:"-"          gorm:"type:mediumblob"`
	Transcript string       `json:"transcript" gorm:"type:longtext"`
	Summary    *SummaryDoc  `json:"summary"    gorm:"type:longtext;serializer:json"`
	Speakers   SpeakerList  `json:"speakers"   gorm:"type:text;serializer:json"`
	Tags       StringSlice  `json:"tags"       gorm:"type:text;serializer:json"`
	Category   string       `json:"category"   gorm:"index"`
	Archived   bool         `json:"archived"   gorm:"default:false;index"`
}

func (MeetingModel) TableName() string { return "meetings" }

// SpeakerList serializes as JSON in the database.
type SpeakerList []Speaker

// Speaker is one labelled voice in a meeting.
type Speaker struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// SummaryDoc is the stored form of an AI-generated summary. A meeting owns at
// most one; regeneration replaces the whole document.
type SummaryDoc struct {
	Executive   string       `json:"executive"`
	KeyPoints   []string     `json:"key_points"`
	ActionItems []ActionItem `json:"action_items"`
	Decisions   []string     `json:"decisions"`
	Questions   []string     `json:"questions"`
	Category    string       `json:"category,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	GeneratedAt string       `json:"generated_at"`
	Model       string       `json:"model"`
}

// ActionItem is a single follow-up extracted from the transcript.
type ActionItem struct {
	Task     string  `json:"task"`
	Owner    string  `json:"owner,omitempty"`
	Deadline *string `json:"deadline,omitempty"`
	Priority string  `json:"priority,omitempty"`
}
