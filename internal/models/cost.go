package models

import "time"

// CostRecordModel accumulates API spend per calendar month.
// MeetingCount counts logged events, not unique meetings.
type CostRecordModel struct {
	Month              string    `json:"month"               gorm:"size:7;primaryKey"` // YYYY-MM
	TranscriptionCost  float64   `json:"transcription_cost"  gorm:"default:0"`
	SummarizationCost  float64   `json:"summarization_cost"  gorm:"default:0"`
	TotalCost          float64   `json:"total_cost"          gorm:"default:0"`
	MeetingCount       int       `json:"meeting_count"       gorm:"default:0"`
	LastUpdated        time.Time `json:"last_updated"`
}

func (CostRecordModel) TableName() string { return "cost_records" }
