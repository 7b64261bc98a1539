package costs

import (
	"errors"
	"fmt"
	"time"

	"github.com/echomeet/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Kind names a billable operation.
type Kind string

const (
	KindTranscription Kind = "transcription"
	KindSummarization Kind = "summarization"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

func monthKey(t time.Time) string { return t.Format("2006-01") }

// Record adds a cost event to the current month's bucket, creating the
// bucket on first use. MeetingCount counts events, not unique meetings.
func (s *Service) Record(kind Kind, amountDollars float64) error {
	if kind != KindTranscription && kind != KindSummarization {
		return fmt.Errorf("unknown cost kind %q", kind)
	}

	now := time.Now()
	month := monthKey(now)

	var rec models.CostRecordModel
	err := s.db.First(&rec, "month = ?", month).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rec = models.CostRecordModel{Month: month}
	} else if err != nil {
		return err
	}

	switch kind {
	case KindTranscription:
		rec.TranscriptionCost += amountDollars
	case KindSummarization:
		rec.SummarizationCost += amountDollars
	}
	rec.TotalCost = rec.TranscriptionCost + rec.SummarizationCost
	rec.MeetingCount++
	rec.LastUpdated = now

	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
}

// LogCost is the fire-and-forget entry point used after external API calls.
// Failures are logged and swallowed so they never abort the caller's flow.
func (s *Service) LogCost(kind Kind, amountDollars float64) {
	if err := s.Record(kind, amountDollars); err != nil {
		s.log.Warn("cost ledger write failed",
			zap.String("kind", string(kind)),
			zap.Float64("amount", amountDollars),
			zap.Error(err),
		)
	}
}

// GetMonth returns the cost bucket for a YYYY-MM key, or nil when absent.
func (s *Service) GetMonth(month string) (*models.CostRecordModel, error) {
	var rec models.CostRecordModel
	if err := s.db.First(&rec, "month = ?", month).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// ListAll returns every monthly bucket, newest month first.
func (s *Service) ListAll() ([]models.CostRecordModel, error) {
	var recs []models.CostRecordModel
	return recs, s.db.Order("month DESC").Find(&recs).Error
}
