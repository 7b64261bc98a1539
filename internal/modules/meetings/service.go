package meetings

import (
	"errors"
	"strings"
	"time"

	"github.com/echomeet/core/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when an operation references a meeting id that
// does not exist.
var ErrNotFound = errors.New("meeting not found")

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Save upserts a meeting by id. A missing id is assigned on the way in.
func (s *Service) Save(m *Meeting) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Date.IsZero() {
		m.Date = time.Now()
	}
	rec := toModel(m)
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(rec).Error; err != nil {
		return err
	}
	m.CreatedAt = rec.CreatedAt
	m.UpdatedAt = rec.UpdatedAt
	return nil
}

// Get returns the meeting or nil when absent.
func (s *Service) Get(id string) (*Meeting, error) {
	var rec models.MeetingModel
	if err := s.db.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return fromModel(&rec), nil
}

// GetAll returns every meeting ordered by date descending. Equal dates are
// broken by id so the order is a deterministic total order.
func (s *Service) GetAll() ([]*Meeting, error) {
	var recs []models.MeetingModel
	if err := s.db.Order("date DESC, id ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*Meeting, len(recs))
	for i := range recs {
		out[i] = fromModel(&recs[i])
	}
	return out, nil
}

// GetByCategory filters GetAll by category, preserving order.
func (s *Service) GetByCategory(category string) ([]*Meeting, error) {
	var recs []models.MeetingModel
	if err := s.db.Where("category = ?", category).Order("date DESC, id ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*Meeting, len(recs))
	for i := range recs {
		out[i] = fromModel(&recs[i])
	}
	return out, nil
}

// Update merges the provided fields into an existing meeting. The read and
// write are two separate steps, so concurrent updates to the same record
// resolve as last-write-wins.
func (s *Service) Update(id string, dto *UpdateMeetingDTO) (*Meeting, error) {
	m, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound
	}

	if dto.Title != nil {
		m.Title = *dto.Title
	}
	if dto.Date != nil {
		m.Date = *dto.Date
	}
	if dto.Transcript != nil {
		m.Transcript = *dto.Transcript
	}
	if dto.Summary != nil {
		m.Summary = dto.Summary
	}
	if dto.Speakers != nil {
		m.Speakers = *dto.Speakers
	}
	if dto.Tags != nil {
		m.Tags = *dto.Tags
	}
	if dto.Category != nil {
		m.Category = *dto.Category
	}
	if dto.Archived != nil {
		m.Archived = *dto.Archived
		if m.Archived {
			m.Audio = nil
		}
	}
	m.UpdatedAt = time.Now()

	if err := s.Save(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes a meeting. Deleting an absent id is a no-op.
func (s *Service) Delete(id string) error {
	return s.db.Delete(&models.MeetingModel{}, "id = ?", id).Error
}

// Archive flags the meeting and purges its audio payload. The transition
// is irreversible; the audio is gone once this returns.
func (s *Service) Archive(id string) (*Meeting, error) {
	archived := true
	return s.Update(id, &UpdateMeetingDTO{Archived: &archived})
}

// Search performs a case-insensitive substring match over title,
// transcript, tags, and summary executive/key points.
func (s *Service) Search(query string) ([]*Meeting, error) {
	all, err := s.GetAll()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all, nil
	}

	out := make([]*Meeting, 0, len(all))
	for _, m := range all {
		if matchesQuery(m, q) {
			out = append(out, m)
		}
	}
	return out, nil
}

func matchesQuery(m *Meeting, q string) bool {
	if strings.Contains(strings.ToLower(m.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(m.Transcript), q) {
		return true
	}
	for _, tag := range m.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	if m.Summary != nil {
		if strings.Contains(strings.ToLower(m.Summary.Executive), q) {
			return true
		}
		for _, kp := range m.Summary.KeyPoints {
			if strings.Contains(strings.ToLower(kp), q) {
				return true
			}
		}
	}
	return false
}

// FindStaleForAutoArchive returns non-archived meetings whose date is older
// than now minus daysOld.
func (s *Service) FindStaleForAutoArchive(daysOld int) ([]*Meeting, error) {
	cutoff := formatStorageTime(time.Now().AddDate(0, 0, -daysOld))
	var recs []models.MeetingModel
	if err := s.db.Where("archived = ? AND date < ?", false, cutoff).
		Order("date DESC, id ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*Meeting, len(recs))
	for i := range recs {
		out[i] = fromModel(&recs[i])
	}
	return out, nil
}

// FindStaleForAutoDelete returns archived meetings not touched since now
// minus daysOld.
func (s *Service) FindStaleForAutoDelete(daysOld int) ([]*Meeting, error) {
	cutoff := time.Now().AddDate(0, 0, -daysOld)
	var recs []models.MeetingModel
	if err := s.db.Where("archived = ? AND updated_at < ?", true, cutoff).
		Order("date DESC, id ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*Meeting, len(recs))
	for i := range recs {
		out[i] = fromModel(&recs[i])
	}
	return out, nil
}

// Stats aggregates counts and total duration across all meetings.
func (s *Service) Stats() (*Stats, error) {
	var row struct {
		Count         int
		ArchivedCount int
		TotalDuration int
	}
	err := s.db.Model(&models.MeetingModel{}).
		Select("COUNT(*) AS count, COALESCE(SUM(CASE WHEN archived THEN 1 ELSE 0 END), 0) AS archived_count, COALESCE(SUM(duration), 0) AS total_duration").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &Stats{
		Count:                row.Count,
		ArchivedCount:        row.ArchivedCount,
		TotalDurationSeconds: row.TotalDuration,
	}, nil
}

// ClearAll wipes the meeting collection and the cost ledger. Destructive;
// confirmation is the caller's concern.
func (s *Service) ClearAll() error {
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.MeetingModel{}).Error; err != nil {
		return err
	}
	return s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.CostRecordModel{}).Error
}
