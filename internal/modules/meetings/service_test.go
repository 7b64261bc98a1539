package meetings

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/echomeet/core/internal/database"
	"github.com/echomeet/core/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewService(db)
}

func TestSaveAssignsIDAndDate(t *testing.T) {
	svc := newTestService(t)

	m := &Meeting{Title: "Kickoff"}
	require.NoError(t, svc.Save(m))

	assert.NotEmpty(t, m.ID)
	got, err := svc.Get(m.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Kickoff", got.Title)
	assert.False(t, got.Date.IsZero())
}

func TestGetAbsentReturnsNil(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.Get("does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveUpsertsByID(t *testing.T) {
	svc := newTestService(t)

	m := &Meeting{ID: "fixed-id", Title: "First"}
	require.NoError(t, svc.Save(m))

	m.Title = "Second"
	require.NoError(t, svc.Save(m))

	got, err := svc.Get("fixed-id")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Second", got.Title)

	all, err := svc.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetAllOrdersByDateDescending(t *testing.T) {
	svc := newTestService(t)

	older := &Meeting{ID: "a", Title: "Older", Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := &Meeting{ID: "b", Title: "Newer", Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, svc.Save(older))
	require.NoError(t, svc.Save(newer))

	all, err := svc.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)
	assert.Equal(t, "a", all[1].ID)
}

func TestGetAllBreaksDateTiesByID(t *testing.T) {
	svc := newTestService(t)

	date := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, svc.Save(&Meeting{ID: "zzz", Title: "Z", Date: date}))
	require.NoError(t, svc.Save(&Meeting{ID: "aaa", Title: "A", Date: date}))

	all, err := svc.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "aaa", all[0].ID)
	assert.Equal(t, "zzz", all[1].ID)
}

func TestUpdateMergesOnlyProvidedFields(t *testing.T) {
	svc := newTestService(t)

	m := &Meeting{ID: "m-1", Title: "Original", Transcript: "keep me", Tags: []string{"one"}}
	require.NoError(t, svc.Save(m))

	title := "Renamed"
	got, err := svc.Update("m-1", &UpdateMeetingDTO{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "keep me", got.Transcript)
	assert.Equal(t, []string{"one"}, got.Tags)
}

func TestUpdateAbsentReturnsErrNotFound(t *testing.T) {
	svc := newTestService(t)

	title := "nope"
	_, err := svc.Update("missing", &UpdateMeetingDTO{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArchivePurgesAudio(t *testing.T) {
	svc := newTestService(t)

	m := &Meeting{ID: "m-1", Title: "With audio", Audio: []byte{1, 2, 3, 4}}
	require.NoError(t, svc.Save(m))

	got, err := svc.Archive("m-1")
	require.NoError(t, err)
	assert.True(t, got.Archived)
	assert.Nil(t, got.Audio)

	reloaded, err := svc.Get("m-1")
	require.NoError(t, err)
	assert.True(t, reloaded.Archived)
	assert.Nil(t, reloaded.Audio)
}

func TestDeleteIsIdempotent(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Save(&Meeting{ID: "m-1", Title: "Doomed"}))
	require.NoError(t, svc.Delete("m-1"))
	require.NoError(t, svc.Delete("m-1"))

	got, err := svc.Get("m-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSearchMatchesAcrossFields(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Save(&Meeting{ID: "by-title", Title: "Budget review"}))
	require.NoError(t, svc.Save(&Meeting{ID: "by-transcript", Title: "Other", Transcript: "we discussed the BUDGET at length"}))
	require.NoError(t, svc.Save(&Meeting{ID: "by-tag", Title: "Another", Tags: []string{"budget-2025"}}))
	require.NoError(t, svc.Save(&Meeting{ID: "by-summary", Title: "Planning", Summary: &Summary{
		Executive: "The budget was approved.",
		KeyPoints: []string{"approved"},
	}}))
	require.NoError(t, svc.Save(&Meeting{ID: "unrelated", Title: "Standup"}))

	hits, err := svc.Search("budget")
	require.NoError(t, err)

	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
	}
	assert.ElementsMatch(t, []string{"by-title", "by-transcript", "by-tag", "by-summary"}, ids)
}

func TestSearchEmptyQueryReturnsAll(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Save(&Meeting{ID: "a", Title: "One"}))
	require.NoError(t, svc.Save(&Meeting{ID: "b", Title: "Two"}))

	hits, err := svc.Search("  ")
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestStats(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Save(&Meeting{
		ID:       "a",
		Title:    "A",
		Date:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Duration: 600,
		Audio:    make([]byte, 1000),
	}))
	require.NoError(t, svc.Save(&Meeting{
		ID:       "b",
		Title:    "B",
		Date:     time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Duration: 300,
		Archived: true,
	}))

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, 1, stats.ArchivedCount)
	assert.Equal(t, 900, stats.TotalDurationSeconds)
}

func TestFindStaleForAutoArchive(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Save(&Meeting{ID: "old", Title: "Old", Date: time.Now().AddDate(0, 0, -40)}))
	require.NoError(t, svc.Save(&Meeting{ID: "recent", Title: "Recent", Date: time.Now().AddDate(0, 0, -5)}))
	require.NoError(t, svc.Save(&Meeting{ID: "old-archived", Title: "Done", Date: time.Now().AddDate(0, 0, -40), Archived: true}))

	stale, err := svc.FindStaleForAutoArchive(30)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "old", stale[0].ID)
}

func TestFindStaleForAutoDelete(t *testing.T) {
	svc := newTestService(t)

	old := &Meeting{ID: "old", Title: "Old", Archived: true, UpdatedAt: time.Now().AddDate(0, 0, -100)}
	require.NoError(t, svc.Save(old))
	require.NoError(t, svc.Save(&Meeting{ID: "fresh", Title: "Fresh", Archived: true}))
	require.NoError(t, svc.Save(&Meeting{ID: "live", Title: "Live"}))

	stale, err := svc.FindStaleForAutoDelete(30)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "old", stale[0].ID)
}

func TestClearAllWipesMeetingsAndCosts(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Save(&Meeting{ID: "a", Title: "A"}))
	require.NoError(t, svc.db.Create(&models.CostRecordModel{Month: "2025-01", TotalCost: 1.5}).Error)

	require.NoError(t, svc.ClearAll())

	all, err := svc.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)

	var costCount int64
	require.NoError(t, svc.db.Model(&models.CostRecordModel{}).Count(&costCount).Error)
	assert.Zero(t, costCount)
}
