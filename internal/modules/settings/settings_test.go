package settings

import (
	"encoding/json"
	"path/filepath"
	"testing"

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

func TestGetReturnsDefaultsOnEmptyDB(t *testing.T) {
	svc := newTestService(t)

	cfg, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, "standard", cfg.AI.Tier)
	assert.Equal(t, "whisper-1", cfg.AI.TranscriptionModel)
	assert.Nil(t, cfg.AutoArchiveDays)

	// First read seeds the persisted document.
	var opt models.OptionModel
	require.NoError(t, svc.db.Where("name = ?", settingsKey).First(&opt).Error)
	assert.NotEmpty(t, opt.Value)
}

func TestPatchMergesTopLevelScalars(t *testing.T) {
	svc := newTestService(t)

	updated, err := svc.Patch(map[string]json.RawMessage{
		"dark_mode":         json.RawMessage(`true`),
		"auto_archive_days": json.RawMessage(`30`),
	})
	require.NoError(t, err)
	assert.True(t, updated.DarkMode)
	require.NotNil(t, updated.AutoArchiveDays)
	assert.Equal(t, 30, *updated.AutoArchiveDays)

	// Untouched fields keep their defaults.
	assert.Equal(t, "en", updated.Locale)
}

func TestPatchDeepMergesNestedObjects(t *testing.T) {
	svc := newTestService(t)

	updated, err := svc.Patch(map[string]json.RawMessage{
		"ai": json.RawMessage(`{"tier":"premium"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "premium", updated.AI.Tier)
	// Sibling keys inside the nested object survive the merge.
	assert.Equal(t, "whisper-1", updated.AI.TranscriptionModel)
}

func TestPatchReplacesArraysWholesale(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Patch(map[string]json.RawMessage{
		"ai": json.RawMessage(`{"providers":[{"id":"p1","type":"openai","enabled":true},{"id":"p2","type":"anthropic","enabled":false}]}`),
	})
	require.NoError(t, err)

	updated, err := svc.Patch(map[string]json.RawMessage{
		"ai": json.RawMessage(`{"providers":[{"id":"p2","type":"anthropic","enabled":true}]}`),
	})
	require.NoError(t, err)
	require.Len(t, updated.AI.Providers, 1)
	assert.Equal(t, "p2", updated.AI.Providers[0].ID)
	assert.True(t, updated.AI.Providers[0].Enabled)
}

func TestPatchIgnoresUnknownKeys(t *testing.T) {
	svc := newTestService(t)

	updated, err := svc.Patch(map[string]json.RawMessage{
		"does_not_exist": json.RawMessage(`"whatever"`),
	})
	require.NoError(t, err)
	assert.Equal(t, "en", updated.Locale)
}

func TestInvalidateForcesReload(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Get()
	require.NoError(t, err)

	// Mutate the row behind the cache's back.
	doc := `{"locale":"de"}`
	require.NoError(t, svc.db.Model(&models.OptionModel{}).
		Where("name = ?", settingsKey).Update("value", doc).Error)

	cached, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "en", cached.Locale, "stale cache expected before Invalidate")

	svc.Invalidate()
	fresh, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "de", fresh.Locale)
}
