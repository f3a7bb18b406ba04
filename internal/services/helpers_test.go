package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/atwlabs/novel-workspace/internal/config"
	"github.com/atwlabs/novel-workspace/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := models.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	}, "silent")
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func strPtr(s string) *string { return &s }

func createNovel(t *testing.T, db *gorm.DB, title string) *models.Novel {
	t.Helper()
	novel := &models.Novel{Title: title, OriginalLanguage: "en"}
	require.NoError(t, db.Create(novel).Error)
	return novel
}

func createChapter(t *testing.T, db *gorm.DB, novelID string, order int, status string) *models.Chapter {
	t.Helper()
	chapter := &models.Chapter{
		NovelID:         novelID,
		Title:           "Chapter",
		ContentOriginal: "She looked at the stars and sighed.",
		Status:          status,
		Order:           order,
	}
	require.NoError(t, db.Create(chapter).Error)
	return chapter
}

func reload(t *testing.T, db *gorm.DB, id string) *models.Chapter {
	t.Helper()
	var chapter models.Chapter
	require.NoError(t, db.First(&chapter, "id = ?", id).Error)
	return &chapter
}

type fakeTranslator struct {
	mu     sync.Mutex
	out    string
	err    error
	calls  int
	target string
}

func (f *fakeTranslator) Translate(_ context.Context, _ string, targetLanguage string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.target = targetLanguage
	return f.out, f.err
}

func (f *fakeTranslator) Provider() string { return "fake" }
func (f *fakeTranslator) Model() string    { return "fake-1" }
