package models

import (
	"path/filepath"
	"testing"

	"github.com/atwlabs/novel-workspace/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(&config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	}, "silent")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"}, "silent")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestDisplayContent(t *testing.T) {
	translated := "draft"
	edited := "golden"

	tests := []struct {
		name    string
		chapter Chapter
		want    string
	}{
		{"nothing yet", Chapter{}, PlaceholderContent},
		{"translated only", Chapter{ContentTranslated: &translated}, "draft"},
		{"edited wins", Chapter{ContentTranslated: &translated, ContentEdited: &edited}, "golden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.chapter.DisplayContent())
		})
	}
}

func TestBeforeCreate_AssignsTimeOrderedIDs(t *testing.T) {
	db := openTestDB(t)

	first := User{Email: "a@example.com"}
	second := User{Email: "b@example.com"}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)

	assert.Len(t, first.ID, 36)
	assert.Less(t, first.ID, second.ID)
	assert.Equal(t, RoleReader, first.Role)
	assert.NotZero(t, first.CreatedAt)
}

func TestChapterOrder_UniquePerNovel(t *testing.T) {
	db := openTestDB(t)

	novel := Novel{Title: "N", OriginalLanguage: "en"}
	other := Novel{Title: "M", OriginalLanguage: "ko"}
	require.NoError(t, db.Create(&novel).Error)
	require.NoError(t, db.Create(&other).Error)

	require.NoError(t, db.Create(&Chapter{NovelID: novel.ID, Title: "1", ContentOriginal: "x", Order: 1}).Error)
	require.NoError(t, db.Create(&Chapter{NovelID: other.ID, Title: "1", ContentOriginal: "x", Order: 1}).Error)
	assert.Error(t, db.Create(&Chapter{NovelID: novel.ID, Title: "dup", ContentOriginal: "x", Order: 1}).Error)
}

func TestSeedSampleData(t *testing.T) {
	db := openTestDB(t)

	novel, err := SeedSampleData(db)
	require.NoError(t, err)
	require.NotNil(t, novel)
	assert.Equal(t, "The Silent Stars", novel.Title)

	var chapter Chapter
	require.NoError(t, db.Where("novel_id = ?", novel.ID).First(&chapter).Error)
	assert.Equal(t, StatusAITranslated, chapter.Status)
	assert.Equal(t, 1, chapter.Order)
	assert.NotNil(t, chapter.ContentTranslated)

	var editor User
	require.NoError(t, db.Where("email = ?", "editor@example.com").First(&editor).Error)
	assert.Equal(t, RoleEditor, editor.Role)
	assert.Equal(t, 100, editor.TrustScore)

	// second run is a no-op
	again, err := SeedSampleData(db)
	require.NoError(t, err)
	assert.Nil(t, again)

	var novels int64
	db.Model(&Novel{}).Count(&novels)
	assert.EqualValues(t, 1, novels)
}

func TestResetSchema_DropsData(t *testing.T) {
	db := openTestDB(t)
	_, err := SeedSampleData(db)
	require.NoError(t, err)

	require.NoError(t, ResetSchema(db))

	var novels, users int64
	db.Model(&Novel{}).Count(&novels)
	db.Model(&User{}).Count(&users)
	assert.Zero(t, novels)
	assert.Zero(t, users)
	assert.True(t, db.Migrator().HasTable(&Review{}))
}
