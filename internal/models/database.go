package models

import (
	"errors"
	"fmt"

	"github.com/atwlabs/novel-workspace/internal/config"
	"github.com/atwlabs/novel-workspace/pkg/logger"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Open connects to the store selected by cfg.Driver.
func Open(cfg *config.DatabaseConfig, sqlLevel string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.GormLogger(sqlLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

// InitDB opens the store and keeps it as the package default.
func InitDB(cfg *config.DatabaseConfig, sqlLevel string) error {
	db, err := Open(cfg, sqlLevel)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

// tables in creation order; dropped in reverse.
func tables() []interface{} {
	return []interface{}{
		&User{},
		&Novel{},
		&Chapter{},
		&Review{},
		&TranslationLog{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(tables()...)
}

// ResetSchema drops every table and recreates it. All data is lost.
// The drop and the recreate are separate statements; a failure in between
// leaves the schema partially dropped.
func ResetSchema(db *gorm.DB) error {
	all := tables()
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	logger.Warn().Msg("database schema reset")
	return nil
}

func strPtr(s string) *string { return &s }

// SeedSampleData creates a sample editor, novel and first chapter when no novel exists.
// It returns the novel, or nil when the store already had data.
func SeedSampleData(db *gorm.DB) (*Novel, error) {
	var count int64
	if err := db.Model(&Novel{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}

	var novel *Novel
	err := db.Transaction(func(tx *gorm.DB) error {
		var editor User
		err := tx.Where("email = ?", "editor@example.com").First(&editor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			editor = User{Email: "editor@example.com", Role: RoleEditor, TrustScore: 100}
			err = tx.Create(&editor).Error
		}
		if err != nil {
			return err
		}

		novel = &Novel{
			Title:            "The Silent Stars",
			Description:      strPtr("A sci-fi romance about a girl who fell in love with a star."),
			OriginalLanguage: "en",
			Status:           NovelOngoing,
			Author:           strPtr("Jane Doe"),
		}
		if err := tx.Create(novel).Error; err != nil {
			return err
		}

		chapter := Chapter{
			NovelID:           novel.ID,
			Title:             "Chapter 1: The Beginning",
			ContentOriginal:   "She looked at the stars and sighed. It was a cold night, but the warmth of the fire kept her company.",
			ContentTranslated: strPtr("သူမသည် ကြယ်ကလေးများကို မော့ကြည့်ကာ သက်ပြင်းချလိုက်သည်။ အေးစက်သော ညတစ်ညဖြစ်သော်လည်း မီးဖိုမှ အနွေးဓာတ်က သူမကို အဖော်ပြုပေးနေသည်။"),
			Status:            StatusAITranslated,
			Order:             1,
		}
		if err := tx.Create(&chapter).Error; err != nil {
			return err
		}
		novel.Chapters = []Chapter{chapter}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seed sample data: %w", err)
	}

	logger.Info().Str("novel_id", novel.ID).Msg("sample data seeded")
	return novel, nil
}
