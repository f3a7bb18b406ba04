package models

import "gorm.io/gorm"

// TranslationLog records each call to the external translation service.
type TranslationLog struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	ChapterID    string `gorm:"size:36;index" json:"chapter_id"`
	Provider     string `gorm:"size:50" json:"provider"`
	Model        string `gorm:"size:100" json:"model"`
	SourceChars  int    `json:"source_chars"`
	OutputChars  int    `json:"output_chars"`
	LatencyMs    int64  `json:"latency_ms"`
	Success      bool   `json:"success"`
	ErrorMessage string `gorm:"size:500" json:"error_message,omitempty"`
	CreatedAt    int64  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (TranslationLog) TableName() string { return "translation_logs" }

func (l *TranslationLog) BeforeCreate(*gorm.DB) error { return assignID(&l.ID) }
