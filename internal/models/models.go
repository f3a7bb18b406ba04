package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleReader = "reader"
)

const (
	NovelOngoing   = "ongoing"
	NovelCompleted = "completed"
	NovelDropped   = "dropped"
)

// PlaceholderContent is shown for chapters with neither an edited nor a translated text.
const PlaceholderContent = "Translation in progress..."

// User represents an editor, reader or admin of the workspace
type User struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	Email      string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Role       string `gorm:"size:20;not null;default:reader" json:"role"` // admin, editor, reader
	TrustScore int    `gorm:"not null;default:0" json:"trust_score"`
	CreatedAt  int64  `gorm:"autoCreateTime" json:"created_at"`
}

// Novel is a translated work made of ordered chapters
type Novel struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	Title            string    `gorm:"size:500;not null" json:"title"`
	Description      *string   `gorm:"type:text" json:"description"`
	OriginalLanguage string    `gorm:"size:10;not null" json:"original_language"` // en, zh, ko
	Status           string    `gorm:"size:20;not null;default:ongoing" json:"status"`
	CoverURL         *string   `gorm:"size:1000" json:"cover_url"`
	Author           *string   `gorm:"size:255" json:"author"`
	CreatedAt        int64     `gorm:"autoCreateTime" json:"created_at"`
	Chapters         []Chapter `gorm:"foreignKey:NovelID" json:"chapters,omitempty"`
}

// Chapter holds the source text, the AI/draft translation and the human-edited text.
// ContentOriginal is written once at creation.
type Chapter struct {
	ID                string  `gorm:"primaryKey;size:36" json:"id"`
	NovelID           string  `gorm:"size:36;not null;uniqueIndex:idx_chapters_novel_order,priority:1" json:"novel_id"`
	Novel             *Novel  `gorm:"foreignKey:NovelID" json:"novel,omitempty"`
	Title             string  `gorm:"size:500;not null" json:"title"`
	ContentOriginal   string  `gorm:"type:text;not null" json:"content_original"`
	ContentTranslated *string `gorm:"type:text" json:"content_translated"`
	ContentEdited     *string `gorm:"type:text" json:"content_edited"`
	Status            string  `gorm:"size:30;not null;default:pending;index" json:"status"`
	Order             int     `gorm:"column:chapter_order;not null;uniqueIndex:idx_chapters_novel_order,priority:2" json:"order"`
	ViewCount         int     `gorm:"not null;default:0" json:"view_count"`
	PublishedAt       *int64  `json:"published_at"`
	CreatedAt         int64   `gorm:"autoCreateTime" json:"created_at"`
}

// Review is an append-only rating left by a user on a chapter
type Review struct {
	ID        string  `gorm:"primaryKey;size:36" json:"id"`
	UserID    string  `gorm:"size:36;not null;index" json:"user_id"`
	User      *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ChapterID string  `gorm:"size:36;not null;index" json:"chapter_id"`
	Rating    int     `gorm:"not null" json:"rating"`
	Comment   *string `gorm:"type:text" json:"comment"`
	CreatedAt int64   `gorm:"autoCreateTime;index" json:"created_at"`
}

func (User) TableName() string    { return "users" }
func (Novel) TableName() string   { return "novels" }
func (Chapter) TableName() string { return "chapters" }
func (Review) TableName() string  { return "reviews" }

// newID returns a time-ordered UUIDv7 string.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func assignID(id *string) error {
	if *id != "" {
		return nil
	}
	generated, err := newID()
	if err != nil {
		return err
	}
	*id = generated
	return nil
}

func (u *User) BeforeCreate(*gorm.DB) error    { return assignID(&u.ID) }
func (n *Novel) BeforeCreate(*gorm.DB) error   { return assignID(&n.ID) }
func (c *Chapter) BeforeCreate(*gorm.DB) error { return assignID(&c.ID) }
func (r *Review) BeforeCreate(*gorm.DB) error  { return assignID(&r.ID) }

// DisplayContent returns the edited text, else the translated text, else the placeholder.
func (c *Chapter) DisplayContent() string {
	if c.ContentEdited != nil {
		return *c.ContentEdited
	}
	if c.ContentTranslated != nil {
		return *c.ContentTranslated
	}
	return PlaceholderContent
}
