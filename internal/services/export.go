package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atwlabs/novel-workspace/internal/config"
	"github.com/atwlabs/novel-workspace/internal/models"
	"github.com/atwlabs/novel-workspace/pkg/logger"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Uploader copies a finished export to remote storage.
type Uploader interface {
	Upload(ctx context.Context, name string, body io.ReadSeeker) (string, error)
}

type ExportOptions struct {
	OutputDir string
	// VerifiedOnly restricts the export to chapters verified for training.
	VerifiedOnly bool
}

type ExportResult struct {
	Path      string `json:"path,omitempty"`
	Records   int    `json:"records"`
	RemoteKey string `json:"remote_key,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type fineTuneRecord struct {
	Messages []chatMessage `json:"messages"`
}

// ExportService writes human-edited chapters as chat fine-tuning data.
type ExportService struct {
	db       *gorm.DB
	cfg      config.ExportConfig
	uploader Uploader
	now      func() time.Time
	log      zerolog.Logger
}

func NewExportService(db *gorm.DB, cfg *config.ExportConfig, uploader Uploader) *ExportService {
	return &ExportService{
		db:       db,
		cfg:      *cfg,
		uploader: uploader,
		now:      time.Now,
		log:      logger.Component("export"),
	}
}

func exportFileName(t time.Time) string {
	stamp := strings.ReplaceAll(t.UTC().Format("2006-01-02T15-04-05.000Z"), ".", "-")
	return "finetune_data_" + stamp + ".jsonl"
}

// maxNameAttempts bounds the suffixes tried when an export name is taken.
const maxNameAttempts = 100

// publishExport hard-links the finished temp file under name, adding a -N
// suffix when a file of that name already exists. Linking never replaces an
// existing file, so concurrent exports cannot clobber each other.
func publishExport(tmpPath, dir, name string) (string, string, error) {
	base := strings.TrimSuffix(name, ".jsonl")
	candidate := name
	for i := 1; i <= maxNameAttempts; i++ {
		finalPath := filepath.Join(dir, candidate)
		err := os.Link(tmpPath, finalPath)
		if err == nil {
			return candidate, finalPath, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", "", fmt.Errorf("finalize export file: %w", err)
		}
		candidate = fmt.Sprintf("%s-%d.jsonl", base, i)
	}
	return "", "", fmt.Errorf("finalize export file: no free name for %s", name)
}

// Export writes one JSON line per chapter with edited content, ordered by novel
// and chapter order. No file is produced when nothing qualifies.
func (s *ExportService) Export(ctx context.Context, opts ExportOptions) (*ExportResult, error) {
	dir := opts.OutputDir
	if dir == "" {
		dir = s.cfg.OutputDir
	}
	if dir == "" {
		dir = "exports"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	systemPrompt := s.cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = config.DefaultSystemPrompt
	}

	tmp, err := os.CreateTemp(dir, ".finetune_data_*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create export file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	query := s.db.WithContext(ctx).Model(&models.Chapter{}).
		Select("id", "novel_id", "chapter_order", "content_original", "content_edited").
		Where("content_edited IS NOT NULL")
	if opts.VerifiedOnly {
		query = query.Where("status = ?", models.StatusVerifiedForTraining)
	}
	rows, err := query.Order("novel_id ASC, chapter_order ASC").Rows()
	if err != nil {
		return nil, fmt.Errorf("query chapters: %w", err)
	}
	defer rows.Close()

	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)

	records := 0
	for rows.Next() {
		var chapter models.Chapter
		if err := s.db.ScanRows(rows, &chapter); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		if chapter.ContentEdited == nil {
			continue
		}
		record := fineTuneRecord{Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: chapter.ContentOriginal},
			{Role: "assistant", Content: *chapter.ContentEdited},
		}}
		if err := enc.Encode(record); err != nil {
			return nil, fmt.Errorf("write record: %w", err)
		}
		records++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chapters: %w", err)
	}

	if records == 0 {
		s.log.Warn().Msg("no human-edited chapters found to export; mark chapters as reviewed first")
		return &ExportResult{}, nil
	}

	if err := tmp.Sync(); err != nil {
		return nil, fmt.Errorf("flush export file: %w", err)
	}
	name, finalPath, err := publishExport(tmp.Name(), dir, exportFileName(s.now()))
	if err != nil {
		return nil, err
	}

	result := &ExportResult{Path: finalPath, Records: records}
	s.log.Info().Int("records", records).Str("path", finalPath).Msg("fine-tuning data exported")

	if s.uploader != nil {
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			return result, fmt.Errorf("rewind export file: %w", err)
		}
		key, err := s.uploader.Upload(ctx, name, tmp)
		if err != nil {
			return result, err
		}
		result.RemoteKey = key
		s.log.Info().Str("key", key).Msg("export uploaded")
	}
	return result, nil
}
