package services

import "errors"

var (
	ErrChapterNotFound         = errors.New("chapter not found")
	ErrNovelNotFound           = errors.New("novel not found")
	ErrMissingOriginal         = errors.New("chapter has no original content")
	ErrInvalidTransition       = errors.New("invalid chapter status transition")
	ErrInvalidRating           = errors.New("rating must be between 1 and 5")
	ErrTranslatorNotConfigured = errors.New("translation service is not configured")
	ErrTranslationFailed       = errors.New("translation failed")
)
