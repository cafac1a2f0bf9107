package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// TextProcessor prepares raw email text for feature extraction
type TextProcessor struct {
	logger  *zap.Logger
	maxSize int
}

// NewTextProcessor creates a new TextProcessor; maxSize <= 0 disables truncation
func NewTextProcessor(logger *zap.Logger, maxSize int) *TextProcessor {
	return &TextProcessor{
		logger:  logger,
		maxSize: maxSize,
	}
}

// TruncateText cuts text to at most maxSize bytes without splitting a rune
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated
}

// SanitizeUTF8 drops invalid UTF-8 bytes
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	sanitized := strings.ToValidUTF8(text, "")

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))

	return sanitized
}

// Normalize applies NFC so composed and decomposed forms count the same
func (tp *TextProcessor) Normalize(text string) string {
	return norm.NFC.String(text)
}

// ProcessText truncates, sanitizes and normalizes text in one operation
func (tp *TextProcessor) ProcessText(text string) string {
	return tp.Normalize(tp.SanitizeUTF8(tp.TruncateText(text, tp.maxSize)))
}
