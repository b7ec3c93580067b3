package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrModelMismatch is returned when an operation would mix vectors from
// different embedding models or dimensionalities. Ranking across
// incompatible vector spaces produces nonsense scores, so the operation
// fails fast instead.
var ErrModelMismatch = errors.New("embedding model mismatch")

// Provider defines the interface for embedding generation.
// Model and Dimensions identify the vector space; they are recorded with
// every persisted embedding so a query can refuse to rank against a corpus
// built by a different model.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
	Dimensions() int
	Close() error
}

// PrepareIssueText combines summary and description for embedding,
// truncated to maxChars to respect embedding service input limits.
// Truncation is silent and lossy.
func PrepareIssueText(summary, description string, maxChars int) string {
	text := fmt.Sprintf("Summary: %s\n\nDescription: %s", summary, description)
	return TruncateText(text, maxChars)
}

// TruncateText truncates text to maxLen characters
func TruncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}

// CleanText removes excessive whitespace from text
func CleanText(text string) string {
	text = strings.TrimSpace(text)
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
