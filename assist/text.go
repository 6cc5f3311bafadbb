// Package assist drives the AI collaborators.
//
// text.go contains pure text and JSON atoms used when building requests and
// parsing model replies.
package assist

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// JSON parsing errors
var (
	// ErrNoJSONFound is returned when no JSON object is found in the text.
	ErrNoJSONFound = errors.New("assist: no JSON object found in text")
	// ErrInvalidJSON is returned when JSON parsing fails.
	ErrInvalidJSON = errors.New("assist: invalid JSON")
)

// GenerateCorrelationID creates a unique 8-character ID for request tracing.
// Uses UUID v4 and truncates to first 8 characters for brevity while
// maintaining sufficient uniqueness for correlation purposes.
//
// Example:
//
//	correlationID := assist.GenerateCorrelationID()
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// TruncateText truncates a string to a specified maximum length.
// If the text is shorter than the limit, it is returned unchanged.
//
// This is a pure atom function with no side effects.
func TruncateText(text string, maxLength int) string {
	if len(text) > maxLength {
		return text[:maxLength]
	}
	return text
}

// ExtractJSONFromText extracts the first JSON object from a text string.
// It finds the first '{' and last '}' and extracts the text between them —
// models wrap JSON replies in prose and code fences often enough that
// parsing the raw completion directly is not reliable.
//
// This is a pure function (atom) with no external dependencies.
//
// Example:
//
//	jsonStr, err := assist.ExtractJSONFromText("Here you go: {\"pages\": [2]}")
//	// jsonStr == `{"pages": [2]}`
func ExtractJSONFromText(text string) (string, error) {
	startIdx := strings.Index(text, "{")
	endIdx := strings.LastIndex(text, "}")

	if startIdx == -1 || endIdx == -1 || startIdx > endIdx {
		return "", ErrNoJSONFound
	}

	return text[startIdx : endIdx+1], nil
}

// ParseJSONToMap parses a JSON string into a map[string]interface{}.
//
// This is a pure function (atom) with no external dependencies.
func ParseJSONToMap(jsonStr string) (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return result, nil
}

// NormalizeNewlines converts escaped newlines (\n as literal backslash-n) to
// actual newlines. Commonly needed when models escape newlines inside JSON
// string fields.
//
// This is a pure function (atom) with no external dependencies.
func NormalizeNewlines(text string) string {
	return strings.ReplaceAll(text, "\\n", "\n")
}

// EstimateTokenCount provides a rough estimate of tokens in text.
// Uses a simple approximation of 4 characters per token.
//
// This is a pure atom function.
func EstimateTokenCount(text string) int {
	return len(text) / 4
}

// SplitIntoChunks splits text into chunks based on paragraph boundaries.
// Attempts to keep paragraphs together within the size limit.
// Returns empty slice if input text is empty.
//
// This is a pure atom function used to bound document context in chat
// requests.
//
// Example:
//
//	chunks := assist.SplitIntoChunks(pageText, 4000)
func SplitIntoChunks(text string, maxChunkSize int) []string {
	var chunks []string
	paragraphs := strings.Split(text, "\n\n")

	var currentChunk strings.Builder
	currentSize := 0

	for _, para := range paragraphs {
		paraSize := len(para)

		if currentSize+paraSize > maxChunkSize {
			if currentChunk.Len() > 0 {
				chunks = append(chunks, currentChunk.String())
				currentChunk.Reset()
				currentSize = 0
			}
		}

		currentChunk.WriteString(para)
		currentChunk.WriteString("\n\n")
		currentSize += paraSize + 2
	}

	if currentChunk.Len() > 0 {
		chunks = append(chunks, currentChunk.String())
	}

	return chunks
}
