// Package assist drives the AI collaborators.
//
// errors.go classifies provider failures into the conditions users can act
// on. Rate limiting and quota exhaustion get specific messages; everything
// else stays generic and untried — only the auto-scan loop continues past a
// failed call, and only to the next page.
package assist

import (
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// User-actionable AI failure conditions.
var (
	// ErrRateLimited indicates the provider is throttling requests.
	// Waiting and retrying manually is the remedy.
	ErrRateLimited = errors.New("assist: AI provider rate limit reached, wait a moment and try again")

	// ErrQuotaExhausted indicates the account has no remaining credit.
	// Retrying will not help until the plan or billing is updated.
	ErrQuotaExhausted = errors.New("assist: AI provider quota exhausted, check the account plan and billing")

	// ErrEmptyCompletion indicates the provider returned no choices.
	ErrEmptyCompletion = errors.New("assist: AI provider returned an empty completion")
)

// ClassifyAPIError maps a provider error to one of the user-actionable
// sentinel errors where possible, otherwise wraps it generically. The
// distinction matters: a 429 with an insufficient_quota code means paying,
// not waiting.
func ClassifyAPIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if isQuotaCode(apiErr.Code) || apiErr.Type == "insufficient_quota" {
			return fmt.Errorf("%w: %s", ErrQuotaExhausted, apiErr.Message)
		}
		if apiErr.HTTPStatusCode == 429 {
			return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
		}
	}

	return fmt.Errorf("assist: AI request failed: %w", err)
}

// isQuotaCode checks the loosely-typed APIError code for the quota marker.
func isQuotaCode(code any) bool {
	s, ok := code.(string)
	return ok && s == "insufficient_quota"
}
