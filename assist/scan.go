// Package assist drives the AI collaborators.
//
// scan.go implements the AutoScanner organism: the multi-page loop that asks
// a model which search terms appear on each page and merges the suggestions
// into the session as AI-provenance matches. It composes:
//   - chat.go: completionClient seam over the OpenAI client
//   - text.go: JSON extraction atoms
//   - session.Session: match-record and selection owner
//   - core.CancelToken: cooperative cancellation between pages
package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"meddoc_backend/core"
	"meddoc_backend/logging"
	"meddoc_backend/search"
	"meddoc_backend/session"

	openai "github.com/sashabaranov/go-openai"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
)

// scanReplySchema validates the shape of the model's per-page reply before
// anything is merged into the session. Models drift; a malformed reply is a
// page failure, not a crash or a garbage match record.
var scanReplySchema = jsonschema.MustCompileString("scan-reply.json", `{
	"type": "object",
	"required": ["matches"],
	"properties": {
		"matches": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["term", "occurrences"],
				"properties": {
					"term": {"type": "string", "minLength": 1},
					"occurrences": {"type": "integer", "minimum": 1}
				}
			}
		}
	}
}`)

// scanReply is the decoded per-page model reply.
type scanReply struct {
	Matches []struct {
		Term        string `json:"term"`
		Occurrences int    `json:"occurrences"`
	} `json:"matches"`
}

// ScanConfig holds configuration for the auto-scan loop.
type ScanConfig struct {
	// Model is the model identifier passed to the provider
	Model string

	// PageTimeout bounds each page's completion call; a page that exceeds
	// it is a per-page failure, never a hung scan
	PageTimeout time.Duration

	// MaxPageChars bounds how much page text is sent per request
	MaxPageChars int

	// Temperature for sampling; low, the reply must be parseable JSON
	Temperature float32
}

// DefaultScanConfig returns sensible defaults for the auto-scan loop.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Model:        openai.GPT4o,
		PageTimeout:  30 * time.Second,
		MaxPageChars: 8000,
		Temperature:  0.1,
	}
}

// ScanResult summarizes one auto-scan run.
type ScanResult struct {
	// PagesScanned is how many pages were sent to the model
	PagesScanned int

	// MatchesFound is how many match records were merged into the session
	MatchesFound int

	// FailedPages counts pages whose call failed or whose reply did not
	// validate; the loop continues past them
	FailedPages int

	// Cancelled is true if the scan stopped early at a cancellation check;
	// matches collected before the stop stay committed
	Cancelled bool
}

// AutoScanner runs the AI-assisted page scan across every loaded document.
//
// Thread-Safety:
//   - AutoScanner is safe for concurrent use
//   - Results are committed page-by-page under the session lock
type AutoScanner struct {
	client CompletionClient
	config ScanConfig
	logger *logging.Logger
}

// NewAutoScanner creates an AutoScanner on top of an OpenAI-compatible
// client (use ClientFactory.CreateChatClient).
func NewAutoScanner(client CompletionClient, logger *logging.Logger, config ScanConfig) *AutoScanner {
	return &AutoScanner{
		client: client,
		config: config,
		logger: logger.Named("auto-scanner"),
	}
}

const scanSystemPrompt = `You review one page of a medical record at a time. ` +
	`Given the page text and a list of search terms or clinical concepts, reply ` +
	`with JSON only, in the form {"matches": [{"term": "...", "occurrences": N}]}. ` +
	`Include a term only if it or a close clinical equivalent appears on the page; ` +
	`an empty matches array means the page is not relevant. No prose.`

// Scan walks every resolved page of every loaded document in order, asks the
// model which of the given terms appear on the page, and merges the accepted
// suggestions into the session as AI-provenance match records.
//
// The token is checked between pages; cancellation stops after the current
// page, keeping everything merged so far. A failed page (call error, timeout,
// unparseable or invalid reply) is tallied and the loop continues.
func (s *AutoScanner) Scan(ctx context.Context, sess *session.Session, terms []string, token *core.CancelToken) (*ScanResult, error) {
	correlationID := GenerateCorrelationID()
	log := s.logger.With(zap.String("correlation_id", correlationID))

	docs := sess.Documents()
	names := make(map[int]string, len(docs))
	for _, doc := range docs {
		names[doc.Index] = doc.Name
	}

	pages := sess.PageTexts()
	result := &ScanResult{}
	log.Info("starting auto-scan",
		zap.Int("documents", len(docs)),
		zap.Int("pages", len(pages)),
		zap.Strings("terms", terms))

	for _, page := range pages {
		select {
		case <-ctx.Done():
			result.Cancelled = true
			return result, ctx.Err()
		default:
		}
		if token.Cancelled() {
			log.Info("auto-scan cancelled", zap.Int("pages_scanned", result.PagesScanned))
			result.Cancelled = true
			return result, nil
		}

		if page.Text == "" {
			continue
		}

		result.PagesScanned++
		reply, err := s.scanPage(ctx, page.Text, terms)
		if err != nil {
			result.FailedPages++
			log.Warn("page scan failed, continuing",
				zap.Int("document_index", page.DocumentIndex),
				zap.Int("page_number", page.PageNumber),
				zap.Error(err))
			continue
		}

		records := make([]search.MatchRecord, 0, len(reply.Matches))
		for _, m := range reply.Matches {
			records = append(records, search.MatchRecord{
				DocumentIndex: page.DocumentIndex,
				PageNumber:    page.PageNumber,
				Term:          m.Term,
				Occurrences:   m.Occurrences,
				DocumentName:  names[page.DocumentIndex],
			})
		}
		if len(records) > 0 {
			// Commit per page so a later cancellation or failure keeps
			// everything found so far.
			sess.AddMatches(records, session.ProvenanceAI)
			result.MatchesFound += len(records)
		}
	}

	log.Info("auto-scan completed", logging.ScanOutcomeFields(
		result.PagesScanned, result.MatchesFound, result.FailedPages, result.Cancelled)...)

	return result, nil
}

// scanPage runs one page through the model under the per-page timeout and
// validates the reply.
func (s *AutoScanner) scanPage(ctx context.Context, pageText string, terms []string) (*scanReply, error) {
	pageCtx := ctx
	if s.config.PageTimeout > 0 {
		var cancel context.CancelFunc
		pageCtx, cancel = context.WithTimeout(ctx, s.config.PageTimeout)
		defer cancel()
	}

	userPrompt := fmt.Sprintf("Search terms: %s\n\nPage text:\n%s",
		joinTerms(terms), TruncateText(pageText, s.config.MaxPageChars))

	resp, err := s.client.CreateChatCompletion(pageCtx, openai.ChatCompletionRequest{
		Model:       s.config.Model,
		Temperature: s.config.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: RoleSystem, Content: scanSystemPrompt},
			{Role: RoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return nil, ClassifyAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}

	return parseScanReply(resp.Choices[0].Message.Content)
}

// parseScanReply extracts, schema-validates, and decodes a model reply.
// This is a pure function (atom).
func parseScanReply(content string) (*scanReply, error) {
	jsonStr, err := ExtractJSONFromText(content)
	if err != nil {
		return nil, err
	}

	var raw interface{}
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if err := scanReplySchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("assist: scan reply failed validation: %w", err)
	}

	var reply scanReply
	if err := json.Unmarshal([]byte(jsonStr), &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return &reply, nil
}

// joinTerms renders the term list for the prompt.
func joinTerms(terms []string) string {
	out := ""
	for i, term := range terms {
		if i > 0 {
			out += ", "
		}
		out += term
	}
	return out
}
