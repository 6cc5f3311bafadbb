// Package assist drives the AI collaborators.
//
// diagnose.go implements the Diagnoser organism: per-page vision calls that
// suggest a short diagnosis string for a selected page, written into the
// session's diagnosis annotations. It composes:
//   - vision.PreparePageDataURL: bounded page-bitmap data URLs
//   - chat.go: CompletionClient seam over the OpenAI client
//   - session.Session: diagnosis annotation owner
//   - core.CancelToken: cooperative cancellation between pages
package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"meddoc_backend/core"
	"meddoc_backend/logging"
	"meddoc_backend/session"
	"meddoc_backend/vision"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// PageImageSource yields a rendered page bitmap for a stored document.
// vision.PageImager is the production implementation.
type PageImageSource interface {
	RenderPage(ctx context.Context, blobKey string, pageNumber int) ([]byte, error)
}

// DiagnoseConfig holds configuration for diagnosis suggestions.
type DiagnoseConfig struct {
	// Model is a vision-capable model identifier
	Model string

	// PageTimeout bounds each page's vision call
	PageTimeout time.Duration

	// MaxTextChars bounds the extracted page text sent alongside the image
	MaxTextChars int

	// MaxTokens caps the reply; diagnoses are short strings
	MaxTokens int
}

// DefaultDiagnoseConfig returns sensible defaults for diagnosis suggestions.
func DefaultDiagnoseConfig() DiagnoseConfig {
	return DiagnoseConfig{
		Model:        openai.GPT4o,
		PageTimeout:  45 * time.Second,
		MaxTextChars: 4000,
		MaxTokens:    120,
	}
}

// DiagnoseResult summarizes a multi-page diagnosis run.
type DiagnoseResult struct {
	// PagesDiagnosed is how many pages received a suggestion
	PagesDiagnosed int

	// FailedPages counts per-page failures; the loop continues past them
	FailedPages int

	// Cancelled is true if the run stopped early at a cancellation check
	Cancelled bool
}

// Diagnoser suggests per-page diagnoses from page images and text.
//
// Thread-Safety:
//   - Diagnoser is safe for concurrent use
type Diagnoser struct {
	client CompletionClient
	images PageImageSource
	config DiagnoseConfig
	logger *logging.Logger
}

// NewDiagnoser creates a Diagnoser. The client must target a vision-capable
// model (use ClientFactory.CreateVisionClient).
func NewDiagnoser(client CompletionClient, images PageImageSource, logger *logging.Logger, config DiagnoseConfig) (*Diagnoser, error) {
	if client == nil {
		return nil, errors.New("assist: completion client cannot be nil")
	}
	if images == nil {
		return nil, errors.New("assist: page image source cannot be nil")
	}

	return &Diagnoser{
		client: client,
		images: images,
		config: config,
		logger: logger.Named("diagnoser"),
	}, nil
}

const diagnoseSystemPrompt = `You are shown one page of a medical record, ` +
	`with its extracted text when available. Reply with a short diagnosis or ` +
	`clinical-finding phrase for the page (a few words, no sentences). If the ` +
	`page shows no diagnosable content, reply exactly: none`

// DiagnosePage runs one page through the vision model and writes the
// suggestion into the session's diagnosis map. A "none" reply clears
// nothing and writes nothing.
func (d *Diagnoser) DiagnosePage(ctx context.Context, sess *session.Session, key session.Key) error {
	docs := sess.Documents()
	if key.Document < 0 || key.Document >= len(docs) {
		return fmt.Errorf("assist: document index %d out of range", key.Document)
	}
	doc := docs[key.Document]

	log := d.logger.With(logging.PageFields(doc.Index, doc.Name, key.Page)...)

	pageCtx := ctx
	if d.config.PageTimeout > 0 {
		var cancel context.CancelFunc
		pageCtx, cancel = context.WithTimeout(ctx, d.config.PageTimeout)
		defer cancel()
	}

	dataURL, err := d.pageDataURL(pageCtx, doc.BlobKey, key.Page)
	if err != nil {
		return err
	}

	userText := fmt.Sprintf("Document: %s, page %d.", doc.Name, key.Page)
	if text := pageTextFor(sess, key); text != "" {
		userText += "\n\nExtracted text:\n" + TruncateText(text, d.config.MaxTextChars)
	}

	resp, err := d.client.CreateChatCompletion(pageCtx, openai.ChatCompletionRequest{
		Model:     d.config.Model,
		MaxTokens: d.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: RoleSystem, Content: diagnoseSystemPrompt},
			{
				Role: RoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: userText},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return ClassifyAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return ErrEmptyCompletion
	}

	suggestion := normalizeDiagnosis(resp.Choices[0].Message.Content)
	if suggestion == "" {
		log.Debug("no diagnosable content on page")
		return nil
	}

	if err := sess.SetDiagnosis(key, suggestion); err != nil {
		return err
	}
	log.Info("diagnosis suggested", zap.String("diagnosis", suggestion))
	return nil
}

// DiagnoseSelected walks the selected pages in order and suggests a
// diagnosis for each one that has none yet. The token is checked between
// pages; per-page failures are tallied and the loop continues.
func (d *Diagnoser) DiagnoseSelected(ctx context.Context, sess *session.Session, token *core.CancelToken) (*DiagnoseResult, error) {
	result := &DiagnoseResult{}
	keys := sess.SelectedKeys()
	d.logger.Info("starting diagnosis run", zap.Int("selected_pages", len(keys)))

	for _, key := range keys {
		select {
		case <-ctx.Done():
			result.Cancelled = true
			return result, ctx.Err()
		default:
		}
		if token.Cancelled() {
			d.logger.Info("diagnosis run cancelled", zap.Int("pages_diagnosed", result.PagesDiagnosed))
			result.Cancelled = true
			return result, nil
		}

		if _, ok := sess.Diagnosis(key); ok {
			// Manual annotations are never overwritten by a bulk run.
			continue
		}

		if err := d.DiagnosePage(ctx, sess, key); err != nil {
			result.FailedPages++
			d.logger.Warn("page diagnosis failed, continuing",
				zap.String("key", key.String()),
				zap.Error(err))
			continue
		}
		if _, ok := sess.Diagnosis(key); ok {
			result.PagesDiagnosed++
		}
	}

	d.logger.Info("diagnosis run completed",
		zap.Int("pages_diagnosed", result.PagesDiagnosed),
		zap.Int("failed_pages", result.FailedPages))
	return result, nil
}

// pageDataURL renders and encodes one page for the vision request.
func (d *Diagnoser) pageDataURL(ctx context.Context, blobKey string, pageNumber int) (string, error) {
	imageData, err := d.images.RenderPage(ctx, blobKey, pageNumber)
	if err != nil {
		return "", fmt.Errorf("assist: render page %d: %w", pageNumber, err)
	}
	return vision.DataURL(imageData), nil
}

// pageTextFor finds the text record for one page, empty if none resolved.
func pageTextFor(sess *session.Session, key session.Key) string {
	for _, page := range sess.PageTexts() {
		if page.DocumentIndex == key.Document && page.PageNumber == key.Page {
			return page.Text
		}
	}
	return ""
}

// normalizeDiagnosis trims a model reply down to the bare suggestion,
// treating the "none" sentinel as empty.
func normalizeDiagnosis(content string) string {
	s := TruncateText(strings.TrimSpace(content), 200)
	if strings.EqualFold(s, "none") || strings.EqualFold(s, "none.") {
		return ""
	}
	return s
}
