// Package assist drives the AI collaborators.
//
// chat.go implements the Chatter molecule: building the role-tagged message
// list (optionally prefixed with document context) and parsing the assistant
// reply out of the completion.
package assist

import (
	"context"
	"strings"

	"meddoc_backend/logging"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Role values for chat messages.
const (
	RoleSystem    = openai.ChatMessageRoleSystem
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

// Message is one turn of a conversation, role-tagged.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatConfig holds configuration for chat completions.
type ChatConfig struct {
	// Model is the model identifier passed to the provider
	Model string

	// MaxTokens caps the completion length (0 = provider default)
	MaxTokens int

	// Temperature for sampling
	Temperature float32

	// MaxContextChars bounds the document context included per request
	MaxContextChars int
}

// DefaultChatConfig returns sensible defaults for chat completions.
func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		Model:           openai.GPT4o,
		MaxTokens:       1024,
		Temperature:     0.2,
		MaxContextChars: 12000,
	}
}

// CompletionClient is the slice of the OpenAI client the assist organisms
// need. *openai.Client satisfies it; tests substitute a canned-reply fake.
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Chatter runs chat turns against an OpenAI-compatible provider.
//
// Thread-Safety:
//   - Chatter is safe for concurrent use
type Chatter struct {
	client CompletionClient
	config ChatConfig
	logger *logging.Logger
}

// NewChatter creates a Chatter on top of an OpenAI-compatible client
// (use ClientFactory.CreateChatClient).
func NewChatter(client CompletionClient, logger *logging.Logger, config ChatConfig) *Chatter {
	return &Chatter{
		client: client,
		config: config,
		logger: logger.Named("chatter"),
	}
}

// systemPrompt frames the assistant for medical-record triage conversations.
const systemPrompt = `You are assisting with review of medical record documents. ` +
	`Answer questions about the provided document excerpts concisely and only ` +
	`from the given material. If the excerpts do not contain the answer, say so.`

// BuildMessages assembles the completion request messages: a system frame,
// an optional document-context preamble, then the conversation turns in
// order. Context beyond the configured bound is truncated at a paragraph
// boundary rather than mid-sentence.
//
// This is a pure function on the Chatter's config.
func (c *Chatter) BuildMessages(history []Message, docContext string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    RoleSystem,
		Content: systemPrompt,
	})

	if docContext != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    RoleSystem,
			Content: "Document excerpts:\n\n" + c.boundContext(docContext),
		})
	}

	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	return messages
}

// boundContext trims document context to MaxContextChars, cutting at
// paragraph boundaries.
func (c *Chatter) boundContext(docContext string) string {
	limit := c.config.MaxContextChars
	if limit <= 0 || len(docContext) <= limit {
		return docContext
	}

	var out strings.Builder
	for _, chunk := range SplitIntoChunks(docContext, limit) {
		if out.Len()+len(chunk) > limit {
			break
		}
		out.WriteString(chunk)
	}
	if out.Len() == 0 {
		return TruncateText(docContext, limit)
	}
	return strings.TrimRight(out.String(), "\n")
}

// Complete runs one chat turn and returns the assistant's reply text.
// Provider failures are classified before being returned.
func (c *Chatter) Complete(ctx context.Context, history []Message, docContext string) (string, error) {
	correlationID := GenerateCorrelationID()
	log := c.logger.With(
		zap.String("correlation_id", correlationID),
		zap.String("model", c.config.Model),
		zap.Int("history_turns", len(history)),
	)

	req := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    c.BuildMessages(history, docContext),
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	log.Debug("sending chat completion request")
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		classified := ClassifyAPIError(err)
		log.Warn("chat completion failed", zap.Error(classified))
		return "", classified
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	log.Debug("chat completion received", zap.Int("content_length", len(content)))
	return content, nil
}
