package assist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"meddoc_backend/logging"

	openai "github.com/sashabaranov/go-openai"
)

// fakeCompleter replies with canned completions in call order and records
// the requests it saw.
type fakeCompleter struct {
	replies  []string
	errs     []error
	requests []openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	i := len(f.requests)
	f.requests = append(f.requests, req)
	if i < len(f.errs) && f.errs[i] != nil {
		return openai.ChatCompletionResponse{}, f.errs[i]
	}
	reply := ""
	if i < len(f.replies) {
		reply = f.replies[i]
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: RoleAssistant, Content: reply}},
		},
	}, nil
}

func TestBuildMessages(t *testing.T) {
	chatter := NewChatter(&fakeCompleter{}, logging.NewNop(), DefaultChatConfig())

	history := []Message{
		{Role: RoleUser, Content: "When was the biopsy?"},
		{Role: RoleAssistant, Content: "March 20, 2023."},
		{Role: RoleUser, Content: "And the result?"},
	}

	messages := chatter.BuildMessages(history, "Page 4: biopsy performed 03/20/2023, benign.")

	if len(messages) != 5 {
		t.Fatalf("BuildMessages() produced %d messages, want 5 (system + context + 3 turns)", len(messages))
	}
	if messages[0].Role != RoleSystem {
		t.Errorf("first message role = %q, want system", messages[0].Role)
	}
	if messages[1].Role != RoleSystem || !strings.Contains(messages[1].Content, "biopsy performed") {
		t.Errorf("second message should carry the document context, got %q", messages[1].Content)
	}
	if messages[4].Content != "And the result?" {
		t.Errorf("turn order not preserved, last message = %q", messages[4].Content)
	}
}

func TestBuildMessagesWithoutContext(t *testing.T) {
	chatter := NewChatter(&fakeCompleter{}, logging.NewNop(), DefaultChatConfig())

	messages := chatter.BuildMessages([]Message{{Role: RoleUser, Content: "hi"}}, "")
	if len(messages) != 2 {
		t.Fatalf("BuildMessages() produced %d messages, want 2 (system + turn)", len(messages))
	}
}

func TestBuildMessagesBoundsContext(t *testing.T) {
	config := DefaultChatConfig()
	config.MaxContextChars = 100
	chatter := NewChatter(&fakeCompleter{}, logging.NewNop(), config)

	long := strings.Repeat("paragraph one\n\n", 50)
	messages := chatter.BuildMessages(nil, long)
	if len(messages[1].Content) > 150 {
		t.Errorf("context message length = %d, want bounded near 100", len(messages[1].Content))
	}
}

func TestComplete(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"  The biopsy was benign.  "}}
	chatter := NewChatter(fake, logging.NewNop(), DefaultChatConfig())

	reply, err := chatter.Complete(context.Background(), []Message{{Role: RoleUser, Content: "Result?"}}, "")
	if err != nil {
		t.Fatalf("Complete() unexpected error: %v", err)
	}
	if reply != "The biopsy was benign." {
		t.Errorf("Complete() = %q, want trimmed reply", reply)
	}

	if len(fake.requests) != 1 {
		t.Fatalf("client called %d times, want 1", len(fake.requests))
	}
	if fake.requests[0].Model != DefaultChatConfig().Model {
		t.Errorf("request model = %q, want config model", fake.requests[0].Model)
	}
}

func TestCompleteClassifiesErrors(t *testing.T) {
	fake := &fakeCompleter{errs: []error{&openai.APIError{HTTPStatusCode: 429, Message: "slow down"}}}
	chatter := NewChatter(fake, logging.NewNop(), DefaultChatConfig())

	_, err := chatter.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, "")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("Complete() error = %v, want ErrRateLimited", err)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	empty := &emptyCompleter{}
	chatter := NewChatter(empty, logging.NewNop(), DefaultChatConfig())

	_, err := chatter.Complete(context.Background(), nil, "")
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Errorf("Complete() error = %v, want ErrEmptyCompletion", err)
	}
}

type emptyCompleter struct{}

func (emptyCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{}, nil
}
