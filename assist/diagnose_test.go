package assist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"meddoc_backend/core"
	"meddoc_backend/logging"
	"meddoc_backend/session"

	openai "github.com/sashabaranov/go-openai"
)

// fakeImageSource returns a fixed bitmap for every page.
type fakeImageSource struct {
	err   error
	calls int
}

func (f *fakeImageSource) RenderPage(ctx context.Context, blobKey string, pageNumber int) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte{0x89, 0x50, 0x4E, 0x47}, nil
}

func newTestDiagnoser(t *testing.T, client CompletionClient, images PageImageSource) *Diagnoser {
	t.Helper()
	d, err := NewDiagnoser(client, images, logging.NewNop(), DefaultDiagnoseConfig())
	if err != nil {
		t.Fatalf("NewDiagnoser() error: %v", err)
	}
	return d
}

func TestNewDiagnoserValidation(t *testing.T) {
	if _, err := NewDiagnoser(nil, &fakeImageSource{}, logging.NewNop(), DefaultDiagnoseConfig()); err == nil {
		t.Error("nil client should return error")
	}
	if _, err := NewDiagnoser(&fakeCompleter{}, nil, logging.NewNop(), DefaultDiagnoseConfig()); err == nil {
		t.Error("nil image source should return error")
	}
}

func TestDiagnosePage(t *testing.T) {
	sess := scanSession(t, []string{"pathology report: carcinoma in situ"})
	key := session.Key{Document: 0, Page: 1}

	fake := &fakeCompleter{replies: []string{"carcinoma in situ"}}
	d := newTestDiagnoser(t, fake, &fakeImageSource{})

	if err := d.DiagnosePage(context.Background(), sess, key); err != nil {
		t.Fatalf("DiagnosePage() unexpected error: %v", err)
	}

	diagnosis, ok := sess.Diagnosis(key)
	if !ok || diagnosis != "carcinoma in situ" {
		t.Errorf("diagnosis = %q (present %v), want suggestion stored", diagnosis, ok)
	}

	// The request must carry both the image part and the page text
	req := fake.requests[0]
	userMsg := req.Messages[len(req.Messages)-1]
	if len(userMsg.MultiContent) != 2 {
		t.Fatalf("user message has %d parts, want text + image", len(userMsg.MultiContent))
	}
	if userMsg.MultiContent[0].Type != openai.ChatMessagePartTypeText ||
		!strings.Contains(userMsg.MultiContent[0].Text, "pathology report") {
		t.Errorf("text part = %+v, want extracted page text", userMsg.MultiContent[0])
	}
	if userMsg.MultiContent[1].Type != openai.ChatMessagePartTypeImageURL ||
		!strings.HasPrefix(userMsg.MultiContent[1].ImageURL.URL, "data:image/png;base64,") {
		t.Errorf("image part = %+v, want PNG data URL", userMsg.MultiContent[1])
	}
}

func TestDiagnosePageNoneReply(t *testing.T) {
	sess := scanSession(t, []string{"blank page"})
	key := session.Key{Document: 0, Page: 1}

	d := newTestDiagnoser(t, &fakeCompleter{replies: []string{"none"}}, &fakeImageSource{})
	if err := d.DiagnosePage(context.Background(), sess, key); err != nil {
		t.Fatalf("DiagnosePage() unexpected error: %v", err)
	}

	if _, ok := sess.Diagnosis(key); ok {
		t.Error("a 'none' reply should not write a diagnosis")
	}
}

func TestDiagnosePageInvalidDocument(t *testing.T) {
	sess := scanSession(t, []string{"text"})
	d := newTestDiagnoser(t, &fakeCompleter{}, &fakeImageSource{})

	if err := d.DiagnosePage(context.Background(), sess, session.Key{Document: 5, Page: 1}); err == nil {
		t.Error("out-of-range document should return error")
	}
}

func TestDiagnosePageRenderFailure(t *testing.T) {
	sess := scanSession(t, []string{"text"})
	d := newTestDiagnoser(t, &fakeCompleter{}, &fakeImageSource{err: errors.New("render service down")})

	err := d.DiagnosePage(context.Background(), sess, session.Key{Document: 0, Page: 1})
	if err == nil {
		t.Error("render failure should return error")
	}
}

func TestDiagnoseSelected(t *testing.T) {
	sess := scanSession(t, []string{"page one findings", "page two findings", "page three findings"})
	for page := 1; page <= 3; page++ {
		if err := sess.ToggleSelection(session.Key{Document: 0, Page: page}); err != nil {
			t.Fatalf("ToggleSelection: %v", err)
		}
	}
	// Page 2 already has a manual annotation which must survive
	if err := sess.SetDiagnosis(session.Key{Document: 0, Page: 2}, "manual entry"); err != nil {
		t.Fatalf("SetDiagnosis: %v", err)
	}

	fake := &fakeCompleter{replies: []string{"finding A", "finding C"}}
	d := newTestDiagnoser(t, fake, &fakeImageSource{})

	result, err := d.DiagnoseSelected(context.Background(), sess, core.NewCancelToken())
	if err != nil {
		t.Fatalf("DiagnoseSelected() unexpected error: %v", err)
	}

	if result.PagesDiagnosed != 2 {
		t.Errorf("PagesDiagnosed = %d, want 2: annotated page skipped", result.PagesDiagnosed)
	}
	if got, _ := sess.Diagnosis(session.Key{Document: 0, Page: 2}); got != "manual entry" {
		t.Errorf("manual annotation overwritten with %q", got)
	}
	if got, _ := sess.Diagnosis(session.Key{Document: 0, Page: 1}); got != "finding A" {
		t.Errorf("page 1 diagnosis = %q, want finding A", got)
	}
	if got, _ := sess.Diagnosis(session.Key{Document: 0, Page: 3}); got != "finding C" {
		t.Errorf("page 3 diagnosis = %q, want finding C", got)
	}
}

func TestDiagnoseSelectedFailureTally(t *testing.T) {
	sess := scanSession(t, []string{"page one", "page two"})
	for page := 1; page <= 2; page++ {
		if err := sess.ToggleSelection(session.Key{Document: 0, Page: page}); err != nil {
			t.Fatalf("ToggleSelection: %v", err)
		}
	}

	fake := &fakeCompleter{
		replies: []string{"", "finding B"},
		errs:    []error{&openai.APIError{HTTPStatusCode: 500, Message: "boom"}, nil},
	}
	d := newTestDiagnoser(t, fake, &fakeImageSource{})

	result, err := d.DiagnoseSelected(context.Background(), sess, core.NewCancelToken())
	if err != nil {
		t.Fatalf("DiagnoseSelected() unexpected error: %v", err)
	}
	if result.FailedPages != 1 {
		t.Errorf("FailedPages = %d, want 1", result.FailedPages)
	}
	if result.PagesDiagnosed != 1 {
		t.Errorf("PagesDiagnosed = %d, want 1", result.PagesDiagnosed)
	}
}

func TestDiagnoseSelectedCancellation(t *testing.T) {
	sess := scanSession(t, []string{"one", "two", "three", "four"})
	for page := 1; page <= 4; page++ {
		if err := sess.ToggleSelection(session.Key{Document: 0, Page: page}); err != nil {
			t.Fatalf("ToggleSelection: %v", err)
		}
	}

	token := core.NewCancelToken()
	client := &cancellingCompleter{
		inner:       &fakeCompleter{replies: []string{"d1", "d2", "d3", "d4"}},
		cancelAfter: 2,
		token:       token,
	}
	d := newTestDiagnoser(t, client, &fakeImageSource{})

	result, err := d.DiagnoseSelected(context.Background(), sess, token)
	if err != nil {
		t.Fatalf("DiagnoseSelected() unexpected error: %v", err)
	}
	if !result.Cancelled {
		t.Error("Cancelled = false after token cancellation")
	}
	if result.PagesDiagnosed != 2 {
		t.Errorf("PagesDiagnosed = %d, want 2 committed before the stop", result.PagesDiagnosed)
	}
}
