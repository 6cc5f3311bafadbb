package webui

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"meddoc_backend/logging"
)

// stubAuthProvider implements AuthProvider with pass-through middleware.
type stubAuthProvider struct {
	loginHits  int
	logoutHits int
}

func (s *stubAuthProvider) Middleware(next http.Handler) http.Handler {
	return next
}

func (s *stubAuthProvider) MiddlewareFunc(next http.HandlerFunc) http.HandlerFunc {
	return next
}

func (s *stubAuthProvider) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.loginHits++
		w.WriteHeader(http.StatusOK)
	}
}

func (s *stubAuthProvider) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logoutHits++
		w.WriteHeader(http.StatusOK)
	}
}

func newTestServer(t *testing.T, authProvider AuthProvider) *WebUIServer {
	t.Helper()

	api, _ := newTestAPI(t, []string{"test page"})
	config := DefaultServerConfig()
	config.Port = 0

	server, err := NewServer(config, api, authProvider, logging.NewNop())
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}
	return server
}

func TestNewServer_NilAPI(t *testing.T) {
	_, err := NewServer(DefaultServerConfig(), nil, nil, logging.NewNop())
	if err == nil {
		t.Fatal("expected error for nil triage API")
	}
}

func TestDefaultServerConfig(t *testing.T) {
	config := DefaultServerConfig()

	if config.Port != 3000 {
		t.Errorf("Port = %d, want 3000", config.Port)
	}
	if config.Host != "localhost" {
		t.Errorf("Host = %q, want localhost", config.Host)
	}
	if config.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %v, want 30s", config.ReadTimeout)
	}
	if config.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", config.ShutdownTimeout)
	}
}

func TestServer_HealthEndpoint(t *testing.T) {
	server := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.rootHandler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", w.Code)
	}
	body, _ := io.ReadAll(w.Body)
	if !strings.Contains(string(body), `"status":"ok"`) {
		t.Errorf("health body = %s", body)
	}
}

func TestServer_APIRoutesMounted(t *testing.T) {
	server := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	server.rootHandler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("/api/status status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestServer_RootRedirect(t *testing.T) {
	tests := []struct {
		name     string
		auth     AuthProvider
		wantDest string
	}{
		{"without auth", nil, "/dashboard"},
		{"with auth", &stubAuthProvider{}, "/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, tt.auth)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()
			server.rootHandler().ServeHTTP(w, req)

			if w.Code != http.StatusTemporaryRedirect {
				t.Fatalf("root status = %d, want 307", w.Code)
			}
			if loc := w.Header().Get("Location"); loc != tt.wantDest {
				t.Errorf("Location = %q, want %q", loc, tt.wantDest)
			}
		})
	}
}

func TestServer_AuthRoutes(t *testing.T) {
	auth := &stubAuthProvider{}
	server := newTestServer(t, auth)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	w := httptest.NewRecorder()
	server.rootHandler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("/login status = %d, want 200", w.Code)
	}
	if auth.loginHits != 1 {
		t.Errorf("loginHits = %d, want 1", auth.loginHits)
	}

	req = httptest.NewRequest(http.MethodGet, "/logout", nil)
	w = httptest.NewRecorder()
	server.rootHandler().ServeHTTP(w, req)
	if auth.logoutHits != 1 {
		t.Errorf("logoutHits = %d, want 1", auth.logoutHits)
	}
}

func TestServer_HasAuth(t *testing.T) {
	if newTestServer(t, nil).HasAuth() {
		t.Error("HasAuth() = true without provider")
	}
	if !newTestServer(t, &stubAuthProvider{}).HasAuth() {
		t.Error("HasAuth() = false with provider")
	}
}

func TestServer_ProtectHandlerPassThrough(t *testing.T) {
	server := newTestServer(t, nil)

	called := false
	handler := server.ProtectHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	if !called {
		t.Error("handler not invoked without auth provider")
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	server := newTestServer(t, nil)
	server.httpServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- server.Start(ctx)
	}()

	// Give the listener a moment, then shut down.
	time.Sleep(100 * time.Millisecond)
	if err := server.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Start() did not return after Shutdown")
	}
}

func TestServer_GetBroadcaster(t *testing.T) {
	server := newTestServer(t, nil)

	if server.GetBroadcaster() == nil {
		t.Error("GetBroadcaster() returned nil")
	}
	if server.GetTriageAPI() == nil {
		t.Error("GetTriageAPI() returned nil")
	}
}
