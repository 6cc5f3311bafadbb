package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"meddoc_backend/blobstore"
	"meddoc_backend/core"
	"meddoc_backend/logging"
	"meddoc_backend/metrics"
	"meddoc_backend/vision"
)

func TestBuildAssistants_DisabledWithoutKey(t *testing.T) {
	logger := logging.NewNop()
	config := &core.Config{StorageURL: "http://storage.local"}
	httpClient := core.GetDefaultHTTPClient()

	imager, err := vision.NewPageImager(httpClient, logger, vision.DefaultPageImagerConfig(config.StorageURL))
	if err != nil {
		t.Fatalf("NewPageImager() error: %v", err)
	}

	chatter, scanner, diagnoser, err := buildAssistants(config, httpClient, imager, logger)
	if err != nil {
		t.Fatalf("buildAssistants() error: %v", err)
	}
	if chatter != nil || scanner != nil || diagnoser != nil {
		t.Error("expected all assistants to be nil without an OpenAI key")
	}
}

func TestBuildAssistants_EnabledWithKey(t *testing.T) {
	logger := logging.NewNop()
	config := &core.Config{
		StorageURL:   "http://storage.local",
		OpenAIAPIKey: "sk-test",
		BaseLLMURL:   "https://api.openai.com/v1",
		ChatModel:    "gpt-4o",
	}
	httpClient := core.GetDefaultHTTPClient()

	imager, err := vision.NewPageImager(httpClient, logger, vision.DefaultPageImagerConfig(config.StorageURL))
	if err != nil {
		t.Fatalf("NewPageImager() error: %v", err)
	}

	chatter, scanner, diagnoser, err := buildAssistants(config, httpClient, imager, logger)
	if err != nil {
		t.Fatalf("buildAssistants() error: %v", err)
	}
	if chatter == nil {
		t.Error("expected chatter to be built")
	}
	if scanner == nil {
		t.Error("expected scanner to be built")
	}
	if diagnoser == nil {
		t.Error("expected diagnoser to be built")
	}
}

func TestBuildOCRProcessor_DisabledWithoutKey(t *testing.T) {
	logger := logging.NewNop()
	config := &core.Config{StorageURL: "http://storage.local"}
	httpClient := core.GetDefaultHTTPClient()

	imager, err := vision.NewPageImager(httpClient, logger, vision.DefaultPageImagerConfig(config.StorageURL))
	if err != nil {
		t.Fatalf("NewPageImager() error: %v", err)
	}

	proc, err := buildOCRProcessor(config, httpClient, imager, logger)
	if err != nil {
		t.Fatalf("buildOCRProcessor() error: %v", err)
	}
	if proc != nil {
		t.Error("expected nil OCR processor without a Vision key")
	}
}

func TestBuildOCRProcessor_EnabledWithKey(t *testing.T) {
	logger := logging.NewNop()
	config := &core.Config{
		StorageURL:      "http://storage.local",
		GoogleVisionKey: "vision-key",
	}
	httpClient := core.GetDefaultHTTPClient()

	imager, err := vision.NewPageImager(httpClient, logger, vision.DefaultPageImagerConfig(config.StorageURL))
	if err != nil {
		t.Fatalf("NewPageImager() error: %v", err)
	}

	proc, err := buildOCRProcessor(config, httpClient, imager, logger)
	if err != nil {
		t.Fatalf("buildOCRProcessor() error: %v", err)
	}
	if proc == nil {
		t.Error("expected OCR processor to be built with a Vision key")
	}
}

func TestPollStorageStatus_RecordsHealthCheck(t *testing.T) {
	logger := logging.NewNop()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	blobs, err := blobstore.NewClient(server.Client(), logger, blobstore.Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
	})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	collector := metrics.NewMetricsStore(metrics.DefaultStoreConfig(), time.Now())

	// The immediate check fires before the first ticker interval
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pollStorageStatus(ctx, blobs, collector, logger)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if collector.GetStorageStatus().Connected {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	status := collector.GetStorageStatus()
	if !status.Connected {
		t.Error("expected storage status to be connected")
	}
	if status.LastCheck.IsZero() {
		t.Error("expected LastCheck to be recorded")
	}
	if status.LastError != "" {
		t.Errorf("expected no error, got %q", status.LastError)
	}
}

func TestPollStorageStatus_RecordsFailure(t *testing.T) {
	logger := logging.NewNop()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	blobs, err := blobstore.NewClient(server.Client(), logger, blobstore.Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
	})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	collector := metrics.NewMetricsStore(metrics.DefaultStoreConfig(), time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pollStorageStatus(ctx, blobs, collector, logger)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !collector.GetStorageStatus().LastCheck.IsZero() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	status := collector.GetStorageStatus()
	if status.Connected {
		t.Error("expected storage status to be disconnected")
	}
	if status.LastError == "" {
		t.Error("expected LastError to be recorded")
	}
}
