package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"meddoc_backend/assist"
	"meddoc_backend/blobstore"
	"meddoc_backend/core"
	"meddoc_backend/core/validation"
	"meddoc_backend/export"
	"meddoc_backend/logging"
	"meddoc_backend/metrics"
	"meddoc_backend/ocrprocessor"
	"meddoc_backend/pdfprocessor"
	"meddoc_backend/search"
	"meddoc_backend/shutdown"
	"meddoc_backend/store"
	"meddoc_backend/vision"
	"meddoc_backend/webui"
	"meddoc_backend/webui/auth"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const appVersion = "1.0.0"

func main() {
	// Service management commands (install/start/stop/...) short-circuit
	if HandleServiceCommand(os.Args) {
		return
	}

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Use fmt here since logger isn't initialized yet
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	// Determine if running in development mode
	isDevelopment := os.Getenv("DEV_MODE") == "true"

	// Initialize structured logger early
	logger, err := logging.NewLogger(isDevelopment, "meddoc.log")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(core.ExitCodeError)
	}

	code := run(logger, isDevelopment)

	if syncErr := logger.Sync(); syncErr != nil {
		fmt.Printf("Failed to sync logger: %v\n", syncErr)
	}
	os.Exit(code)
}

// run wires the whole backend together and blocks until shutdown.
// It returns the process exit code.
func run(logger *logging.Logger, isDevelopment bool) int {
	startTime := time.Now()

	// Run startup validation before heavy operations
	if code := runStartupValidation(logger, isDevelopment); code != core.ExitCodeSuccess {
		return code
	}

	// Load configuration (safe to call after validation passes)
	config, err := core.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", zap.Error(err))
		return core.ExitCodeError
	}

	logger.Info("Configuration loaded",
		zap.String("storage_url", config.StorageURL),
		zap.Bool("openai_enabled", config.HasOpenAI()),
		zap.Bool("vision_ocr_enabled", config.HasVisionOCR()),
		zap.Float64("fuzzy_threshold", config.FuzzyThreshold),
		zap.String("profiles_path", config.ProfilesPath),
		zap.String("port", config.Port),
		zap.Duration("ai_timeout", config.AITimeout),
		zap.Duration("page_timeout", config.PageTimeout),
		zap.String("data_dir", config.DataDir),
		zap.String("db_path", config.DBPath),
		zap.Bool("allow_self_signed_certs", config.AllowSelfSignedCerts),
		zap.Bool("dev_mode", isDevelopment),
	)

	if err := os.MkdirAll(config.DataDir, 0755); err != nil {
		logger.Error("Failed to create data directory", zap.Error(err))
		return core.ExitCodeError
	}

	manager := shutdown.NewManager(logger)
	manager.Register("logger", 5, func(ctx context.Context) error {
		return logger.Sync()
	})

	// Database: apply pending migrations, then open the long-lived handle
	migrationsPath := core.GetEnvOrDefault("MIGRATIONS_PATH", "file://store/migrations")
	if err := store.MigrateUpFromPath(config.DBPath, migrationsPath); err != nil {
		logger.Error("Failed to apply database migrations", zap.Error(err))
		return core.ExitCodeError
	}

	db, err := store.NewDatabase(config.DBPath)
	if err != nil {
		logger.Error("Failed to open database", zap.Error(err))
		return core.ExitCodeError
	}
	manager.Register("database", 30, func(ctx context.Context) error {
		return db.Close()
	})

	// Repository with async writes for hot-path history inserts
	repo := store.NewRepository(db, nil)
	asyncWriter := store.NewAsyncWriter(repo.CreateAsyncWriteHandler())
	asyncWriter.Start()
	repo = store.NewRepository(db, asyncWriter)
	manager.Register("async-writer", 25, func(ctx context.Context) error {
		asyncWriter.StopWithTimeout(5 * time.Second)
		return nil
	})

	httpClient := core.GetHTTPClient(config, 30*time.Second)

	blobs, err := blobstore.NewClient(httpClient, logger, blobstore.Config{
		BaseURL: config.StorageURL,
		APIKey:  config.StorageAPIKey,
	})
	if err != nil {
		logger.Error("Failed to create blob storage client", zap.Error(err))
		return core.ExitCodeError
	}

	engine := search.NewEngine(search.Config{FuzzyThreshold: config.FuzzyThreshold}, logger)
	pdfProc := pdfprocessor.NewProcessor(pdfprocessor.NewDefaultExtractor(), logger)
	exporter := export.NewExporter(logger)
	collector := metrics.NewMetricsStore(metrics.DefaultStoreConfig(), startTime)

	broadcaster := webui.NewWebSocketBroadcaster()
	manager.Register("websocket-hub", 10, func(ctx context.Context) error {
		broadcaster.Close()
		return nil
	})

	// Page images come from the storage service's render endpoint; both
	// OCR and AI diagnosis consume them
	imager, err := vision.NewPageImager(httpClient, logger, vision.DefaultPageImagerConfig(config.StorageURL))
	if err != nil {
		logger.Error("Failed to create page imager", zap.Error(err))
		return core.ExitCodeError
	}

	ocrProc, err := buildOCRProcessor(config, httpClient, imager, logger)
	if err != nil {
		logger.Error("Failed to create OCR processor", zap.Error(err))
		return core.ExitCodeError
	}

	chatter, scanner, diagnoser, err := buildAssistants(config, httpClient, imager, logger)
	if err != nil {
		logger.Error("Failed to create AI assistants", zap.Error(err))
		return core.ExitCodeError
	}

	apiConfig := webui.DefaultTriageAPIConfig()
	apiConfig.MaxUploadBytes = config.MaxFileSize
	apiConfig.ProfilesPath = config.ProfilesPath
	apiConfig.UploadDir = filepath.Join(config.DataDir, "uploads")
	apiConfig.VersionInfo = webui.VersionInfo{Version: appVersion}

	if err := os.MkdirAll(apiConfig.UploadDir, 0755); err != nil {
		logger.Error("Failed to create upload directory", zap.Error(err))
		return core.ExitCodeError
	}
	manager.Register("cleanup-uploads", 45, shutdown.CleanupStagedUploads(logger, apiConfig.UploadDir))

	triageAPI, err := webui.NewTriageAPI(webui.TriageDeps{
		Repo:        repo,
		Blobs:       blobs,
		Engine:      engine,
		PDF:         pdfProc,
		OCR:         ocrProc,
		Chatter:     chatter,
		Scanner:     scanner,
		Diagnoser:   diagnoser,
		Exporter:    exporter,
		Collector:   collector,
		Broadcaster: broadcaster,
		Logger:      logger,
	}, apiConfig)
	if err != nil {
		logger.Error("Failed to create triage API", zap.Error(err))
		return core.ExitCodeError
	}

	authMw, err := auth.NewAuthMiddleware(config.WebUIPassword, logger.Zap())
	if err != nil {
		logger.Error("Failed to create auth middleware", zap.Error(err))
		return core.ExitCodeError
	}

	serverConfig := webui.DefaultServerConfig()
	serverConfig.Host = core.GetEnvOrDefault("HOST", "localhost")
	serverConfig.VersionInfo = apiConfig.VersionInfo
	if port, convErr := strconv.Atoi(config.Port); convErr == nil {
		serverConfig.Port = port
	}

	server, err := webui.NewServer(serverConfig, triageAPI, authMw, logger)
	if err != nil {
		logger.Error("Failed to create web server", zap.Error(err))
		return core.ExitCodeError
	}
	manager.Register("http-server", 15, func(ctx context.Context) error {
		return server.Shutdown(ctx)
	})

	// Background storage health checks feed the status endpoint
	go pollStorageStatus(manager.Context(), blobs, collector, logger)

	manager.Start()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(manager.Context())
	}()

	logger.Info("Document triage backend running",
		zap.String("addr", server.Addr()),
		zap.String("version", appVersion),
	)

	exitCode := core.ExitCodeSuccess
	select {
	case <-manager.Context().Done():
		// Signal received, fall through to shutdown
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
			exitCode = core.ExitCodeError
		}
	}

	if err := manager.Shutdown(); err != nil {
		logger.Error("Shutdown completed with errors", zap.Error(err))
		if exitCode == core.ExitCodeSuccess {
			exitCode = core.ExitCodeError
		}
	}

	return exitCode
}

// buildOCRProcessor wires the Google Vision OCR pipeline when a key is
// configured. Without one, OCR endpoints answer 503 and documents keep
// their embedded text layer.
func buildOCRProcessor(config *core.Config, httpClient *http.Client, imager *vision.PageImager, logger *logging.Logger) (*ocrprocessor.Processor, error) {
	if !config.HasVisionOCR() {
		logger.Info("Google Vision key not configured, OCR disabled")
		return nil, nil
	}

	visionClient, err := ocrprocessor.NewVisionClient(
		config.GoogleVisionKey, httpClient, logger, ocrprocessor.DefaultVisionClientConfig())
	if err != nil {
		return nil, err
	}

	return ocrprocessor.NewProcessor(visionClient, imager, logger, ocrprocessor.DefaultProcessorConfig())
}

// buildAssistants wires the chat, scan and diagnosis helpers when an
// OpenAI-compatible key is configured. Without one, those endpoints
// answer 503 and the rest of the backend works normally.
func buildAssistants(config *core.Config, httpClient *http.Client, imager *vision.PageImager, logger *logging.Logger) (*assist.Chatter, *assist.AutoScanner, *assist.Diagnoser, error) {
	if !config.HasOpenAI() {
		logger.Info("OpenAI key not configured, AI assistance disabled")
		return nil, nil, nil, nil
	}

	factory := assist.NewClientFactory()
	chatClient := factory.CreateChatClient(config.OpenAIAPIKey, config.ChatLLMURL, config.BaseLLMURL, httpClient)

	chatCfg := assist.DefaultChatConfig()
	chatCfg.Model = config.ChatModel
	chatter := assist.NewChatter(chatClient, logger, chatCfg)

	scanCfg := assist.DefaultScanConfig()
	scanCfg.Model = config.ScanModel
	scanCfg.PageTimeout = config.PageTimeout
	scanner := assist.NewAutoScanner(chatClient, logger, scanCfg)

	visionClient := factory.CreateVisionClient(config.OpenAIAPIKey, config.VisionLLMURL, httpClient)
	diagCfg := assist.DefaultDiagnoseConfig()
	diagCfg.Model = config.DiagnoseModel
	diagCfg.PageTimeout = config.PageTimeout
	diagnoser, err := assist.NewDiagnoser(visionClient, imager, logger, diagCfg)
	if err != nil {
		return nil, nil, nil, err
	}

	return chatter, scanner, diagnoser, nil
}

// pollStorageStatus pings the blob storage service on an interval and
// records the result for the status endpoint.
func pollStorageStatus(ctx context.Context, blobs *blobstore.Client, collector metrics.MetricsCollector, logger *logging.Logger) {
	const interval = 30 * time.Second

	check := func() {
		checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		start := time.Now()
		err := blobs.Ping(checkCtx)

		status := metrics.StorageStatus{
			Connected: err == nil,
			LastCheck: time.Now(),
			Latency:   time.Since(start),
		}
		if err != nil {
			status.LastError = err.Error()
			logger.Warn("Storage health check failed", zap.Error(err))
		}
		collector.UpdateStorageStatus(status)
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}

// runStartupValidation performs comprehensive startup validation.
//
// Returns the appropriate exit code:
//   - ExitCodeSuccess (0) if all validations pass
//   - ExitCodeError (1) if any validation fails
func runStartupValidation(logger *logging.Logger, isDevelopment bool) int {
	logger.Info("Starting startup validation...")

	allowSelfSigned := os.Getenv("ALLOW_SELF_SIGNED_CERTS") == "true"

	suite := validation.NewValidationSuite().
		WithAllowSelfSignedCerts(allowSelfSigned).
		WithDataDir(os.Getenv("DATA_DIR")).
		WithShowProgress(true)

	result := suite.Validate()

	if !result.Success {
		logger.Error("Configuration validation failed",
			zap.Int("passed", result.PassedSteps),
			zap.Int("failed", result.FailedSteps),
			zap.Duration("duration", result.Duration),
		)

		// Log individual failures for debugging
		for _, step := range result.Steps {
			if step.Status == validation.StepFailed {
				logger.Error("Validation step failed",
					zap.String("step", step.Name),
					zap.String("message", step.Message),
					zap.Error(step.Error),
				)
			}
		}

		return core.ExitCodeError
	}

	logger.Info("Startup validation complete",
		zap.Int("checks_passed", result.PassedSteps),
		zap.Int("warnings", result.Warnings),
		zap.Duration("duration", result.Duration),
	)

	return core.ExitCodeSuccess
}
