package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sevoc/internal/config"
	"sevoc/internal/handler"
	"sevoc/internal/inference"
	"sevoc/internal/logger"
	"sevoc/internal/parser"
	"sevoc/internal/router"
	"sevoc/internal/service"
	"sevoc/internal/stager"
	s3storage "sevoc/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	syncModel(ctx, cfg, zlog)
	checkInference(cfg, zlog)

	// Initialize components
	fileStager, err := stager.NewLocalStager(&cfg.Upload, zlog)
	if err != nil {
		return fmt.Errorf("failed to initialize upload directory: %w", err)
	}
	invoker := inference.NewProcessInvoker(&cfg.Inference, zlog)
	resultParser := parser.NewClassificationParser()

	// Initialize services
	statusSvc := service.NewStatusService(cfg)
	evaluationSvc := service.NewEvaluationService(fileStager, invoker, resultParser, statusSvc, zlog)

	// Initialize handlers
	evaluateH := handler.NewEvaluateHandler(evaluationSvc, cfg.Upload.MaxFileSizeBytes(), zlog).
		WithWriteTimeout(cfg.Server.WriteTimeout)
	healthH := handler.NewHealthHandler(statusSvc)

	// Setup router
	r := router.Setup(cfg, zlog, evaluateH, healthH)

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           r,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		zlog.Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("upload_dir", cfg.Upload.Dir),
			zap.String("model_path", cfg.Model.Path),
			zap.Int64("max_file_size_mb", cfg.Upload.MaxFileSizeMB),
			zap.Strings("allowed_extensions", cfg.Upload.AllowedExtensions))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zlog.Info("shutting down server", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	zlog.Info("server stopped")
	return nil
}

// syncModel fetches the model from object storage when a remote location is configured.
// Failures are logged only: the server still starts and /evaluate answers 503 until the
// model is in place.
func syncModel(ctx context.Context, cfg *config.Config, zlog *zap.Logger) {
	if !cfg.Model.RemoteConfigured() {
		return
	}
	s3Client, err := s3storage.NewS3Client(ctx, &cfg.Model)
	if err != nil {
		zlog.Error("failed to initialize S3 client; continuing without model sync", zap.Error(err))
		return
	}
	if _, err := service.NewModelSync(s3Client, &cfg.Model, zlog).EnsureModel(ctx); err != nil {
		zlog.Error("failed to fetch model; continuing without it",
			zap.String("bucket", cfg.Model.S3Bucket),
			zap.String("key", cfg.Model.S3Key),
			zap.Error(err))
	}
}

// checkInference warns about missing prerequisites without refusing to start.
func checkInference(cfg *config.Config, zlog *zap.Logger) {
	if _, err := os.Stat(cfg.Model.Path); err != nil {
		zlog.Warn("model file not found; /evaluate will answer 503 until it is present",
			zap.String("model_path", cfg.Model.Path))
	}
	if _, err := exec.LookPath(cfg.Inference.Command); err != nil {
		zlog.Warn("inference command not found on PATH",
			zap.String("command", cfg.Inference.Command), zap.Error(err))
	}
}
