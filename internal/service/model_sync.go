package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"sevoc/internal/config"
	"sevoc/internal/port"
)

// ModelSync fetches the model artifact from object storage when it is missing locally.
type ModelSync struct {
	storage port.ObjectStorage
	cfg     *config.ModelConfig
	log     *zap.Logger
}

// NewModelSync creates a ModelSync. storage may be nil when no remote source is configured.
func NewModelSync(storage port.ObjectStorage, cfg *config.ModelConfig, log *zap.Logger) *ModelSync {
	return &ModelSync{storage: storage, cfg: cfg, log: log}
}

// EnsureModel downloads the model unless it already exists or no remote is configured.
// It reports whether a download took place.
func (m *ModelSync) EnsureModel(ctx context.Context) (bool, error) {
	if _, err := os.Stat(m.cfg.Path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("checking model file: %w", err)
	}

	if m.storage == nil || !m.cfg.RemoteConfigured() {
		m.log.Warn("model file not found; place the trained model at this path before evaluating",
			zap.String("model_path", m.cfg.Path))
		return false, nil
	}

	exists, err := m.storage.Exists(ctx, m.cfg.S3Bucket, m.cfg.S3Key)
	if err != nil {
		return false, fmt.Errorf("checking remote model: %w", err)
	}
	if !exists {
		return false, fmt.Errorf("remote model s3://%s/%s does not exist", m.cfg.S3Bucket, m.cfg.S3Key)
	}

	dir := filepath.Dir(m.cfg.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("creating model dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".model-*.part")
	if err != nil {
		return false, fmt.Errorf("creating temp model file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	m.log.Info("downloading model",
		zap.String("bucket", m.cfg.S3Bucket),
		zap.String("key", m.cfg.S3Key),
		zap.String("model_path", m.cfg.Path))

	n, err := m.storage.Download(ctx, m.cfg.S3Bucket, m.cfg.S3Key, tmp)
	closeErr := tmp.Close()
	if err != nil {
		return false, fmt.Errorf("downloading model: %w", err)
	}
	if closeErr != nil {
		return false, fmt.Errorf("closing temp model file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, m.cfg.Path); err != nil {
		return false, fmt.Errorf("installing model: %w", err)
	}

	m.log.Info("model downloaded", zap.String("model_path", m.cfg.Path), zap.Int64("bytes", n))
	return true, nil
}
