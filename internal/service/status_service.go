package service

import (
	"context"
	"os"
	"time"

	"sevoc/internal/config"
	"sevoc/internal/domain"
)

// StatusService exposes the read-only service configuration and readiness.
type StatusService interface {
	Health(ctx context.Context) domain.HealthStatus
	Status(ctx context.Context) domain.ServiceStatus
	ModelPath() string
	ModelExists() bool
	InferenceTimeout() time.Duration
}

type statusService struct {
	app       config.AppConfig
	upload    config.UploadConfig
	inference config.InferenceConfig
	modelPath string
	startedAt time.Time
	now       func() time.Time
}

// NewStatusService snapshots cfg at start-up. Later changes to cfg are not observed.
func NewStatusService(cfg *config.Config) StatusService {
	upload := cfg.Upload
	upload.AllowedExtensions = append([]string(nil), cfg.Upload.AllowedExtensions...)
	inference := cfg.Inference
	inference.Args = append([]string(nil), cfg.Inference.Args...)
	return &statusService{
		app:       cfg.App,
		upload:    upload,
		inference: inference,
		modelPath: cfg.Model.Path,
		startedAt: time.Now(),
		now:       time.Now,
	}
}

func (s *statusService) ModelPath() string {
	return s.modelPath
}

func (s *statusService) ModelExists() bool {
	info, err := os.Stat(s.modelPath)
	return err == nil && !info.IsDir()
}

func (s *statusService) InferenceTimeout() time.Duration {
	return s.inference.Timeout
}

func (s *statusService) Health(_ context.Context) domain.HealthStatus {
	return domain.HealthStatus{
		Status:         domain.StatusHealthy,
		Service:        s.app.Name,
		Timestamp:      s.now(),
		ModelAvailable: s.ModelExists(),
	}
}

func (s *statusService) Status(_ context.Context) domain.ServiceStatus {
	now := s.now()
	return domain.ServiceStatus{
		Server:                  s.app.Name,
		Version:                 s.app.Version,
		ModelPath:               s.modelPath,
		ModelExists:             s.ModelExists(),
		UploadFolder:            s.upload.Dir,
		MaxFileSizeMB:           s.upload.MaxFileSizeMB,
		AllowedExtensions:       append([]string(nil), s.upload.AllowedExtensions...),
		InferenceTimeoutSeconds: s.inference.Timeout.Seconds(),
		MaxConcurrentInferences: s.inference.MaxConcurrent,
		UptimeSeconds:           now.Sub(s.startedAt).Seconds(),
		Timestamp:               now,
	}
}
