package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"sevoc/internal/config"
	"sevoc/internal/service"
)

func TestSyncModel_RemoteMissingKeepsServing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := &config.Config{Model: config.ModelConfig{
		Path:      filepath.Join(t.TempDir(), "model.pth"),
		S3Bucket:  "models",
		S3Key:     "absent.pth",
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "test",
		SecretKey: "test",
	}}
	core, logs := observer.New(zapcore.WarnLevel)

	syncModel(context.Background(), cfg, zap.New(core))

	entries := logs.FilterMessage("failed to fetch model; continuing without it").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "does not exist")
	assert.NoFileExists(t, cfg.Model.Path)
	assert.False(t, service.NewStatusService(cfg).ModelExists())
}

func TestSyncModel_UnreachableStorageKeepsServing(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	cfg := &config.Config{Model: config.ModelConfig{
		Path:      filepath.Join(t.TempDir(), "model.pth"),
		S3Bucket:  "models",
		S3Key:     "model.pth",
		Region:    "us-east-1",
		Endpoint:  endpoint,
		AccessKey: "test",
		SecretKey: "test",
	}}
	core, logs := observer.New(zapcore.WarnLevel)

	syncModel(context.Background(), cfg, zap.New(core))

	assert.Equal(t, 1, logs.FilterMessage("failed to fetch model; continuing without it").Len())
	assert.NoFileExists(t, cfg.Model.Path)
}

func TestSyncModel_NoRemoteIsNoop(t *testing.T) {
	cfg := &config.Config{Model: config.ModelConfig{Path: filepath.Join(t.TempDir(), "model.pth")}}
	core, logs := observer.New(zapcore.DebugLevel)

	syncModel(context.Background(), cfg, zap.New(core))

	assert.Zero(t, logs.Len())
}
