package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sevoc/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Port)
	assert.Equal(t, "uploads", cfg.Upload.Dir)
	assert.Equal(t, "uploads", cfg.Upload.ServerDir)
	assert.Equal(t, int64(100), cfg.Upload.MaxFileSizeMB)
	assert.Equal(t, int64(100*1024*1024), cfg.Upload.MaxFileSizeBytes())
	assert.Equal(t, []string{"wav", "mp3", "flac", "ogg", "m4a"}, cfg.Upload.AllowedExtensions)
	assert.Equal(t, "python", cfg.Inference.Command)
	assert.Equal(t, []string{"eval.py"}, cfg.Inference.Args)
	assert.Equal(t, "--input_path", cfg.Inference.InputFlag)
	assert.Equal(t, "--model_path", cfg.Inference.ModelFlag)
	assert.Equal(t, 300*time.Second, cfg.Inference.Timeout)
	assert.Equal(t, 4, cfg.Inference.MaxConcurrent)
	assert.Equal(t, 20*time.Second, cfg.Inference.QueueTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Server.ReadTimeout)
	assert.Equal(t, 330*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "model.pth", cfg.Model.Path)
	assert.False(t, cfg.Model.RemoteConfigured())
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "server.log", cfg.Log.File)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SEVOC_UPLOAD_DIR", "/data/in")
	t.Setenv("SEVOC_UPLOAD_SERVER_DIR", "/data/library")
	t.Setenv("SEVOC_UPLOAD_MAX_FILE_SIZE_MB", "25")
	t.Setenv("SEVOC_UPLOAD_ALLOWED_EXTENSIONS", ".WAV, flac")
	t.Setenv("SEVOC_INFERENCE_COMMAND", "/opt/venv/bin/python")
	t.Setenv("SEVOC_INFERENCE_ARGS", "-u eval.py")
	t.Setenv("SEVOC_INFERENCE_TIMEOUT", "90s")
	t.Setenv("SEVOC_INFERENCE_MAX_CONCURRENT", "0")
	t.Setenv("SEVOC_MODEL_PATH", "/models/./model.pth")
	t.Setenv("SEVOC_MODEL_S3_BUCKET", "weights")
	t.Setenv("SEVOC_MODEL_S3_KEY", "sevoc/model.pth")
	t.Setenv("SEVOC_CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/in", cfg.Upload.Dir)
	assert.Equal(t, "/data/library", cfg.Upload.ServerDir)
	assert.Equal(t, int64(25), cfg.Upload.MaxFileSizeMB)
	assert.Equal(t, []string{"wav", "flac"}, cfg.Upload.AllowedExtensions)
	assert.Equal(t, "/opt/venv/bin/python", cfg.Inference.Command)
	assert.Equal(t, []string{"-u", "eval.py"}, cfg.Inference.Args)
	assert.Equal(t, 90*time.Second, cfg.Inference.Timeout)
	assert.Equal(t, 0, cfg.Inference.MaxConcurrent)
	assert.Equal(t, "/models/model.pth", cfg.Model.Path)
	assert.True(t, cfg.Model.RemoteConfigured())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("PORT", "9090")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)

	t.Setenv("SEVOC_SERVER_PORT", ":7000")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Port)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"zero size", map[string]string{"SEVOC_UPLOAD_MAX_FILE_SIZE_MB": "0"}},
		{"no extensions", map[string]string{"SEVOC_UPLOAD_ALLOWED_EXTENSIONS": " , "}},
		{"zero timeout", map[string]string{"SEVOC_INFERENCE_TIMEOUT": "0s"}},
		{"negative concurrency", map[string]string{"SEVOC_INFERENCE_MAX_CONCURRENT": "-1"}},
		{"negative queue timeout", map[string]string{"SEVOC_INFERENCE_QUEUE_TIMEOUT": "-1s"}},
		{"inference outlasts write timeout", map[string]string{"SEVOC_INFERENCE_TIMEOUT": "10m"}},
		{"write timeout without margin", map[string]string{
			"SEVOC_SERVER_WRITE_TIMEOUT":    "320s",
			"SEVOC_INFERENCE_TIMEOUT":       "300s",
			"SEVOC_INFERENCE_QUEUE_TIMEOUT": "20s",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_WriteTimeoutCoversInferenceBudget(t *testing.T) {
	t.Setenv("SEVOC_INFERENCE_TIMEOUT", "10m")
	t.Setenv("SEVOC_INFERENCE_QUEUE_TIMEOUT", "1m")
	t.Setenv("SEVOC_SERVER_WRITE_TIMEOUT", "11m5s")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 11*time.Minute, cfg.Inference.Budget())

	t.Setenv("SEVOC_SERVER_WRITE_TIMEOUT", "0s")
	_, err = config.Load()
	assert.NoError(t, err, "a zero write timeout is unbounded")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, config.SplitList(" a ,, b ,"))
	assert.Nil(t, config.SplitList(""))
}
