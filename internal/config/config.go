package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"sevoc/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Log       LogConfig
	CORS      CORSConfig
	Upload    UploadConfig
	Inference InferenceConfig
	Model     ModelConfig
}

// AppConfig identifies the service in status responses.
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Environment     string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// UploadConfig holds staging policy for inbound audio.
type UploadConfig struct {
	Dir               string   `mapstructure:"dir"`
	ServerDir         string   `mapstructure:"server_dir"`
	MaxFileSizeMB     int64    `mapstructure:"max_file_size_mb"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	SniffContent      bool     `mapstructure:"sniff_content"`
}

// MaxFileSizeBytes returns the upload limit in bytes.
func (u *UploadConfig) MaxFileSizeBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// InferenceConfig describes how the inference routine is launched.
type InferenceConfig struct {
	Command       string        `mapstructure:"command"`
	Args          []string      `mapstructure:"args"`
	InputFlag     string        `mapstructure:"input_flag"`
	ModelFlag     string        `mapstructure:"model_flag"`
	WorkDir       string        `mapstructure:"work_dir"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
	QueueTimeout  time.Duration `mapstructure:"queue_timeout"`
}

// WriteTimeoutMargin is the headroom the write timeout keeps over the
// longest inference (queue wait plus run) so the mapped error still reaches the client.
const WriteTimeoutMargin = 5 * time.Second

// Budget is the longest an evaluation may spend waiting for and running the routine.
func (i *InferenceConfig) Budget() time.Duration {
	return i.QueueTimeout + i.Timeout
}

// ModelConfig locates the model artifact and its optional S3 source.
type ModelConfig struct {
	Path      string `mapstructure:"path"`
	S3Bucket  string `mapstructure:"s3_bucket"`
	S3Key     string `mapstructure:"s3_key"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// RemoteConfigured reports whether the model can be fetched from S3.
func (m *ModelConfig) RemoteConfigured() bool {
	return m.S3Bucket != "" && m.S3Key != ""
}

// Load reads configuration from environment variables with the SEVOC_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SEVOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// App defaults
	v.SetDefault("app.name", "LibriSeVoc API")
	v.SetDefault("app.version", "1.0.0")

	// Server defaults
	v.SetDefault("server.port", ":8000")
	// Covers the whole request body: 100 MB at roughly 1.5 Mbit/s.
	v.SetDefault("server.read_timeout", "10m")
	v.SetDefault("server.write_timeout", "330s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "server.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("cors.allowed_origins", "*")

	// Upload defaults
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.server_dir", "")
	v.SetDefault("upload.max_file_size_mb", 100)
	formats := make([]string, 0, len(domain.DefaultAudioFormats))
	for _, f := range domain.DefaultAudioFormats {
		formats = append(formats, string(f))
	}
	v.SetDefault("upload.allowed_extensions", strings.Join(formats, ","))
	v.SetDefault("upload.sniff_content", false)

	// Inference defaults
	v.SetDefault("inference.command", "python")
	v.SetDefault("inference.args", "eval.py")
	v.SetDefault("inference.input_flag", "--input_path")
	v.SetDefault("inference.model_flag", "--model_path")
	v.SetDefault("inference.work_dir", "")
	v.SetDefault("inference.timeout", "5m")
	v.SetDefault("inference.max_concurrent", 4)
	v.SetDefault("inference.queue_timeout", "20s")

	// Model defaults
	v.SetDefault("model.path", "model.pth")
	v.SetDefault("model.s3_bucket", "")
	v.SetDefault("model.s3_key", "")
	v.SetDefault("model.region", "us-east-1")
	v.SetDefault("model.endpoint", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"app.name":                  "SEVOC_APP_NAME",
		"app.version":               "SEVOC_APP_VERSION",
		"server.port":               "SEVOC_SERVER_PORT",
		"server.read_timeout":       "SEVOC_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "SEVOC_SERVER_WRITE_TIMEOUT",
		"server.shutdown_timeout":   "SEVOC_SERVER_SHUTDOWN_TIMEOUT",
		"server.environment":        "SEVOC_SERVER_ENVIRONMENT",
		"log.level":                 "SEVOC_LOG_LEVEL",
		"log.format":                "SEVOC_LOG_FORMAT",
		"log.file":                  "SEVOC_LOG_FILE",
		"log.max_size_mb":           "SEVOC_LOG_MAX_SIZE_MB",
		"log.max_backups":           "SEVOC_LOG_MAX_BACKUPS",
		"log.max_age_days":          "SEVOC_LOG_MAX_AGE_DAYS",
		"cors.allowed_origins":      "SEVOC_CORS_ALLOWED_ORIGINS",
		"upload.dir":                "SEVOC_UPLOAD_DIR",
		"upload.server_dir":         "SEVOC_UPLOAD_SERVER_DIR",
		"upload.max_file_size_mb":   "SEVOC_UPLOAD_MAX_FILE_SIZE_MB",
		"upload.allowed_extensions": "SEVOC_UPLOAD_ALLOWED_EXTENSIONS",
		"upload.sniff_content":      "SEVOC_UPLOAD_SNIFF_CONTENT",
		"inference.command":         "SEVOC_INFERENCE_COMMAND",
		"inference.args":            "SEVOC_INFERENCE_ARGS",
		"inference.input_flag":      "SEVOC_INFERENCE_INPUT_FLAG",
		"inference.model_flag":      "SEVOC_INFERENCE_MODEL_FLAG",
		"inference.work_dir":        "SEVOC_INFERENCE_WORK_DIR",
		"inference.timeout":         "SEVOC_INFERENCE_TIMEOUT",
		"inference.max_concurrent":  "SEVOC_INFERENCE_MAX_CONCURRENT",
		"inference.queue_timeout":   "SEVOC_INFERENCE_QUEUE_TIMEOUT",
		"model.path":                "SEVOC_MODEL_PATH",
		"model.s3_bucket":           "SEVOC_MODEL_S3_BUCKET",
		"model.s3_key":              "SEVOC_MODEL_S3_KEY",
		"model.region":              "SEVOC_MODEL_REGION",
		"model.endpoint":            "SEVOC_MODEL_ENDPOINT",
		"model.access_key":          "SEVOC_MODEL_ACCESS_KEY",
		"model.secret_key":          "SEVOC_MODEL_SECRET_KEY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Container platforms set a PORT env var. Use it if SEVOC_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SEVOC_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.App = AppConfig{
		Name:    v.GetString("app.name"),
		Version: v.GetString("app.version"),
	}
	cfg.Server = ServerConfig{
		Port:            serverPort,
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		Environment:     v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:      v.GetString("log.level"),
		Format:     v.GetString("log.format"),
		File:       v.GetString("log.file"),
		MaxSizeMB:  v.GetInt("log.max_size_mb"),
		MaxBackups: v.GetInt("log.max_backups"),
		MaxAgeDays: v.GetInt("log.max_age_days"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: SplitList(v.GetString("cors.allowed_origins")),
	}

	uploadDir := v.GetString("upload.dir")
	serverDir := v.GetString("upload.server_dir")
	if serverDir == "" {
		serverDir = uploadDir
	}
	var extensions []string
	for _, ext := range SplitList(v.GetString("upload.allowed_extensions")) {
		extensions = append(extensions, strings.ToLower(strings.TrimPrefix(ext, ".")))
	}
	cfg.Upload = UploadConfig{
		Dir:               uploadDir,
		ServerDir:         serverDir,
		MaxFileSizeMB:     v.GetInt64("upload.max_file_size_mb"),
		AllowedExtensions: extensions,
		SniffContent:      v.GetBool("upload.sniff_content"),
	}

	cfg.Inference = InferenceConfig{
		Command:       v.GetString("inference.command"),
		Args:          strings.Fields(v.GetString("inference.args")),
		InputFlag:     v.GetString("inference.input_flag"),
		ModelFlag:     v.GetString("inference.model_flag"),
		WorkDir:       v.GetString("inference.work_dir"),
		Timeout:       v.GetDuration("inference.timeout"),
		MaxConcurrent: v.GetInt("inference.max_concurrent"),
		QueueTimeout:  v.GetDuration("inference.queue_timeout"),
	}

	cfg.Model = ModelConfig{
		Path:      filepath.Clean(v.GetString("model.path")),
		S3Bucket:  v.GetString("model.s3_bucket"),
		S3Key:     v.GetString("model.s3_key"),
		Region:    v.GetString("model.region"),
		Endpoint:  v.GetString("model.endpoint"),
		AccessKey: v.GetString("model.access_key"),
		SecretKey: v.GetString("model.secret_key"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Upload.Dir == "" {
		return fmt.Errorf("upload.dir must not be empty")
	}
	if c.Upload.MaxFileSizeMB <= 0 {
		return fmt.Errorf("upload.max_file_size_mb must be positive, got %d", c.Upload.MaxFileSizeMB)
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		return fmt.Errorf("upload.allowed_extensions must list at least one extension")
	}
	if c.Inference.Command == "" {
		return fmt.Errorf("inference.command must not be empty")
	}
	if c.Inference.Timeout <= 0 {
		return fmt.Errorf("inference.timeout must be positive, got %s", c.Inference.Timeout)
	}
	if c.Inference.MaxConcurrent < 0 {
		return fmt.Errorf("inference.max_concurrent must not be negative, got %d", c.Inference.MaxConcurrent)
	}
	if c.Inference.QueueTimeout < 0 {
		return fmt.Errorf("inference.queue_timeout must not be negative, got %s", c.Inference.QueueTimeout)
	}
	// A zero write timeout leaves responses unbounded.
	if w := c.Server.WriteTimeout; w > 0 && w < c.Inference.Budget()+WriteTimeoutMargin {
		return fmt.Errorf("server.write_timeout (%s) must be at least inference.queue_timeout + inference.timeout + %s (%s)",
			w, WriteTimeoutMargin, c.Inference.Budget()+WriteTimeoutMargin)
	}
	if c.Model.Path == "" || c.Model.Path == "." {
		return fmt.Errorf("model.path must not be empty")
	}
	return nil
}

// SplitList parses a comma-separated list, dropping empty entries.
func SplitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
