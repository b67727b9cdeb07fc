// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Storage  StorageConfig
	Pipeline PipelineConfig
	AI       AIConfig
	Server   ServerConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig holds the asset storage disk paths.
// Staging receives freshly ingested files; assets is production storage;
// previews holds generated thumbnails and medium previews. Metadata holds
// the database and the search index.
type StorageConfig struct {
	BasePath     string
	StagingPath  string
	AssetsPath   string
	PreviewsPath string
}

// PipelineConfig holds asset-processing pipeline configuration.
type PipelineConfig struct {
	// Workers is the number of concurrent asset pipelines (default: 2)
	Workers int
	// MaxAttempts is the number of job-level attempts before an asset is
	// marked failed (default: 2)
	MaxAttempts int
	// Timeout is the backstop for a single asset's full pipeline run (default: 10m)
	Timeout time.Duration
	// ThumbnailSize is the bounding box for thumbnails in pixels (default: 300)
	ThumbnailSize int
	// PreviewWidth is the maximum width for medium previews in pixels (default: 1200)
	PreviewWidth int
	// ToolTimeout bounds each external conversion tool invocation (default: 30s)
	ToolTimeout time.Duration
	// WatchStaging enables the staging-directory watcher that auto-ingests
	// new files (default: true)
	WatchStaging bool
}

// AIConfig holds classification service configuration.
// An empty APIKey disables remote classification entirely; the pipeline then
// always takes the extension/MIME fallback path.
type AIConfig struct {
	APIKey              string
	BaseURL             string `validate:"omitempty,url"`
	Model               string
	ConfidenceThreshold float64 `validate:"gte=0,lte=1"`
	RequestTimeout      time.Duration
	// RequestsPerMinute throttles calls to the provider (default: 30)
	RequestsPerMinute int `validate:"gt=0"`
}

// Enabled reports whether remote classification is configured.
func (c AIConfig) Enabled() bool {
	return c.APIKey != ""
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	// Define command-line flags.
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	basePath := flag.String("base-path", "", "Base path for MediaVault data")
	stagingPath := flag.String("staging-path", "", "Path for staged uploads")
	assetsPath := flag.String("assets-path", "", "Path for production asset storage")
	previewsPath := flag.String("previews-path", "", "Path for generated previews")

	// Pipeline flags
	workers := flag.String("pipeline-workers", "", "Concurrent asset pipelines (default: 2)")
	maxAttempts := flag.String("pipeline-attempts", "", "Job-level attempts before failure (default: 2)")
	pipelineTimeout := flag.String("pipeline-timeout", "", "Backstop timeout per asset (default: 10m)")
	thumbnailSize := flag.String("thumbnail-size", "", "Thumbnail bounding box in pixels (default: 300)")
	previewWidth := flag.String("preview-width", "", "Medium preview max width in pixels (default: 1200)")
	toolTimeout := flag.String("tool-timeout", "", "Per-tool execution timeout (default: 30s)")
	watchStaging := flag.String("watch-staging", "", "Watch staging directory for new files (default: true)")

	// AI flags
	aiBaseURL := flag.String("ai-base-url", "", "Classification service base URL")
	aiModel := flag.String("ai-model", "", "Classification model identifier")
	aiThreshold := flag.String("ai-threshold", "", "Auto-approval confidence threshold (default: 0.70)")
	aiTimeout := flag.String("ai-timeout", "", "Classification request timeout (default: 90s)")

	// Server flags
	serverPort := flag.String("port", "", "Server port (default: 8080)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	// Parse flags but don't exit on error - we want to handle it gracefully.
	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			BasePath:     getConfigValue(*basePath, "MEDIAVAULT_PATH", ""),
			StagingPath:  getConfigValue(*stagingPath, "STAGING_PATH", ""),
			AssetsPath:   getConfigValue(*assetsPath, "ASSETS_PATH", ""),
			PreviewsPath: getConfigValue(*previewsPath, "PREVIEWS_PATH", ""),
		},
		Pipeline: PipelineConfig{
			Workers:      getIntConfigValue(*workers, "PIPELINE_WORKERS", 2),
			MaxAttempts:  getIntConfigValue(*maxAttempts, "PIPELINE_ATTEMPTS", 2),
			ThumbnailSize: getIntConfigValue(*thumbnailSize, "THUMBNAIL_SIZE", 300),
			PreviewWidth: getIntConfigValue(*previewWidth, "PREVIEW_WIDTH", 1200),
			WatchStaging: getBoolConfigValue(*watchStaging, "WATCH_STAGING", true),
		},
		AI: AIConfig{
			APIKey:              getConfigValue("", "AI_API_KEY", ""),
			BaseURL:             getConfigValue(*aiBaseURL, "AI_BASE_URL", "https://openrouter.ai/api/v1"),
			Model:               getConfigValue(*aiModel, "AI_MODEL", "openai/gpt-4o-mini"),
			ConfidenceThreshold: getFloatConfigValue(*aiThreshold, "AI_THRESHOLD", 0.70),
			RequestsPerMinute:   getIntConfigValue("", "AI_REQUESTS_PER_MINUTE", 30),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
	}

	// Parse durations.
	var err error
	cfg.Pipeline.Timeout, err = parseDurationValue(*pipelineTimeout, "PIPELINE_TIMEOUT", "10m")
	if err != nil {
		return nil, err
	}
	cfg.Pipeline.ToolTimeout, err = parseDurationValue(*toolTimeout, "TOOL_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	cfg.AI.RequestTimeout, err = parseDurationValue(*aiTimeout, "AI_TIMEOUT", "90s")
	if err != nil {
		return nil, err
	}
	cfg.Server.ReadTimeout, err = parseDurationValue("", "SERVER_READ_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Server.WriteTimeout, err = parseDurationValue("", "SERVER_WRITE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Server.IdleTimeout, err = parseDurationValue("", "SERVER_IDLE_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	// Expand and validate storage paths.
	if err := cfg.expandStoragePaths(); err != nil {
		return nil, fmt.Errorf("invalid storage path: %w", err)
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.BasePath == "" {
		return errors.New("storage base path cannot be empty after expansion")
	}

	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline workers must be at least 1, got %d", c.Pipeline.Workers)
	}
	if c.Pipeline.MaxAttempts < 1 {
		return fmt.Errorf("pipeline attempts must be at least 1, got %d", c.Pipeline.MaxAttempts)
	}
	if c.Pipeline.ThumbnailSize < 16 {
		return fmt.Errorf("thumbnail size too small: %d", c.Pipeline.ThumbnailSize)
	}
	if c.Pipeline.PreviewWidth < c.Pipeline.ThumbnailSize {
		return fmt.Errorf("preview width (%d) must be at least thumbnail size (%d)",
			c.Pipeline.PreviewWidth, c.Pipeline.ThumbnailSize)
	}

	// Struct-level validation for the AI settings.
	if err := validator.New().Struct(c.AI); err != nil {
		return fmt.Errorf("ai config: %w", err)
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandStoragePaths expands ~ and resolves all disk paths. The staging,
// assets, and previews disks default to subdirectories of the base path.
func (c *Config) expandStoragePaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultBase := filepath.Join(homeDir, "MediaVault")

	c.Storage.BasePath, err = expandPath(c.Storage.BasePath, defaultBase)
	if err != nil {
		return err
	}

	c.Storage.StagingPath, err = expandPath(c.Storage.StagingPath, filepath.Join(c.Storage.BasePath, "staging"))
	if err != nil {
		return err
	}

	c.Storage.AssetsPath, err = expandPath(c.Storage.AssetsPath, filepath.Join(c.Storage.BasePath, "assets"))
	if err != nil {
		return err
	}

	c.Storage.PreviewsPath, err = expandPath(c.Storage.PreviewsPath, filepath.Join(c.Storage.BasePath, "previews"))
	if err != nil {
		return err
	}

	return nil
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	str := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(str)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, str, err)
	}
	return d, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
