package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds all application configuration, read from environment
// variables with sensible defaults. A .env file in the working
// directory is loaded first when present.
//
// Environment Variables:
//
// Server:
// - HTTP_ADDR: listen address (default: :5001)
// - UI_DIR: static UI directory (default: web/static)
// - UI_ENABLED: serve the static UI (default: true)
// - LOG_LEVEL: debug|info|warn|error (default: info)
//
// Jobs:
// - MAX_CONCURRENT_TASKS: admission ceiling (default: 20)
// - TASK_TTL: unretrieved job time-to-live (default: 300s)
// - GC_INTERVAL: cleanup schedule, cron spec (default: @every 60s)
// - DOWNLOAD_DIR: durable artifact directory (default: downloads)
//
// Extraction:
// - YTDLP_PATH: yt-dlp binary (default: yt-dlp)
// - FFMPEG_PATH: ffmpeg binary (default: ffmpeg)
// - COOKIE_FILE: cookie file path (default: auto-discover)
type Config struct {
	Server  ServerConfig
	Jobs    JobsConfig
	Extract ExtractConfig
}

type ServerConfig struct {
	Addr      string `json:"addr"`
	UIDir     string `json:"ui_dir"`
	UIEnabled bool   `json:"ui_enabled"`
	LogLevel  string `json:"log_level"`
}

type JobsConfig struct {
	MaxConcurrent int           `json:"max_concurrent"`
	TTL           time.Duration `json:"ttl"`
	GCInterval    string        `json:"gc_interval"`
	DownloadDir   string        `json:"download_dir"`
}

type ExtractConfig struct {
	YtDlpPath  string `json:"ytdlp_path"`
	FFmpegPath string `json:"ffmpeg_path"`
	CookieFile string `json:"cookie_file"`
}

// New loads an optional .env file and builds the configuration from
// the environment.
func New() (*Config, error) {
	_ = godotenv.Load()
	return NewFromEnv()
}

func NewFromEnv() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Addr:      getEnvString("HTTP_ADDR", ":5001"),
			UIDir:     getEnvString("UI_DIR", "web/static"),
			UIEnabled: getEnvBool("UI_ENABLED", true),
			LogLevel:  getEnvString("LOG_LEVEL", "info"),
		},
		Jobs: JobsConfig{
			MaxConcurrent: getEnvInt("MAX_CONCURRENT_TASKS", 20),
			TTL:           getEnvDuration("TASK_TTL", 300*time.Second),
			GCInterval:    getEnvString("GC_INTERVAL", "@every 60s"),
			DownloadDir:   getEnvString("DOWNLOAD_DIR", "downloads"),
		},
		Extract: ExtractConfig{
			YtDlpPath:  getEnvString("YTDLP_PATH", "yt-dlp"),
			FFmpegPath: getEnvString("FFMPEG_PATH", "ffmpeg"),
			CookieFile: getEnvString("COOKIE_FILE", ""),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.Jobs.MaxConcurrent <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_TASKS must be positive")
	}
	if c.Jobs.TTL <= 0 {
		return fmt.Errorf("TASK_TTL must be positive")
	}
	if c.Jobs.DownloadDir == "" {
		return fmt.Errorf("DOWNLOAD_DIR is required")
	}
	if _, err := cron.ParseStandard(c.Jobs.GCInterval); err != nil {
		return fmt.Errorf("invalid GC_INTERVAL: %w", err)
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		// Bare numbers are read as seconds.
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
