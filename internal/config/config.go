package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// BotToken is the Telegram bot credential. Required.
	BotToken string
	// WordsFile is an optional catalog file imported at startup.
	WordsFile string
	// DownloadDir is where uploaded catalog files are stored before import.
	DownloadDir string

	Database DatabaseConfig

	// LearningThreshold is the number of correct answers after which a
	// word counts as learned.
	LearningThreshold int
	// RewardEvery triggers a congratulation each time the learned total
	// reaches a multiple of it. Zero disables rewards.
	RewardEvery int
	// StickerFileID, when set, is sent instead of a plain congratulation.
	StickerFileID string

	// PollTimeout is the long-poll timeout passed to getUpdates, in seconds.
	PollTimeout int
	// RetryDelay is the pause after a failed poll or send.
	RetryDelay time.Duration
	// FileMaxAge is how long downloaded catalog files are kept before the
	// hourly sweep removes them.
	FileMaxAge time.Duration
}

// DatabaseConfig holds word store connection settings
type DatabaseConfig struct {
	Driver string // "sqlite3" or "postgres"
	Path   string // sqlite database file
	URL    string // postgres connection string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:    os.Getenv("BOT_TOKEN"),
		WordsFile:   os.Getenv("WORDS_FILE"),
		DownloadDir: getEnv("DOWNLOAD_DIR", "data/downloads"),
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "sqlite3"),
			Path:   getEnv("DB_PATH", "data/vocabot.db"),
			URL:    os.Getenv("DATABASE_URL"),
		},
		LearningThreshold: getEnvInt("LEARNING_THRESHOLD", 3),
		RewardEvery:       getEnvInt("REWARD_EVERY", 0),
		StickerFileID:     os.Getenv("STICKER_FILE_ID"),
		PollTimeout:       getEnvInt("POLL_TIMEOUT", 30),
		RetryDelay:        5 * time.Second,
		FileMaxAge:        24 * time.Hour,
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.Database.Driver != "sqlite3" && cfg.Database.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	if cfg.Database.Driver == "postgres" && cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
	}
	if cfg.LearningThreshold < 1 {
		return nil, fmt.Errorf("LEARNING_THRESHOLD must be positive")
	}

	return cfg, nil
}

// DSN returns the connection string for the configured driver
func (c *Config) DSN() string {
	if c.Database.Driver == "postgres" {
		return c.Database.URL
	}
	return c.Database.Path
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
