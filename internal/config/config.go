package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Default reminder window, hours of the day in the server's local time
const (
	DefaultReminderStartHour = 8
	DefaultReminderEndHour   = 22
)

// Progress backends
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds process configuration read from the environment
type Config struct {
	Port            string
	DataDir         string
	LogMode         string
	ProgressBackend string
	DatabaseURL     string
	RedisAddr       string
	RedisKey        string
	AllowedOrigins  []string
	TelegramToken   string
	ReminderStart   int
	ReminderEnd     int
}

// Load reads an optional .env file and then the process environment
func Load() (*Config, error) {
	// A missing .env file is normal outside local development
	_ = godotenv.Load()

	cfg := &Config{
		Port:            String("PORT", "3001"),
		DataDir:         String("LANGFLIX_DATA_DIR", "data"),
		LogMode:         String("LOG_MODE", "development"),
		ProgressBackend: strings.ToLower(String("PROGRESS_BACKEND", BackendFile)),
		DatabaseURL:     String("DATABASE_URL", ""),
		RedisAddr:       String("REDIS_ADDR", "localhost:6379"),
		RedisKey:        String("REDIS_PROGRESS_KEY", "langflix:user-progress"),
		AllowedOrigins:  List("CORS_ORIGINS", []string{"http://localhost:5173"}),
		TelegramToken:   String("TELEGRAM_BOT_TOKEN", ""),
		ReminderStart:   Int("REMINDER_START_HOUR", DefaultReminderStartHour),
		ReminderEnd:     Int("REMINDER_END_HOUR", DefaultReminderEndHour),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.ProgressBackend {
	case BackendFile, BackendRedis:
	case BackendSQLite:
		if c.DatabaseURL == "" {
			c.DatabaseURL = filepath.Join(c.DataDir, "langflix.db")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown PROGRESS_BACKEND %q", c.ProgressBackend)
	}
	if c.ReminderStart < 0 || c.ReminderStart > 23 || c.ReminderEnd < 0 || c.ReminderEnd > 23 {
		return fmt.Errorf("reminder hours must be within 0-23, got %d-%d", c.ReminderStart, c.ReminderEnd)
	}
	return nil
}

// ProgressFile is where the file backend keeps the progress document
func (c *Config) ProgressFile() string {
	return filepath.Join(c.DataDir, "user-progress.json")
}

// SubtitlesDir is where cached captions live
func (c *Config) SubtitlesDir() string {
	return filepath.Join(c.DataDir, "subtitles")
}

// TranslationsDir holds per-video word list overrides
func (c *Config) TranslationsDir() string {
	return filepath.Join(c.DataDir, "translations")
}

func String(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func Int(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// List splits a comma separated variable, dropping empty items
func List(name string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
