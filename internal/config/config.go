package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port           string
	GinMode        string
	DatabaseDriver string // postgres or sqlite
	DatabaseURL    string
	SessionSecret  string
	SessionStore   string // gorm or cookie
	SessionMaxAge  int    // seconds
	UploadDir      string
	MaxUploadBytes int64
	PostOrder      string // oldest or newest
	TemplatesDir   string
	StaticDir      string
	LogLevel       string
	LogFormat      string // text or json
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, reading configuration from environment")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SessionSecret:  getEnv("SESSION_SECRET", "secret_key_change_me"),
		SessionStore:   strings.ToLower(getEnv("SESSION_STORE", "gorm")),
		SessionMaxAge:  getEnvInt("SESSION_MAX_AGE", 7*24*3600),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
		PostOrder:      strings.ToLower(getEnv("POST_ORDER", "oldest")),
		TemplatesDir:   getEnv("TEMPLATES_DIR", "./web/templates"),
		StaticDir:      getEnv("STATIC_DIR", "./web/static"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if cfg.DatabaseURL == "" {
		switch cfg.DatabaseDriver {
		case "postgres":
			// Fallback for local dev if not set
			cfg.DatabaseURL = "host=localhost user=postgres password=postgres dbname=inkwell port=5432 sslmode=disable TimeZone=UTC"
		default:
			cfg.DatabaseURL = "inkwell.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
		}
	}
	if cfg.PostOrder != "newest" {
		cfg.PostOrder = "oldest"
	}
	return cfg
}

// SetupLogging applies level and format to the standard logrus logger.
func (c *Config) SetupLogging() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.Warnf("Unknown LOG_LEVEL %q, using info", c.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if c.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		logrus.Warnf("Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
