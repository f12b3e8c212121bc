// Package config reads runtime settings from environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultDir holds the database, action log and exports unless overridden
	DefaultDir = "~/.orderdesk"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	DBPath          string
	ActionLogPath   string
	ExportDir       string
	HTTPAddr        string
	ShutdownTimeout time.Duration
	LogLevel        string

	SummaryProvider  string
	SummaryModel     string
	SummaryCacheSize int
}

// FromEnv builds Config with defaults, overridden by environment variables.
func FromEnv() Config {
	dir := expandHome(envOrDefault("ORDERDESK_HOME", DefaultDir))
	return Config{
		DBPath:          expandHome(envOrDefault("ORDERDESK_DB_PATH", filepath.Join(dir, "orderdesk.db"))),
		ActionLogPath:   expandHome(envOrDefault("ORDERDESK_ACTION_LOG", filepath.Join(dir, "logs", "app.log"))),
		ExportDir:       expandHome(envOrDefault("ORDERDESK_EXPORT_DIR", filepath.Join(dir, "exports"))),
		HTTPAddr:        envOrDefault("ORDERDESK_HTTP_ADDR", ":8080"),
		ShutdownTimeout: envDuration("ORDERDESK_SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),

		SummaryProvider:  strings.ToLower(os.Getenv("ORDERDESK_SUMMARY_PROVIDER")),
		SummaryModel:     os.Getenv("ORDERDESK_SUMMARY_MODEL"),
		SummaryCacheSize: envInt("ORDERDESK_SUMMARY_CACHE", 256),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

// expandHome replaces a leading ~ with the user's home directory
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
