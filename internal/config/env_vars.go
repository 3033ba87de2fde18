package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	appNameVar       = "APP_NAME"
	baseURLVar       = "SCHOOL_BASE_URL"
	envVar           = "ENV"
	logLevelVar      = "LOG_LEVEL"
	portEnvVar       = "PORT"
	sessionFileVar   = "SCHOOL_SESSION_FILE"
	checkIntervalVar = "SESSION_CHECK_INTERVAL"
	dedupeRefreshVar = "SESSION_DEDUPE_REFRESH"

	defaultCheckInterval = 5 * time.Minute
)

// LoadDotEnv reads the given .env files (".env" when none are given) into the
// process environment. Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("[config.LoadDotEnv] %w", err)
	}
	return nil
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "School Portal")
}

// GetBaseURL returns the base URL of the school backend (e.g., "https://school.example.com")
func (EnvVars) GetBaseURL() string {
	return strings.TrimRight(GetEnv(baseURLVar, "http://localhost:8000"), "/")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "DEV")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

type Portal struct{}

var _ PortalConfig = Portal{}

func (Portal) GetPort() string {
	port := GetEnv(portEnvVar, "8090")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionFile() string {
	if f := os.Getenv(sessionFileVar); f != "" {
		return f
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".schoolctl", "session.json")
	}
	return filepath.Join(home, ".schoolctl", "session.json")
}

// GetCheckInterval is how often an active session is verified against the backend
func (Session) GetCheckInterval() time.Duration {
	d, err := time.ParseDuration(GetEnv(checkIntervalVar, ""))
	if err != nil || d <= 0 {
		return defaultCheckInterval
	}
	return d
}

// GetDedupeRefresh controls whether concurrent refreshes share one round trip
func (Session) GetDedupeRefresh() bool {
	b, err := strconv.ParseBool(GetEnv(dedupeRefreshVar, "true"))
	if err != nil {
		return true
	}
	return b
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
