package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-school-portal/internal/config"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	for _, v := range []string{"APP_NAME", "SCHOOL_BASE_URL", "ENV", "LOG_LEVEL", "PORT",
		"SCHOOL_SESSION_FILE", "SESSION_CHECK_INTERVAL", "SESSION_DEDUPE_REFRESH"} {
		t.Setenv(v, "")
	}
	c := config.New()

	require.Equal(t, "School Portal", c.GetAppName())
	require.Equal(t, "http://localhost:8000", c.GetBaseURL())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "info", c.GetLogLevel())
	require.Equal(t, ":8090", c.GetPort())
	require.Equal(t, 5*time.Minute, c.GetCheckInterval())
	require.True(t, c.GetDedupeRefresh())
	require.Equal(t, "session.json", filepath.Base(c.GetSessionFile()))
}

func TestConfig_FromEnv(t *testing.T) {
	t.Setenv("SCHOOL_BASE_URL", "https://school.example.com/")
	t.Setenv("PORT", ":9000")
	t.Setenv("SCHOOL_SESSION_FILE", "/tmp/s.json")
	t.Setenv("SESSION_CHECK_INTERVAL", "30s")
	t.Setenv("SESSION_DEDUPE_REFRESH", "false")
	c := config.New()

	require.Equal(t, "https://school.example.com", c.GetBaseURL())
	require.Equal(t, ":9000", c.GetPort())
	require.Equal(t, "/tmp/s.json", c.GetSessionFile())
	require.Equal(t, 30*time.Second, c.GetCheckInterval())
	require.False(t, c.GetDedupeRefresh())
}

func TestConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SESSION_CHECK_INTERVAL", "soon")
	t.Setenv("SESSION_DEDUPE_REFRESH", "maybe")
	c := config.New()

	require.Equal(t, 5*time.Minute, c.GetCheckInterval())
	require.True(t, c.GetDedupeRefresh())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SCHOOL_TEST_DOTENV=loaded\n"), 0o600))
	t.Setenv("SCHOOL_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("SCHOOL_TEST_DOTENV"))

	require.NoError(t, config.LoadDotEnv(envFile))
	require.Equal(t, "loaded", os.Getenv("SCHOOL_TEST_DOTENV"))

	// Missing files are ignored
	require.NoError(t, config.LoadDotEnv(filepath.Join(dir, "missing.env")))
}
