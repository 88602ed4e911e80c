package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/school-admin/internal/config"
)

// unsetenv clears keys for the test; cleanenv treats a set-but-empty
// variable as a value.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Env(t *testing.T) {
	unsetenv(t, "ENV", "REDIRECT_DELAY")
	t.Setenv("APP_URL", "http://localhost:3000")
	t.Setenv("REQUEST_TIMEOUT", "3s")

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:3000", cfg.AppURL)
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, 3*time.Second, cfg.RequestTimeout)
	require.Equal(t, 2*time.Second, cfg.RedirectDelay)
}

func TestLoad_MissingAppURL(t *testing.T) {
	unsetenv(t, "APP_URL")

	_, err := config.Load("")
	require.Error(t, err)
}

func TestLoad_MalformedAppURL(t *testing.T) {
	for _, raw := range []string{"localhost:3000", "ftp://host", "http://", "::"} {
		t.Setenv("APP_URL", raw)

		_, err := config.Load("")
		require.Error(t, err, raw)
	}
}

func TestLoad_File(t *testing.T) {
	unsetenv(t, "APP_URL", "ENV", "REDIRECT_DELAY", "REQUEST_TIMEOUT")

	path := filepath.Join(t.TempDir(), "local.yaml")
	err := os.WriteFile(path, []byte("env: prod\napp_url: https://api.school.test\nredirect_delay: 500ms\n"), 0o600)
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "https://api.school.test", cfg.AppURL)
	require.Equal(t, 500*time.Millisecond, cfg.RedirectDelay)
}

func TestLoad_FileDoesNotExist(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadStub(t *testing.T) {
	unsetenv(t, "ENV")
	t.Setenv("STORAGE_PATH", "storage/stub.db")
	t.Setenv("HTTP_SERVER_ADDR", "localhost:3000")

	cfg, err := config.LoadStub("")
	require.NoError(t, err)
	require.Equal(t, "storage/stub.db", cfg.StoragePath)
	require.Equal(t, "localhost:3000", cfg.Addr)
}

func TestPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	require.Equal(t, "flag.yaml", config.Path("flag.yaml"))

	t.Setenv("CONFIG_PATH", "env.yaml")
	require.Equal(t, "env.yaml", config.Path("flag.yaml"))
}
