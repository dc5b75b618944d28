package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("ENV", "")

	conf := NewConfig(t.TempDir())
	assert.Equal(t, "DEV", conf.Env)
	assert.True(t, conf.Debug)
	assert.False(t, conf.TestMode)
	assert.Equal(t, "/sign-in", conf.SignInPath)
	assert.Equal(t, 500*time.Millisecond, conf.SearchDebounce)
	assert.Equal(t, "http://localhost:8000/api", conf.API.BaseURL)
	assert.Equal(t, "file", conf.Storage.Driver)
	assert.NotEmpty(t, conf.Storage.Dir)
}

func TestNewConfig_Env(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("PROD_API_BASEURL", "https://masomo.test/api/")
	t.Setenv("PROD_STORAGE_DRIVER", "Redis")
	t.Setenv("PROD_SEARCH_DEBOUNCE", "250ms")

	conf := NewConfig(t.TempDir())
	assert.Equal(t, "PROD", conf.Env)
	assert.False(t, conf.Debug)
	assert.Equal(t, "https://masomo.test/api", conf.API.BaseURL)
	assert.Equal(t, "redis", conf.Storage.Driver)
	assert.Equal(t, 250*time.Millisecond, conf.SearchDebounce)
}

func TestNewConfig_DotEnv(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Cleanup(func() { _ = os.Unsetenv("TEST_APPNAME") })

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", ".env.test"), []byte("TEST_APPNAME=Masomo QA\n"), 0o600))

	conf := NewConfig(dir)
	assert.True(t, conf.TestMode)
	assert.Equal(t, "Masomo QA", conf.AppName)
}
