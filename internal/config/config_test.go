package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "./uploads", cfg.Storage.UploadDir)
	assert.Equal(t, "Doc_to_Pdf", cfg.Server.FileField)
	assert.Equal(t, "Hello Docs", cfg.Server.Greeting)
	assert.Equal(t, "auto", cfg.Converter.Engine)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, "docconvert", cfg.Telemetry.ServiceName)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PORT", "8081")
	t.Setenv("UPLOAD_DIR", "/srv/uploads")
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("CONVERT_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "/srv/uploads", cfg.Storage.UploadDir)
	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 30*time.Second, cfg.Converter.Timeout)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	p := writeConfig(t, `server:
  port: "7000"
  file_field: "file"
storage:
  upload_dir: "/data"
converter:
  engine: "libreoffice"
  timeout: 45s
`)
	t.Setenv("CONFIG_PATH", p)
	t.Setenv("UPLOAD_DIR", "/override")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "file", cfg.Server.FileField)
	assert.Equal(t, "/override", cfg.Storage.UploadDir)
	assert.Equal(t, "libreoffice", cfg.Converter.Engine)
	assert.Equal(t, 45*time.Second, cfg.Converter.Timeout)
	// untouched keys keep their defaults
	assert.Equal(t, "Hello Docs", cfg.Server.Greeting)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *AppConfig)
	}{
		{name: "empty port", mutate: func(c *AppConfig) { c.Server.Port = "" }},
		{name: "empty field", mutate: func(c *AppConfig) { c.Server.FileField = "" }},
		{name: "zero body limit", mutate: func(c *AppConfig) { c.Server.BodyLimitMB = 0 }},
		{name: "unknown driver", mutate: func(c *AppConfig) { c.Storage.Driver = "ftp" }},
		{name: "disk without dir", mutate: func(c *AppConfig) { c.Storage.UploadDir = "" }},
		{name: "unknown engine", mutate: func(c *AppConfig) { c.Converter.Engine = "magic" }},
		{name: "remote without url", mutate: func(c *AppConfig) { c.Converter.Engine = "remote" }},
		{name: "negative timeout", mutate: func(c *AppConfig) { c.Converter.Timeout = -time.Second }},
		{name: "limit without interval", mutate: func(c *AppConfig) {
			c.RateLimit.Limit = 5
			c.RateLimit.Interval = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_ENV_VAR", "value")

	assert.Equal(t, "value", getEnv("TEST_ENV_VAR", "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	t.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	t.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	t.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	t.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	t.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"

	t.Setenv(key, "90s")
	assert.Equal(t, 90*time.Second, getEnvDuration(key, time.Second))

	t.Setenv(key, "soon")
	assert.Equal(t, time.Second, getEnvDuration(key, time.Second))
}

func TestLocation(t *testing.T) {
	cfg := Defaults()
	cfg.Logger.Timezone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.Logger.Timezone = "UTC"
	assert.Equal(t, "UTC", cfg.Location().String())
}
