package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(vars map[string]string) envLookup {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

type walkTarget struct {
	Name    string        `env:"T_NAME"`
	Workers uint8         `env:"T_WORKERS"`
	Timeout time.Duration `env:"T_TIMEOUT"`
	Hosts   []string      `env:"T_HOSTS"`
	Nested  struct {
		Enabled bool `env:"T_ENABLED"`
		Port    int  `env:"T_PORT"`
	}
	Untagged string
}

func TestEnvOverridesSetsTaggedFields(t *testing.T) {
	var target walkTarget
	target.Untagged = "kept"

	applied, err := envOverrides(&target, mapLookup(map[string]string{
		"T_NAME":    "  sims  ",
		"T_WORKERS": "4",
		"T_TIMEOUT": "90s",
		"T_HOSTS":   "a.example, ,b.example",
		"T_ENABLED": "true",
		"T_PORT":    "6380",
	}))
	require.NoError(t, err)

	assert.Equal(t, "sims", target.Name)
	assert.EqualValues(t, 4, target.Workers)
	assert.Equal(t, 90*time.Second, target.Timeout)
	assert.Equal(t, []string{"a.example", "b.example"}, target.Hosts)
	assert.True(t, target.Nested.Enabled)
	assert.Equal(t, 6380, target.Nested.Port)
	assert.Equal(t, "kept", target.Untagged)
	assert.ElementsMatch(t, []string{"T_NAME", "T_WORKERS", "T_TIMEOUT", "T_HOSTS", "T_ENABLED", "T_PORT"}, applied)
}

func TestEnvOverridesReportsEveryBadVariable(t *testing.T) {
	var target walkTarget
	applied, err := envOverrides(&target, mapLookup(map[string]string{
		"T_NAME":    "ok",
		"T_WORKERS": "300",
		"T_TIMEOUT": "soon",
		"T_PORT":    "http",
	}))
	require.Error(t, err)

	assert.Contains(t, err.Error(), "T_WORKERS (Workers)")
	assert.Contains(t, err.Error(), "T_TIMEOUT (Timeout)")
	assert.Contains(t, err.Error(), "T_PORT (Nested.Port)")
	assert.Equal(t, []string{"T_NAME"}, applied)
	assert.Equal(t, "ok", target.Name)
}

func TestLoadConfigLayersFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
server:
  port: "9000"
database:
  driver: memory
jwt:
  secret: from-file
redis:
  pool_size: 3
`), 0o600))

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("REDIS_POOL_SIZE", "12")

	cfg, err := LoadConfig(configPath, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 12, cfg.Redis.PoolSize)
	assert.Equal(t, "1h", cfg.JWT.AccessTokenExpiration)
	assert.Contains(t, cfg.EnvOverrides, "JWT_SECRET")
	assert.Contains(t, cfg.EnvOverrides, "REDIS_POOL_SIZE")
}

func TestLoadConfigRejectsMalformedEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", DriverMemory)
	t.Setenv("SMTP_PORT", "not-a-port")

	_, err := LoadConfig(filepath.Join(dir, "none.yaml"), filepath.Join(dir, "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_PORT")
}
