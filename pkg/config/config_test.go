package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PLUS_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 100, cfg.Database.MaxOpenConns)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.False(t, cfg.Redis.Enabled())

	assert.Equal(t, "jwt", cfg.JWT.Realm)
	assert.Equal(t, 12*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 10*time.Second, cfg.JWT.Leeway)

	assert.Equal(t, "api", cfg.API.Realm)
	assert.Equal(t, 600*time.Second, cfg.API.RequestExpire)
	assert.Equal(t, 4*time.Second, cfg.API.NonceExpire)
	assert.Equal(t, "request_nonce", cfg.API.NoncePrefix)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "@every 1m", cfg.Task.NonceSweepSpec)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: "9090"
database:
  driver: postgres
  dsn: "host=localhost user=postgres dbname=plus"
jwt:
  secret_key: file-secret
  ttl: 2h
redis:
  url: redis://localhost:6379/1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "file-secret", cfg.JWT.SecretKey)
	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)
	assert.True(t, cfg.Redis.Enabled())
	// 未覆盖的保持默认
	assert.Equal(t, 10*time.Second, cfg.JWT.Leeway)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PLUS_CONFIG", "")
	t.Setenv("PLUS_SERVER_PORT", "7070")
	t.Setenv("PLUS_DATABASE_DRIVER", "mysql")
	t.Setenv("PLUS_DATABASE_DSN", "root:pwd@tcp(127.0.0.1:3306)/plus?parseTime=true")
	t.Setenv("PLUS_JWT_SECRET_KEY", "env-secret")
	t.Setenv("PLUS_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "env-secret", cfg.JWT.SecretKey)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PLUS_CONFIG", "")

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("PLUS_DATABASE_DRIVER", "oracle")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}
