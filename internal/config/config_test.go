package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, "mysql", cfg.Database.Driver)
	require.Equal(t, time.Hour, cfg.JWT.TokenTTL)
	require.Equal(t, 30*time.Minute, cfg.JWT.ResetTTL)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  port: "9000"
database:
  driver: postgres
  host: db.internal
jwt:
  token_ttl: 2h
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("DB_HOST", "override.internal")
	t.Setenv("JWT_RESET_TTL", "10m")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "9000", cfg.Server.Port)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "override.internal", cfg.Database.Host)
	require.Equal(t, 2*time.Hour, cfg.JWT.TokenTTL)
	require.Equal(t, 10*time.Minute, cfg.JWT.ResetTTL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	mysql := DatabaseConfig{Driver: "mysql", User: "u", Password: "p", Host: "h", Port: "3306", Name: "db"}
	require.Equal(t, "u:p@tcp(h:3306)/db?charset=utf8mb4&parseTime=True&loc=UTC", mysql.GetDSN())

	pg := DatabaseConfig{Driver: "postgres", User: "u", Password: "p", Host: "h", Port: "5432", Name: "db"}
	require.Contains(t, pg.GetDSN(), "host=h port=5432 user=u")

	sqlite := DatabaseConfig{Driver: "sqlite", Name: "file::memory:"}
	require.Equal(t, "file::memory:", sqlite.GetDSN())

	explicit := DatabaseConfig{Driver: "postgres", DSN: "postgres://x"}
	require.Equal(t, "postgres://x", explicit.GetDSN())
}
