package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_EXPIRY_HOURS", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "sqlite3:taskflow.db", cfg.DatabaseURL)
	require.Equal(t, 7*24*time.Hour, cfg.JWTExpiry)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"port: \"9090\"\njwt_secret: from-file\nadmin_emails:\n  - root@example.com\njwt_expiry_hours: 2\n",
	), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("JWT_EXPIRY_HOURS", "")
	t.Setenv("ADMIN_EMAILS", "")
	t.Setenv("CORS_ORIGINS", " http://a.test , ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "from-env", cfg.JWTSecret)
	require.Equal(t, []string{"root@example.com"}, cfg.AdminEmails)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	require.Equal(t, 2*time.Hour, cfg.JWTExpiry)
}

func TestLoad_RejectsNonPositiveExpiry(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_EXPIRY_HOURS", "0")

	_, err := Load()
	require.Error(t, err)
}
