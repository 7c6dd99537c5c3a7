package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
server:
  port: 9090
database:
  host: localhost
  user: rentacar
  database: rentacar
jwt:
  secret: "0123456789abcdef0123456789abcdef"
storage:
  type: mock
  upload_dir: ./uploads
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "log", cfg.Email.Provider)
	assert.Equal(t, "email-queue", cfg.Email.QueueKey)
	assert.Equal(t, 3, cfg.Email.MaxRetries)
	assert.Equal(t, "http://localhost:9090", cfg.Storage.BaseURL)
	assert.Equal(t, "0 0 8 * * *", cfg.Scheduler.SendDueReminders)
	assert.Equal(t, "postgres://rentacar:@localhost:5432/rentacar?sslmode=disable", cfg.GetDatabaseConnectionString())
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestValidate_Errors(t *testing.T) {
	t.Run("Short JWT secret", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
database: {host: h, user: u, database: d}
jwt: {secret: short}
storage: {upload_dir: ./u}
`))
		assert.ErrorContains(t, err, "JWT secret must be at least 32 characters")
	})

	t.Run("S3 without bucket", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
database: {host: h, user: u, database: d}
jwt: {secret: "0123456789abcdef0123456789abcdef"}
storage: {type: s3}
`))
		assert.ErrorContains(t, err, "S3 bucket is required")
	})

	t.Run("SMTP provider without host", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
database: {host: h, user: u, database: d}
jwt: {secret: "0123456789abcdef0123456789abcdef"}
storage: {upload_dir: ./u}
email: {provider: smtp}
`))
		assert.ErrorContains(t, err, "SMTP host is required")
	})
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RENTACAR_TEST_VALUE=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("RENTACAR_TEST_VALUE") })

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path))
	assert.Equal(t, "from-dotenv", os.Getenv("RENTACAR_TEST_VALUE"))
}

func TestGetSecurityLevel(t *testing.T) {
	assert.Equal(t, SecurityPublic, GetSecurityLevel("auth.login"))
	assert.Equal(t, SecurityRefresh, GetSecurityLevel("auth.refresh"))
	assert.Equal(t, SecurityAdmin, GetSecurityLevel("rent.requests.admit"))
	assert.Equal(t, SecurityAccess, GetSecurityLevel("rent.create"))
}
