package config

import (
	"testing"
	"time"

	"coop-intake-go/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ADMIN_PASSWORD", "secret")

	cfg, err := Load(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 168*time.Hour, cfg.Proposals.UploadTokenTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.Proposals.BatchSyncDelay)
	assert.Equal(t, 3*time.Minute, cfg.Proposals.SyncTimeout)
	assert.Equal(t, 1280, cfg.CRM.MaxImageDimension)
	assert.Equal(t, "secret", cfg.Admin.Password)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Campaigns.CacheTTL)
	assert.Equal(t, 5*time.Minute, cfg.Worker.TaskTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BATCH_SYNC_DELAY", "2s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("DB_DSN", "postgres://x")

	cfg, err := Load(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Proposals.BatchSyncDelay)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "postgres://x", cfg.DB.GetDSN())
}

func TestGetDSNFromParts(t *testing.T) {
	cfg := DBConfig{Host: "h", User: "u", Password: "p", Name: "n", Port: "1", SSLMode: "disable", TimeZone: "UTC"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=1 sslmode=disable TimeZone=UTC", cfg.GetDSN())
}
