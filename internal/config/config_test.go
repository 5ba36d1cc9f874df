package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, "sqlite", cfg.EventStore.NormalizedType())
	assert.Equal(t, "same", cfg.ReferenceStore.Type)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Queue.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Refresh.Interval)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("EVENT_DB_TYPE", "postgresql")
	t.Setenv("REFERENCE_DB_TYPE", "mysql")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_LOCK_TTL", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.EventStore.NormalizedType())
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "redis:6379", cfg.Redis.Address())
	assert.Equal(t, 3*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_RejectsUnknownReferenceStore(t *testing.T) {
	t.Setenv("REFERENCE_DB_TYPE", "excel")

	_, err := Load()
	assert.Error(t, err)
}

func TestDSNs(t *testing.T) {
	e := EventStoreConfig{User: "u", Password: "p", Host: "db", Port: 5432, Name: "warehouse", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/warehouse?sslmode=disable", e.PostgresDSN())

	r := ReferenceStoreConfig{User: "root", Password: "pw", Host: "mysql", Port: 3306, Name: "warehouse"}
	assert.Equal(t, "root:pw@tcp(mysql:3306)/warehouse?parseTime=true", r.MySQLDSN())
}
