package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendMemory, cfg.HistoryBackend)
	assert.Equal(t, 30*time.Second, cfg.AITimeout)
	assert.Equal(t, "gemini-3-flash-preview", cfg.GeminiModel)
	assert.Equal(t, "user_123", cfg.DefaultUserID)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.False(t, cfg.EnableDB)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("HISTORY_BACKEND", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.AITimeout)
	assert.Equal(t, BackendSQLite, cfg.HistoryBackend)
	assert.Len(t, cfg.CORSOrigins, 2)
}

func TestLoad_RequiresDatabaseURLWhenEnabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENABLE_DB", "true")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{HistoryBackend: BackendMemory, AITimeout: time.Second, MaxBodyBytes: 1 << 20, DBMaxConns: 10, DBMinConns: 1}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults ok", mutate: func(c *Config) {}},
		{name: "pg without db", mutate: func(c *Config) { c.HistoryBackend = BackendPostgres }, wantErr: true},
		{name: "pg with db", mutate: func(c *Config) {
			c.HistoryBackend = BackendPostgres
			c.EnableDB = true
			c.DatabaseURL = "postgres://localhost/test"
		}},
		{name: "unknown backend", mutate: func(c *Config) { c.HistoryBackend = "redis" }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.HistoryBackend = BackendSQLite }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.AITimeout = 0 }, wantErr: true},
		{name: "zero body limit", mutate: func(c *Config) { c.MaxBodyBytes = 0 }, wantErr: true},
		{name: "min above max", mutate: func(c *Config) { c.DBMinConns = 20 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	assert.True(t, c.IsDev())
	c.Env = "production"
	assert.False(t, c.IsDev())
}
