package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// History backends accepted by HISTORY_BACKEND.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "pg"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"ENV"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	GinMode        string        `mapstructure:"GIN_MODE"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	EnableDB       bool          `mapstructure:"ENABLE_DB"`
	DBMaxConns     int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32         `mapstructure:"DB_MIN_CONNS"`
	HistoryBackend string        `mapstructure:"HISTORY_BACKEND"`
	SQLitePath     string        `mapstructure:"SQLITE_PATH"`
	GeminiAPIKey   string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel    string        `mapstructure:"GEMINI_MODEL"`
	AITimeout      time.Duration `mapstructure:"AI_TIMEOUT"`
	RiskPolicyFile string        `mapstructure:"RISK_POLICY_FILE"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	DefaultUserID  string        `mapstructure:"DEFAULT_USER_ID"`
	MaxBodyBytes   int64         `mapstructure:"MAX_BODY_BYTES"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "GIN_MODE", "DATABASE_URL", "ENABLE_DB",
	"DB_MAX_CONNS", "DB_MIN_CONNS", "HISTORY_BACKEND", "SQLITE_PATH",
	"GEMINI_API_KEY", "GEMINI_MODEL", "AI_TIMEOUT", "RISK_POLICY_FILE",
	"CORS_ORIGINS", "DEFAULT_USER_ID", "MAX_BODY_BYTES",
}

// Load reads .env (if present) into the process environment and then
// resolves every setting from the environment, falling back to defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("ENABLE_DB", false)
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("HISTORY_BACKEND", BackendMemory)
	v.SetDefault("SQLITE_PATH", "data/carefusion.db")
	v.SetDefault("GEMINI_MODEL", "gemini-3-flash-preview")
	v.SetDefault("AI_TIMEOUT", "30s")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("DEFAULT_USER_ID", "user_123")
	v.SetDefault("MAX_BODY_BYTES", 1<<20)

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.HistoryBackend = strings.ToLower(strings.TrimSpace(cfg.HistoryBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with. A missing
// GEMINI_API_KEY is not an error here: assessment reports it per request.
func (c *Config) Validate() error {
	if c.EnableDB && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}
	switch c.HistoryBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when HISTORY_BACKEND=%s", BackendSQLite)
		}
	case BackendPostgres:
		if !c.EnableDB {
			return fmt.Errorf("HISTORY_BACKEND=%s requires ENABLE_DB=true", BackendPostgres)
		}
	default:
		return fmt.Errorf("HISTORY_BACKEND must be %q, %q or %q, got %q",
			BackendMemory, BackendSQLite, BackendPostgres, c.HistoryBackend)
	}
	if c.AITimeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive, got %s", c.AITimeout)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
