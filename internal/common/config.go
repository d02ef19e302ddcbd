package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Store  StoreConfig
	Fetch  FetchConfig
	Engine EngineConfig
}

// StoreConfig selects and configures the job store backend.
type StoreConfig struct {
	Backend     string // xlsx | sqlite | postgres
	XLSXPath    string
	SheetName   string
	SQLitePath  string
	DSN         string
	MaxConns    int32
	MinConns    int32
	DialTimeout time.Duration
}

// FetchConfig configures the remote content fetcher.
type FetchConfig struct {
	BaseURL string
	Timeout time.Duration
}

// EngineConfig holds the reconciliation knobs. All values are plain data;
// there are no hidden defaults beyond what LoadConfig documents.
type EngineConfig struct {
	MaxAttempts       int           // per-job fetch attempt ceiling
	MaxBatches        int           // batch passes in persistent mode
	RateLimitCooldown time.Duration // wait after a rate-limit response
	RetryBaseDelay    time.Duration // grows linearly with the attempt number
	RetryJitterMin    time.Duration
	RetryJitterMax    time.Duration
	JobDelayMin       time.Duration // pacing between jobs
	JobDelayMax       time.Duration
	BatchCooldown     time.Duration // pacing between batch passes
	CaptionMax        int           // caption cap in runes
	ForceRefresh      bool          // re-queue SUCCESS rows too
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:     getEnv("PS_STORE", "xlsx"),
			XLSXPath:    getEnv("PS_XLSX_PATH", "jobs.xlsx"),
			SheetName:   getEnv("PS_SHEET", "Posts"),
			SQLitePath:  getEnv("PS_SQLITE_PATH", "postsync.db"),
			DSN:         getEnv("DB_URL", ""),
			MaxConns:    getEnvAsInt32("DB_MAX_CONNS", 4),
			MinConns:    getEnvAsInt32("DB_MIN_CONNS", 1),
			DialTimeout: getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Fetch: FetchConfig{
			BaseURL: getEnv("PS_FETCH_BASE_URL", ""),
			Timeout: getEnvAsDuration("PS_FETCH_TIMEOUT", 30*time.Second),
		},
		Engine: EngineConfig{
			MaxAttempts:       getEnvAsInt("PS_MAX_ATTEMPTS", 5),
			MaxBatches:        getEnvAsInt("PS_MAX_BATCHES", 3),
			RateLimitCooldown: getEnvAsDuration("PS_RATE_LIMIT_COOLDOWN", 60*time.Second),
			RetryBaseDelay:    getEnvAsDuration("PS_RETRY_BASE_DELAY", 2*time.Second),
			RetryJitterMin:    getEnvAsDuration("PS_RETRY_JITTER_MIN", 1*time.Second),
			RetryJitterMax:    getEnvAsDuration("PS_RETRY_JITTER_MAX", 3*time.Second),
			JobDelayMin:       getEnvAsDuration("PS_JOB_DELAY_MIN", 2*time.Second),
			JobDelayMax:       getEnvAsDuration("PS_JOB_DELAY_MAX", 4*time.Second),
			BatchCooldown:     getEnvAsDuration("PS_BATCH_COOLDOWN", 30*time.Second),
			CaptionMax:        getEnvAsInt("PS_CAPTION_MAX", 150),
			ForceRefresh:      getEnvAsBool("FORCE_REFRESH", false),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "xlsx":
		if c.Store.XLSXPath == "" {
			return NewAppError("CONFIG_ERROR", "PS_XLSX_PATH is required for the xlsx store", ErrInvalidInput)
		}
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return NewAppError("CONFIG_ERROR", "PS_SQLITE_PATH is required for the sqlite store", ErrInvalidInput)
		}
	case "postgres":
		if c.Store.DSN == "" {
			return NewAppError("CONFIG_ERROR", "DB_URL is required for the postgres store", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", "PS_STORE must be one of xlsx, sqlite, postgres", ErrInvalidInput)
	}
	if c.Engine.MaxAttempts < 1 {
		return NewAppError("CONFIG_ERROR", "PS_MAX_ATTEMPTS must be at least 1", ErrInvalidInput)
	}
	if c.Engine.MaxBatches < 1 {
		return NewAppError("CONFIG_ERROR", "PS_MAX_BATCHES must be at least 1", ErrInvalidInput)
	}
	if c.Engine.RetryJitterMax < c.Engine.RetryJitterMin {
		return NewAppError("CONFIG_ERROR", "PS_RETRY_JITTER_MAX must not be below PS_RETRY_JITTER_MIN", ErrInvalidInput)
	}
	if c.Engine.JobDelayMax < c.Engine.JobDelayMin {
		return NewAppError("CONFIG_ERROR", "PS_JOB_DELAY_MAX must not be below PS_JOB_DELAY_MIN", ErrInvalidInput)
	}
	return nil
}
