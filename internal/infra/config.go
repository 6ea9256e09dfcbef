package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	CatalogBackendFile     = "file"
	CatalogBackendPostgres = "postgres"

	OutputBackendFilesystem = "filesystem"
	OutputBackendMinIO      = "minio"

	CascadeLast = "last"
	CascadeAll  = "all"

	ExpansionChain  = "chain"
	ExpansionPerUse = "per_use"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	// SubmitRateLimit caps /data_prep submissions per client per minute; 0 disables it.
	SubmitRateLimit  int

	CatalogBackend string
	CatalogPath    string
	DatabaseURL    string

	WorkerConcurrency int
	TicketBuffer      int
	CascadeMode       string
	ExpansionMode     string

	OutputBackend  string
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIORegion    string
	MinIOBucket    string
	MinIOPrefix    string
	MinIOUseSSL    bool
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "5000"),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		SubmitRateLimit:   getEnvInt("SUBMIT_RATE_LIMIT", 30),
		CatalogBackend:    strings.ToLower(getEnv("CATALOG_BACKEND", CatalogBackendFile)),
		CatalogPath:       getEnv("CATALOG_PATH", "./config/catalog.json"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 4),
		TicketBuffer:      getEnvInt("TICKET_BUFFER", 16),
		CascadeMode:       strings.ToLower(getEnv("CASCADE_MODE", CascadeLast)),
		ExpansionMode:     strings.ToLower(getEnv("EXPANSION_MODE", ExpansionChain)),
		OutputBackend:     strings.ToLower(getEnv("OUTPUT_BACKEND", OutputBackendFilesystem)),
		MinIOEndpoint:     getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey:    os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey:    os.Getenv("MINIO_SECRET_KEY"),
		MinIORegion:       getEnv("MINIO_REGION", "us-east-1"),
		MinIOBucket:       getEnv("MINIO_BUCKET", "dataprep"),
		MinIOPrefix:       os.Getenv("MINIO_PREFIX"),
		MinIOUseSSL:       getEnvBool("MINIO_USE_SSL", false),
	}

	switch cfg.CatalogBackend {
	case CatalogBackendFile:
		if strings.TrimSpace(cfg.CatalogPath) == "" {
			return nil, fmt.Errorf("CATALOG_PATH is required for the file catalog")
		}
	case CatalogBackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres catalog")
		}
	default:
		return nil, fmt.Errorf("unsupported CATALOG_BACKEND %q", cfg.CatalogBackend)
	}

	switch cfg.OutputBackend {
	case OutputBackendFilesystem:
	case OutputBackendMinIO:
		if cfg.MinIOAccessKey == "" || cfg.MinIOSecretKey == "" {
			return nil, fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio output")
		}
		if strings.Contains(cfg.MinIOEndpoint, "://") {
			return nil, fmt.Errorf("MINIO_ENDPOINT must not include scheme: %q", cfg.MinIOEndpoint)
		}
	default:
		return nil, fmt.Errorf("unsupported OUTPUT_BACKEND %q", cfg.OutputBackend)
	}

	if cfg.CascadeMode != CascadeLast && cfg.CascadeMode != CascadeAll {
		return nil, fmt.Errorf("unsupported CASCADE_MODE %q", cfg.CascadeMode)
	}
	if cfg.ExpansionMode != ExpansionChain && cfg.ExpansionMode != ExpansionPerUse {
		return nil, fmt.Errorf("unsupported EXPANSION_MODE %q", cfg.ExpansionMode)
	}
	if cfg.WorkerConcurrency < 1 {
		cfg.WorkerConcurrency = 1
	}
	if cfg.TicketBuffer < 0 {
		cfg.TicketBuffer = 0
	}
	if cfg.SubmitRateLimit < 0 {
		cfg.SubmitRateLimit = 0
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
