package config

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/upb/proof-layer/internal/rag"
	"github.com/upb/proof-layer/services"
)

// Store backends
const (
	StoreBackendPostgres = "postgres"
	StoreBackendSQLite   = "sqlite"
)

// Embedding modes
const (
	EmbeddingModeFake   = "fake"
	EmbeddingModeOpenAI = "openai"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Storage       StorageConfig
	Embedding     EmbeddingConfig
	Retrieval     RetrievalConfig
	Chunking      ChunkingConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL or SUPABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	InitSchema       bool
}

// StorageConfig holds object storage and vector store settings
type StorageConfig struct {
	Backend         string // postgres or sqlite
	SQLitePath      string
	Bucket          string
	Region          string
	ExpectedRegion  string
	Endpoint        string // optional S3-compatible endpoint, e.g. localstack
	PresignTTL      time.Duration
	AccessKeyID     string
	SecretAccessKey string
}

// EmbeddingConfig selects the embedding provider
type EmbeddingConfig struct {
	Mode       string
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Dimension  int
}

// RetrievalConfig holds the answer/refusal policy settings
type RetrievalConfig struct {
	SimilarityThreshold float64
	DefaultTopK         int
	MinTopK             int
	MaxTopK             int
	Debug               bool
}

// ChunkingConfig holds chunk window settings in characters
type ChunkingConfig struct {
	Size    int
	Overlap int
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or console
}

var awsPlaceholders = []string{
	"your_access_key_here",
	"your_secret_key_here",
	"YOUR_ACCESS_KEY_HERE",
	"YOUR_SECRET_KEY_HERE",
}

// New creates a new Config instance from .env, an optional CONFIG_FILE and
// the environment. Environment variables win over file values.
func New(ctx context.Context) (*Config, error) {
	_ = godotenv.Load(".env")

	file, err := loadFile(getEnv("CONFIG_FILE", ""))
	if err != nil {
		return nil, services.WrapConfiguration("config file", err)
	}

	db, err := loadDatabaseConfig()
	if err != nil {
		return nil, services.WrapConfiguration("database config", err)
	}

	region := getEnv("AWS_REGION", getEnv("AWS_DEFAULT_REGION", "us-east-1"))

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("API_HOST", getEnv("SERVER_HOST", "0.0.0.0")),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: db,
		Storage: StorageConfig{
			Backend:         strings.ToLower(getEnv("STORE_BACKEND", StoreBackendPostgres)),
			SQLitePath:      getEnv("SQLITE_PATH", "proof-layer.db"),
			Bucket:          getEnv("S3_BUCKET_NAME", ""),
			Region:          region,
			ExpectedRegion:  getEnv("EXPECTED_AWS_REGION", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			PresignTTL:      getEnvAsDuration("PRESIGN_TTL", time.Hour),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		Embedding: EmbeddingConfig{
			Mode:       strings.ToLower(getEnv("EMBEDDING_MODE", orString(file.Embedding.Mode, EmbeddingModeFake))),
			APIKey:     getEnv("OPENAI_API_KEY", ""),
			Model:      getEnv("OPENAI_EMBEDDING_MODEL", orString(file.Embedding.Model, "text-embedding-3-small")),
			BaseURL:    getEnv("OPENAI_BASE_URL", orString(file.Embedding.BaseURL, "")),
			Timeout:    getEnvAsDuration("OPENAI_TIMEOUT", orDuration(file.Embedding.Timeout, 30*time.Second)),
			MaxRetries: getEnvAsInt("OPENAI_MAX_RETRIES", 2),
			Dimension:  getEnvAsInt("EMBEDDING_DIMENSION", orInt(file.Embedding.Dimension, 1536)),
		},
		Retrieval: RetrievalConfig{
			SimilarityThreshold: getEnvAsFloat("SIMILARITY_THRESHOLD", orFloat(file.Retrieval.SimilarityThreshold, 0.5)),
			DefaultTopK:         getEnvAsInt("DEFAULT_TOP_K", orInt(file.Retrieval.DefaultTopK, 10)),
			MinTopK:             getEnvAsInt("MIN_TOP_K", orInt(file.Retrieval.MinTopK, 1)),
			MaxTopK:             getEnvAsInt("MAX_TOP_K", orInt(file.Retrieval.MaxTopK, rag.TopKLimit)),
			Debug:               getEnvAsBool("DEBUG_RAG", file.Retrieval.Debug),
		},
		Chunking: ChunkingConfig{
			Size:    getEnvAsInt("CHUNK_SIZE", orInt(file.Chunking.Size, 1000)),
			Overlap: getEnvAsInt("CHUNK_OVERLAP", orIntPtr(file.Chunking.Overlap, 200)),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, services.WrapConfiguration("config validation failed", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StoreBackendPostgres:
		if c.Database.ConnectionString == "" && c.Database.Host == "" {
			return fmt.Errorf("database configuration required: set DATABASE_URL, SUPABASE_URL or DB_HOST")
		}
		if c.Database.ConnectionString == "" {
			if c.Database.User == "" {
				return fmt.Errorf("database user is required")
			}
			if c.Database.Database == "" {
				return fmt.Errorf("database name is required")
			}
		}
	case StoreBackendSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store backend")
		}
	default:
		return fmt.Errorf("unsupported store backend %q (use %q or %q)", c.Storage.Backend, StoreBackendPostgres, StoreBackendSQLite)
	}

	if err := c.Storage.validateAWS(); err != nil {
		return err
	}

	switch c.Embedding.Mode {
	case EmbeddingModeFake:
	case EmbeddingModeOpenAI:
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when EMBEDDING_MODE=openai")
		}
	default:
		return fmt.Errorf("unsupported embedding mode %q (use %q or %q)", c.Embedding.Mode, EmbeddingModeFake, EmbeddingModeOpenAI)
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive")
	}

	if t := c.Retrieval.SimilarityThreshold; math.IsNaN(t) || math.IsInf(t, 0) {
		return fmt.Errorf("similarity threshold must be a finite number")
	}
	if c.Retrieval.MinTopK < 1 || c.Retrieval.MaxTopK < c.Retrieval.MinTopK {
		return fmt.Errorf("invalid top_k bounds [%d, %d]", c.Retrieval.MinTopK, c.Retrieval.MaxTopK)
	}
	if c.Retrieval.MaxTopK > rag.TopKLimit {
		return fmt.Errorf("max top_k %d exceeds %d", c.Retrieval.MaxTopK, rag.TopKLimit)
	}
	if c.Retrieval.DefaultTopK < c.Retrieval.MinTopK || c.Retrieval.DefaultTopK > c.Retrieval.MaxTopK {
		return fmt.Errorf("default top_k %d outside [%d, %d]", c.Retrieval.DefaultTopK, c.Retrieval.MinTopK, c.Retrieval.MaxTopK)
	}

	if c.Chunking.Size <= 0 {
		return fmt.Errorf("chunk size must be positive")
	}
	if c.Chunking.Overlap < 0 {
		return fmt.Errorf("chunk overlap must not be negative")
	}

	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

func (s *StorageConfig) validateAWS() error {
	for _, p := range awsPlaceholders {
		if s.AccessKeyID == p {
			return fmt.Errorf("AWS_ACCESS_KEY_ID contains placeholder value; set valid AWS credentials")
		}
		if s.SecretAccessKey == p {
			return fmt.Errorf("AWS_SECRET_ACCESS_KEY contains placeholder value; set valid AWS credentials")
		}
	}
	if s.ExpectedRegion != "" && s.Region != s.ExpectedRegion {
		return fmt.Errorf("region mismatch: AWS_REGION is %q but this stack expects %q", s.Region, s.ExpectedRegion)
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set.
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			host := u.Hostname()
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", host, port, db)
		}
		return "host=<from connection string>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// loadDatabaseConfig loads database config from DATABASE_URL, SUPABASE_URL or DB_* env vars
func loadDatabaseConfig() (DatabaseConfig, error) {
	cfg := DatabaseConfig{
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		InitSchema:      getEnvAsBool("DB_INIT_SCHEMA", false),
	}

	if dbURL := getEnv("DATABASE_URL", ""); dbURL != "" {
		cfg.ConnectionString = dbURL
		return cfg, nil
	}

	if raw := getEnv("SUPABASE_URL", ""); raw != "" {
		dsn, err := ResolveSupabaseURL(SupabaseParams{
			URL:       raw,
			Password:  getEnv("SUPABASE_DB_PASSWORD", ""),
			UsePooler: getEnvAsBool("SUPABASE_USE_POOLER", false),
			Region:    getEnv("AWS_REGION", "us-east-1"),
		})
		if err != nil {
			return cfg, err
		}
		cfg.ConnectionString = dsn
		return cfg, nil
	}

	cfg.Host = getEnv("DB_HOST", "localhost")
	cfg.Port = getEnvAsInt("DB_PORT", 5432)
	cfg.User = getEnv("DB_USER", "postgres")
	cfg.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database = getEnv("DB_NAME", "proof_layer")
	cfg.SSLMode = getEnv("DB_SSLMODE", "disable")
	return cfg, nil
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

// getPort returns the server port from PORT, API_PORT or SERVER_PORT env vars (default: 8000)
func getPort() int {
	for _, key := range []string{"PORT", "API_PORT", "SERVER_PORT"} {
		if value := os.Getenv(key); value != "" {
			if p, err := strconv.Atoi(value); err == nil {
				return p
			}
		}
	}
	return 8000
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
