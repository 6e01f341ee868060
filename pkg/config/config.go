package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration, loaded once at startup and passed
// by pointer into every component. Never mutated after Load returns.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Pipeline  PipelineConfig
	Retrieval RetrievalConfig
	ASR       ASRConfig
	Embedding EmbeddingConfig
	LLM       LLMConfig
	BotToken  string
	AdminChat string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds job-store database configuration.
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds cache configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig holds signing configuration for the bearer tokens that identify
// API callers.
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// StorageConfig holds artifact-store configuration.
type StorageConfig struct {
	DataRoot        string
	MirrorEnabled   bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// PipelineConfig holds scheduler and worker tuning knobs.
type PipelineConfig struct {
	DownloadConcurrency   int
	TranscribeConcurrency int
	ChunkConcurrency      int
	EmbedConcurrency      int
	GlobalTaskCeiling     int
	TickInterval          time.Duration
	ClaimLeaseDuration    time.Duration
	MaxAttempts           int
	DedupWindow           time.Duration
	HighWaterMark         int
	ChunkSize             int
	ChunkOverlap          int
	EmbedBatchSize        int

	URLSensorInterval           time.Duration
	AudioFileSensorInterval     time.Duration
	HealthSensorInterval        time.Duration
	CleanupSensorInterval       time.Duration
	CleanupRetention            time.Duration
	AlertDispatchSensorInterval time.Duration
	IngressDir                  string

	ASRTimeout       time.Duration
	EmbeddingTimeout time.Duration
	LLMTimeout       time.Duration

	FailureRateThreshold    float64
	BacklogThreshold        int
	LeaseExpiryAlertPerHour int
	StorageCapBytes         int64
}

// RetrievalConfig holds query-path defaults.
type RetrievalConfig struct {
	DefaultVariant string
	SemanticWeight float64
	LexicalWeight  float64
	RerankMultiple int
	RewriteCount   int
	RRFK           int
	DefaultTopK    int
}

// ASRConfig configures the speech-recognition adapter.
type ASRConfig struct {
	APIKey         string
	Model          string
	Device         string
	WebhookBaseURL string
	WebhookSecret  string
}

// EmbeddingConfig configures the embedding-model adapter.
type EmbeddingConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Dim     int
}

// LLMConfig configures the chat/completion adapter.
type LLMConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Load populates Config from environment variables, optionally sourced
// from a .env file, applying defaults for everything unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "*")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "yt_rag_engine"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "change-me-in-production"),
			Expiry: getEnvAsDuration("JWT_EXPIRY", "24h"),
		},
		Storage: StorageConfig{
			DataRoot:        getEnv("DATA_ROOT", "./data"),
			MirrorEnabled:   getEnvAsBool("STORAGE_MIRROR_ENABLED", false),
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "yt-rag-artifacts"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
		},
		Pipeline: PipelineConfig{
			DownloadConcurrency:         getEnvAsInt("CONCURRENCY_DOWNLOAD", 2),
			TranscribeConcurrency:       getEnvAsInt("CONCURRENCY_TRANSCRIBE", 1),
			ChunkConcurrency:            getEnvAsInt("CONCURRENCY_CHUNK", 4),
			EmbedConcurrency:            getEnvAsInt("CONCURRENCY_EMBED", 4),
			GlobalTaskCeiling:           getEnvAsInt("GLOBAL_TASK_CEILING", 32),
			TickInterval:                getEnvAsDuration("SCHEDULER_TICK", "1s"),
			ClaimLeaseDuration:          getEnvAsDuration("CLAIM_LEASE_DURATION", "10m"),
			MaxAttempts:                 getEnvAsInt("MAX_ATTEMPTS", 3),
			DedupWindow:                 getEnvAsDuration("DEDUP_WINDOW", "24h"),
			HighWaterMark:               getEnvAsInt("BACKPRESSURE_HIGH_WATER_MARK", 200),
			ChunkSize:                   getEnvAsInt("CHUNK_SIZE", 300),
			ChunkOverlap:                getEnvAsInt("CHUNK_OVERLAP", 75),
			EmbedBatchSize:              getEnvAsInt("EMBED_BATCH_SIZE", 32),
			URLSensorInterval:           getEnvAsDuration("URL_SENSOR_INTERVAL", "30s"),
			AudioFileSensorInterval:     getEnvAsDuration("AUDIO_FILE_SENSOR_INTERVAL", "60s"),
			HealthSensorInterval:        getEnvAsDuration("HEALTH_SENSOR_INTERVAL", "5m"),
			CleanupSensorInterval:       getEnvAsDuration("CLEANUP_SENSOR_INTERVAL", "1h"),
			CleanupRetention:            getEnvAsDuration("CLEANUP_RETENTION", "168h"),
			AlertDispatchSensorInterval: getEnvAsDuration("ALERT_DISPATCH_SENSOR_INTERVAL", "2m"),
			IngressDir:                  getEnv("INGRESS_DIR", "./data/ingress"),
			ASRTimeout:                  getEnvAsDuration("ASR_TIMEOUT", "60s"),
			EmbeddingTimeout:            getEnvAsDuration("EMBEDDING_TIMEOUT", "30s"),
			LLMTimeout:                  getEnvAsDuration("LLM_TIMEOUT", "60s"),
			FailureRateThreshold:        0.10,
			BacklogThreshold:            getEnvAsInt("ALERT_BACKLOG_THRESHOLD", 100),
			LeaseExpiryAlertPerHour:     3,
			StorageCapBytes:             int64(getEnvAsInt("ALERT_STORAGE_CAP_MB", 20000)) * 1024 * 1024,
		},
		Retrieval: RetrievalConfig{
			DefaultVariant: getEnv("RETRIEVAL_VARIANT", "hybrid"),
			SemanticWeight: 0.7,
			LexicalWeight:  0.3,
			RerankMultiple: 3,
			RewriteCount:   3,
			RRFK:           60,
			DefaultTopK:    getEnvAsInt("DEFAULT_TOP_K", 5),
		},
		ASR: ASRConfig{
			APIKey:         os.Getenv("ASSEMBLYAI_API_KEY"),
			Model:          getEnv("ASR_MODEL", "assemblyai-default"),
			Device:         getEnv("DEVICE", "auto"),
			WebhookBaseURL: os.Getenv("ASR_WEBHOOK_BASE_URL"),
			WebhookSecret:  os.Getenv("ASR_WEBHOOK_SECRET"),
		},
		Embedding: EmbeddingConfig{
			APIKey:  os.Getenv("EMBEDDING_API_KEY"),
			Model:   getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			BaseURL: getEnv("EMBEDDING_BASE_URL", "https://api.openai.com"),
			Dim:     getEnvAsInt("EMBEDDING_DIM", 1536),
		},
		LLM: LLMConfig{
			APIKey:  os.Getenv("LLM_API_KEY"),
			Model:   getEnv("LLM_MODEL", "llama-3.1-70b-versatile"),
			BaseURL: getEnv("LLM_BASE_URL", "https://api.groq.com"),
		},
		BotToken:  os.Getenv("BOT_TOKEN"),
		AdminChat: os.Getenv("ADMIN_CHAT_ID"),
	}

	return cfg, cfg.Validate()
}

// Validate checks cross-field invariants.
func (c *Config) Validate() error {
	if c.Pipeline.ChunkOverlap >= c.Pipeline.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be smaller than CHUNK_SIZE")
	}
	if c.Pipeline.MaxAttempts < 1 {
		return fmt.Errorf("MAX_ATTEMPTS must be >= 1")
	}
	return nil
}

// GetDatabaseDSN returns the Postgres connection string.
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.Name, c.Database.SSLMode,
	)
}

// GetRedisAddr returns the redis host:port.
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
