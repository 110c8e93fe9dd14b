package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Conversation store backends
const (
	StoreDynamoDB = "dynamodb"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Generation providers
const (
	ProviderBedrock = "bedrock"
	ProviderOpenAI  = "openai"
)

// Config holds application configuration
type Config struct {
	Server       ServerConfig
	Log          LogConfig
	AWS          AWSConfig
	Storage      StorageConfig
	Transcribe   TranscribeConfig
	Generation   GenerationConfig
	Conversation ConversationConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Assembly     AssemblyAIConfig
	Kafka        KafkaConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8000"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	FrontendHost    string   `envconfig:"FRONTEND_HOST" default:"http://localhost:5173"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173,http://127.0.0.1:5173,http://127.0.0.1:3000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// AWSConfig holds the credentials shared by every AWS-facing client
type AWSConfig struct {
	Region          string `envconfig:"AWS_DEFAULT_REGION" default:"us-east-1"`
	AccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	SessionToken    string `envconfig:"AWS_SESSION_TOKEN"`
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Endpoint         string        `envconfig:"STORAGE_ENDPOINT" default:"s3.amazonaws.com"`
	BucketName       string        `envconfig:"S3_BUCKET_NAME" default:"live-call-insight-db"`
	UseSSL           bool          `envconfig:"STORAGE_USE_SSL" default:"true"`
	PublicURL        string        `envconfig:"STORAGE_PUBLIC_URL"`
	KnowledgePrefix  string        `envconfig:"KNOWLEDGE_BASE_PREFIX" default:"knowledge-base/"`
	RecordingsPrefix string        `envconfig:"RECORDINGS_PREFIX" default:"recordings/"`
	PresignExpiry    time.Duration `envconfig:"PRESIGN_EXPIRY" default:"1h"`
}

// TranscribeConfig holds the streaming transcription endpoint parameters
type TranscribeConfig struct {
	// Endpoint overrides the regional wss endpoint (local emulators, tests)
	Endpoint      string        `envconfig:"TRANSCRIBE_ENDPOINT"`
	LanguageCode  string        `envconfig:"TRANSCRIBE_LANGUAGE_CODE" default:"en-US"`
	MediaEncoding string        `envconfig:"TRANSCRIBE_MEDIA_ENCODING" default:"pcm"`
	SampleRate    int           `envconfig:"TRANSCRIBE_SAMPLE_RATE" default:"44100"`
	URLExpiry     time.Duration `envconfig:"TRANSCRIBE_URL_EXPIRY" default:"5m"`
}

// GenerationConfig holds answer generation configuration
type GenerationConfig struct {
	Provider        string        `envconfig:"GENERATION_PROVIDER" default:"bedrock"`
	BedrockModelID  string        `envconfig:"BEDROCK_MODEL_ID"`
	OpenAIAPIKey    string        `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL   string        `envconfig:"OPENAI_BASE_URL"`
	OpenAIModel     string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	MaxTokens       int           `envconfig:"GENERATION_MAX_TOKENS" default:"512"`
	Temperature     float64       `envconfig:"GENERATION_TEMPERATURE" default:"0.7"`
	TopP            float64       `envconfig:"GENERATION_TOP_P" default:"0.9"`
	Timeout         time.Duration `envconfig:"GENERATION_TIMEOUT" default:"60s"`
	ContextCacheTTL time.Duration `envconfig:"KNOWLEDGE_CONTEXT_CACHE_TTL" default:"0s"`
}

// ConversationConfig selects the conversation store backend
type ConversationConfig struct {
	Store          string        `envconfig:"CONVERSATION_STORE" default:"dynamodb"`
	DynamoTable    string        `envconfig:"CONVERSATION_TABLE" default:"CallConversations"`
	RedisKeyPrefix string        `envconfig:"CONVERSATION_REDIS_PREFIX" default:"conversation:"`
	SaveTimeout    time.Duration `envconfig:"CONVERSATION_SAVE_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"call_insights"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// AssemblyAIConfig holds batch transcription configuration
type AssemblyAIConfig struct {
	APIKey       string        `envconfig:"ASSEMBLYAI_API_KEY"`
	LanguageCode string        `envconfig:"ASSEMBLYAI_LANGUAGE_CODE" default:"en_us"`
	JobTimeout   time.Duration `envconfig:"TRANSCRIPTION_JOB_TIMEOUT" default:"10m"`
}

// KafkaConfig holds the finalized-segment event publisher configuration
type KafkaConfig struct {
	Enabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers []string `envconfig:"KAFKA_BROKERS"`
	Topic   string   `envconfig:"KAFKA_TOPIC_SEGMENTS" default:"call.transcript.final"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if config.Server.FrontendHost != "" && !contains(config.Server.AllowedOrigins, config.Server.FrontendHost) {
		config.Server.AllowedOrigins = append([]string{config.Server.FrontendHost}, config.Server.AllowedOrigins...)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Storage.BucketName == "" {
		return fmt.Errorf("S3_BUCKET_NAME is required")
	}
	if c.Storage.KnowledgePrefix == "" {
		return fmt.Errorf("KNOWLEDGE_BASE_PREFIX must not be empty")
	}

	switch c.Generation.Provider {
	case ProviderBedrock:
		if c.Generation.BedrockModelID == "" {
			return fmt.Errorf("BEDROCK_MODEL_ID is required when GENERATION_PROVIDER=%s", ProviderBedrock)
		}
	case ProviderOpenAI:
		if c.Generation.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when GENERATION_PROVIDER=%s", ProviderOpenAI)
		}
	default:
		return fmt.Errorf("unsupported GENERATION_PROVIDER %q", c.Generation.Provider)
	}

	switch c.Conversation.Store {
	case StoreDynamoDB, StoreRedis, StorePostgres:
	default:
		return fmt.Errorf("unsupported CONVERSATION_STORE %q", c.Conversation.Store)
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED=true")
	}
	return nil
}

// IsProduction reports whether the server runs with production settings
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// GetServerAddr returns the listen address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
