package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/docuchat/chat-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration. It is built once at startup
// and passed into component constructors; nothing reads the environment
// afterwards.
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// External service configurations
	RetrievalCfg  RetrievalConnectorConfig `envPrefix:"RETRIEVAL_"`
	GenerationCfg GenerationConfig         `envPrefix:"GENERATION_"`

	// Auth configuration
	JWTSecret string `env:"JWT_SECRET,notEmpty"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Speech upload limit
	MaxAudioFileSize int64 `env:"MAX_AUDIO_FILE_SIZE" envDefault:"26214400"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

// RetrievalConnectorConfig configures the document retrieval service client.
// ServiceURL is intentionally optional: an unset URL is reported as a
// configuration error at the call site, not at startup.
type RetrievalConnectorConfig struct {
	HTTPClientConfig
	ServiceURL string               `env:"SERVICE_URL"`
	CacheTTL   time.Duration        `env:"CACHE_TTL" envDefault:"60s"`
	Retry      pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// GenerationConfig configures the generative model provider. BaseURL is
// optional and overrides the provider default for OpenAI-compatible
// gateways. The API key also serves the speech transcription endpoint.
type GenerationConfig struct {
	APIKey         string        `env:"API_KEY"`
	BaseURL        string        `env:"BASE_URL"`
	ChatModel      string        `env:"CHAT_MODEL" envDefault:"gpt-4o-mini"`
	WhisperModel   string        `env:"WHISPER_MODEL" envDefault:"whisper-1"`
	RequestTimeout time.Duration `env:"TIMEOUT" envDefault:"60s"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	Token                 string        `env:"TOKEN"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		return fmt.Errorf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns)
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns)
	}

	if cfg.MaxAudioFileSize < 1 {
		return fmt.Errorf("MAX_AUDIO_FILE_SIZE must be positive, got %d", cfg.MaxAudioFileSize)
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
