package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// ChatConfig controls the chat request lifecycle.
type ChatConfig struct {
	GenerationTimeout time.Duration `validate:"gt=0"`
	MaxMessageBytes   int           `validate:"gt=0"`
	// StrictDocumentIDs rejects unknown document ids instead of ignoring them.
	StrictDocumentIDs bool
	// MaxContextChars truncates the assembled context; 0 disables truncation.
	MaxContextChars int `validate:"gte=0"`
}

// UploadConfig bounds document ingestion.
type UploadConfig struct {
	MaxBytes int64 `validate:"gt=0"`
}

// GeneratorConfig selects and tunes the text-generation provider.
type GeneratorConfig struct {
	Provider    string `validate:"oneof=openai gemini echo"`
	APIKey      string `validate:"required_unless=Provider echo"`
	BaseURL     string `validate:"omitempty,url"`
	Model       string
	Temperature float32 `validate:"gte=0,lte=2"`
	MaxTokens   int     `validate:"gte=0"`
	// RequestsPerSecond limits outbound calls; 0 disables the limiter.
	RequestsPerSecond float64 `validate:"gte=0"`
	MaxRetries        int     `validate:"gte=0,lte=10"`
}

// MinIOConfig holds object storage settings for the optional upload archive.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether an archive endpoint is configured.
func (c MinIOConfig) Enabled() bool { return c.Endpoint != "" }

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port        string `validate:"required"`
	LogLevel    string `validate:"oneof=debug info warn error"`
	CatalogPath string
	Chat        ChatConfig
	Upload      UploadConfig
	Generator   GeneratorConfig
	MinIO       MinIOConfig
}

const (
	defaultOpenRouterURL = "https://openrouter.ai/api/v1"
	defaultOpenAIModel   = "openai/gpt-4-turbo-preview"
	defaultGeminiModel   = "gemini-1.5-flash"
)

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	provider := getEnv("GENERATOR_PROVIDER", "openai")
	gen := GeneratorConfig{
		Provider:          provider,
		Temperature:       float32(getEnvFloat("GENERATOR_TEMPERATURE", 0.7)),
		MaxTokens:         getEnvInt("GENERATOR_MAX_TOKENS", 1000),
		RequestsPerSecond: getEnvFloat("GENERATOR_RPS", 2),
		MaxRetries:        getEnvInt("GENERATOR_MAX_RETRIES", 2),
	}
	switch provider {
	case "gemini":
		gen.APIKey = getEnv("GEMINI_API_KEY", "")
		gen.Model = getEnv("GEMINI_MODEL", defaultGeminiModel)
	default:
		gen.APIKey = getEnv("OPENAI_API_KEY", getEnv("OPENROUTER_API_KEY", ""))
		gen.BaseURL = getEnv("OPENAI_BASE_URL", defaultOpenRouterURL)
		gen.Model = getEnv("OPENAI_MODEL", defaultOpenAIModel)
	}

	return &AppConfig{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CatalogPath: getEnv("REFERENCE_CATALOG_PATH", ""),
		Chat: ChatConfig{
			GenerationTimeout: getEnvDuration("GENERATION_TIMEOUT", 60*time.Second),
			MaxMessageBytes:   getEnvInt("MAX_MESSAGE_BYTES", 32*1024),
			StrictDocumentIDs: getEnvBool("STRICT_DOCUMENT_IDS", false),
			MaxContextChars:   getEnvInt("MAX_CONTEXT_CHARS", 0),
		},
		Upload: UploadConfig{
			MaxBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		},
		Generator: gen,
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

var validate = validator.New()

// Validate checks the loaded values before the server starts.
func (c *AppConfig) Validate() error {
	return validate.Struct(c)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

// getEnvDuration accepts Go duration strings ("45s") or a bare number of seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
