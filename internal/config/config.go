package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	// Redis session/state store
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Session lifecycle
	SessionTTL     time.Duration
	StorageTimeout time.Duration

	// LLM providers
	LLMProvider       string
	AWSRegion         string
	BedrockModelID    string
	GeminiAPIKey      string
	GeminiModelID     string
	GenerationTimeout time.Duration
	GenerationRetries int

	// Profile detection
	MinProfileConfidence float64
	AnalysisVersion      string

	// Training collector
	TrainingQueueKey string
	TrainingQueueCap int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		SessionTTL:     getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		StorageTimeout: getEnvAsDuration("STORAGE_TIMEOUT", 3*time.Second),

		LLMProvider:       strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "bedrock"))),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		BedrockModelID:    getEnv("BEDROCK_MODEL_ID", "anthropic.claude-3-haiku-20240307-v1:0"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:     getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		GenerationTimeout: getEnvAsDuration("GENERATION_TIMEOUT", 20*time.Second),
		GenerationRetries: getEnvAsInt("GENERATION_RETRIES", 1),

		MinProfileConfidence: getEnvAsFloat("MIN_PROFILE_CONFIDENCE", 0.3),
		AnalysisVersion:      getEnv("ANALYSIS_VERSION", "2.1.0"),

		TrainingQueueKey: getEnv("TRAINING_QUEUE_KEY", "training:corrections"),
		TrainingQueueCap: getEnvAsInt("TRAINING_QUEUE_CAP", 10000),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
