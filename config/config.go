package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the building risk analysis service
type Config struct {
	// Server configuration
	Port string

	// LLM provider selection ("azure" or "stub")
	LLMProvider string

	// Azure OpenAI configuration
	AzureOpenAIEndpoint   string
	AzureOpenAIAPIKey     string
	AzureOpenAIDeployment string
	AzureOpenAIAPIVersion string

	// Transport configuration
	RequestTimeout time.Duration

	// Analysis configuration
	RateLimitPerMinute int
	MaxImageDimension  int

	// RabbitMQ publisher (optional, disabled when URL is empty)
	RabbitMQURL        string
	RabbitMQExchange   string
	RabbitMQRoutingKey string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		// Server defaults
		Port: getEnv("PORT", "8080"),

		// Provider defaults
		LLMProvider: getEnv("LLM_PROVIDER", "azure"),

		// Azure OpenAI defaults
		AzureOpenAIEndpoint:   getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureOpenAIAPIKey:     getEnv("AZURE_OPENAI_API_KEY", ""),
		AzureOpenAIDeployment: getEnv("AZURE_OPENAI_DEPLOYMENT", ""),
		AzureOpenAIAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", "2024-04-01-preview"),

		// Transport defaults
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", 90*time.Second),

		// Analysis defaults
		RateLimitPerMinute: getIntEnv("RATE_LIMIT_PER_MINUTE", 10),
		MaxImageDimension:  getIntEnv("MAX_IMAGE_DIMENSION", 1024),

		// RabbitMQ defaults
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange:   getEnv("RABBITMQ_EXCHANGE", "building-risk"),
		RabbitMQRoutingKey: getEnv("RABBITMQ_ROUTING_KEY", "risk.report.analyzed"),

		// Logging defaults
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
