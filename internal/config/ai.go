package config

import (
	"os"
	"strconv"
)

// GeminiModels defines which Gemini models to use for different tasks
type GeminiModels struct {
	// Reviews generates the pre-written review batches (quality over speed)
	Reviews string `json:"reviews"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey    string       `json:"-"` // Never serialize
	Models    GeminiModels `json:"models"`
	TimeoutMS int          `json:"timeoutMs"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() *AIConfig {
	timeout := 10000
	if v, err := strconv.Atoi(os.Getenv("AI_TIMEOUT_MS")); err == nil && v > 0 {
		timeout = v
	}
	return &AIConfig{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Models: GeminiModels{
			Reviews: getEnvOrDefault("GEMINI_MODEL_REVIEWS", "gemini-2.0-flash"),
		},
		TimeoutMS: timeout,
	}
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
