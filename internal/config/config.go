package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	OpenAIAPIKey string
	GroqAPIKey   string
	TavilyAPIKey string
	DatabaseURL  string
	HTTPPort     string
	LogLevel     string
	JWTSecret    string
	SearchPolicy string // "heuristic" or "model"
	Temperature  float64
	MaxTokens    int
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		GroqAPIKey:   getEnv("GROQ_API_KEY", ""),
		TavilyAPIKey: getEnv("TAVILY_API_KEY", ""),
		DatabaseURL:  getEnv("DATABASE_URL", "assistant.db"),
		HTTPPort:     getEnv("HTTP_PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		SearchPolicy: getEnv("SEARCH_POLICY", "heuristic"),
		Temperature:  getEnvAsFloat("TEMPERATURE", 0.7),
		MaxTokens:    getEnvAsInt("MAX_TOKENS", 1024),
	}

	// A missing LLM key is deliberately not fatal: provider selection reports
	// it and the chat endpoint answers with a configuration-error body.
	if AppConfig.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	if AppConfig.SearchPolicy != "heuristic" && AppConfig.SearchPolicy != "model" {
		log.Fatalf("SEARCH_POLICY must be \"heuristic\" or \"model\", got %q", AppConfig.SearchPolicy)
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
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
