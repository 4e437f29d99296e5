package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Keys     APIKeys
	Timeouts TimeoutConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	OllamaBaseURL string
	// DefaultLLMModel backs the history-only tier and any request served
	// without an active retrieval configuration.
	DefaultLLMModel string
	LLMProvider     string
	IndexBaseDir    string
	Temperature     float64
	MaxTokens       int
}

type APIKeys struct {
	// WebSearch gates the tool-augmented generation tier. Empty means the
	// orchestrator never offers tools to the model.
	WebSearch string
}

type TimeoutConfig struct {
	Retrieval  time.Duration
	Generation time.Duration
	Tool       time.Duration
	IndexOpen  time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8080"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			DefaultLLMModel: getEnv("LLM_MODEL", "gpt-oss:20b-cloud"),
			LLMProvider:     getEnv("LLM_PROVIDER", "ollama"),
			IndexBaseDir:    getEnv("INDEX_BASE_DIR", "chroma_db"),
			Temperature:     getEnvAsFloat("LLM_TEMPERATURE", 0.5),
			MaxTokens:       getEnvAsInt("LLM_MAX_TOKENS", 0),
		},
		Keys: APIKeys{
			WebSearch: getEnv("WEB_SEARCH_API_KEY", ""),
		},
		Timeouts: TimeoutConfig{
			Retrieval:  getEnvAsDuration("RETRIEVAL_TIMEOUT", 15*time.Second),
			Generation: getEnvAsDuration("GENERATION_TIMEOUT", 120*time.Second),
			Tool:       getEnvAsDuration("TOOL_TIMEOUT", 30*time.Second),
			IndexOpen:  getEnvAsDuration("INDEX_OPEN_TIMEOUT", 10*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
