package config

import (
	"os"
	"strconv"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Logs     LogConfig
	DB       PostgresConfig
	AI       AIConfig
	Quota    QuotaConfig
	Batch    BatchConfig
	QueueURL string
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

type PostgresConfig struct {
	Username string
	Password string
	URL      string
	Port     string
}

type AIConfig struct {
	APIKey         string
	Model          string
	TimeoutSeconds int // per upstream call
}

type QuotaConfig struct {
	DailyLimit int // analyses per rolling 24h window for standard users
}

type BatchConfig struct {
	ChunkSize int // CVs per queue message
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		QueueURL: os.Getenv("QUEUE_URL"),
		Logs: LogConfig{
			JSON:  envBool("LOG_JSON", false),
			Debug: envBool("LOG_DEBUG", false),
		},
		DB: PostgresConfig{
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PWD"),
			URL:      os.Getenv("POSTGRES_URL"),
			Port:     os.Getenv("POSTGRES_PORT"),
		},
		AI: AIConfig{
			APIKey:         os.Getenv("GEMINI_API_KEY"),
			Model:          os.Getenv("GEMINI_MODEL"),
			TimeoutSeconds: envInt("AI_TIMEOUT_SECONDS", 60),
		},
		Quota: QuotaConfig{
			DailyLimit: envInt("ANALYSIS_DAILY_LIMIT", 1),
		},
		Batch: BatchConfig{
			ChunkSize: envInt("BATCH_CHUNK_SIZE", 5),
		},
	}

	// A zero or negative limit is a misconfiguration, not "no analyses ever";
	// fall back to the default rather than letting it reach the quota check.
	if cfg.Quota.DailyLimit < 1 {
		cfg.Quota.DailyLimit = 1
	}

	return cfg, nil
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
