package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// LLM provider: "anthropic" (default) or "openai"
	LLMProvider     string
	AnthropicAPIKey string
	AnthropicModel  string
	// Smaller/cheaper model for classification and scoring
	AnthropicFastModel string
	OpenAIAPIKey       string
	OpenAIModel        string

	// Slack
	SlackBotToken  string
	SlackAppToken  string
	SlackChannelID string

	// Twitter (app-only OAuth2 client credentials)
	TwitterAPIKey    string
	TwitterAPISecret string
	TwitterBaseURL   string

	// Finnhub market news
	FinnhubAPIKey string

	// Marks platform API (optional, price data)
	MarksAPIURL string

	// Database / queue
	DatabaseURL string
	RedisURL    string

	// Admin API
	Port          string
	AllowedOrigin string

	// Polling
	TwitterPollInterval time.Duration
	RSSPollInterval     time.Duration
	NewsPollInterval    time.Duration

	// Relevance threshold (0-1)
	RelevanceThreshold float64

	// Draft sessions older than this stop accepting replies
	SessionMaxAge time.Duration

	// Prompt spec (voice profile + pillar definitions)
	VoiceSpecPath string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		LLMProvider:         getEnvDefault("LLM_PROVIDER", "anthropic"),
		AnthropicAPIKey:     os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:      getEnvDefault("ANTHROPIC_MODEL", "claude-opus-4-5-20251101"),
		AnthropicFastModel:  getEnvDefault("ANTHROPIC_FAST_MODEL", "claude-haiku-4-5-20251001"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:         getEnvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		SlackBotToken:       os.Getenv("SLACK_BOT_TOKEN"),
		SlackAppToken:       os.Getenv("SLACK_APP_TOKEN"),
		SlackChannelID:      os.Getenv("SLACK_CHANNEL_ID"),
		TwitterAPIKey:       os.Getenv("TWITTER_API_KEY"),
		TwitterAPISecret:    os.Getenv("TWITTER_API_SECRET"),
		TwitterBaseURL:      getEnvDefault("TWITTER_BASE_URL", "https://api.twitter.com"),
		FinnhubAPIKey:       os.Getenv("FINNHUB_API_KEY"),
		MarksAPIURL:         os.Getenv("MARKS_API_URL"),
		DatabaseURL:         os.Getenv("DB_URL"),
		RedisURL:            os.Getenv("REDIS_URL"),
		Port:                getEnvDefault("PORT", "8080"),
		AllowedOrigin:       getEnvDefault("ALLOWED_ORIGIN", "*"),
		TwitterPollInterval: getEnvDurationDefault("TWITTER_POLL_INTERVAL", 5*time.Minute),
		RSSPollInterval:     getEnvDurationDefault("RSS_POLL_INTERVAL", 15*time.Minute),
		NewsPollInterval:    getEnvDurationDefault("NEWS_POLL_INTERVAL", 15*time.Minute),
		RelevanceThreshold:  getEnvFloatDefault("RELEVANCE_THRESHOLD", 0.7),
		SessionMaxAge:       getEnvDurationDefault("SESSION_MAX_AGE", 24*time.Hour),
		VoiceSpecPath:       getEnvDefault("VOICE_SPEC_PATH", "./prompts/voice.yaml"),
	}
	if cfg.AnthropicAPIKey == "" && cfg.OpenAIAPIKey == "" {
		log.Println("warning: no LLM API key set; generation and classification will fail until provided")
	}
	return cfg
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	// Accept plain seconds ("300") as well as Go durations ("5m").
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}

func getEnvFloatDefault(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}
