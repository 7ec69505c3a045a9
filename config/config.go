package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything the process needs, loaded once at startup and passed
// into each component constructor. No package-level client state.
type Config struct {
	AppEnv   string
	HTTPAddr string

	MongoURI string
	MongoDB  string

	RedisAddr     string
	RedisPassword string

	OpenAIKey     string
	OpenAIModel   string
	OpenAITimeout time.Duration

	TwilioAccountSID    string
	TwilioAuthToken     string
	TwilioWhatsAppFrom  string

	NLUBaseURL string
	NLUTimeout time.Duration

	JWTSecret   string
	AdminAPIKey string

	ReportDailyLimit int
	AdminScanLimit   int64
	SummarySampleSize int64
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func dur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		AppEnv:   getenv("APP_ENV", "dev"),
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		MongoURI: getenv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:  getenv("MONGODB_DATABASE", "civicbot"),

		RedisAddr:     getenv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		OpenAIKey:     getenv("OPENAI_API_KEY", ""),
		OpenAIModel:   getenv("OPENAI_MODEL", "gpt-4.1-mini"),
		OpenAITimeout: dur("OPENAI_TIMEOUT", 10*time.Second),

		TwilioAccountSID:   getenv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    getenv("TWILIO_AUTH_TOKEN", ""),
		TwilioWhatsAppFrom: getenv("TWILIO_WHATSAPP_NUMBER", ""),

		NLUBaseURL: getenv("NLU_BASE_URL", ""),
		NLUTimeout: dur("NLU_TIMEOUT", 10*time.Second),

		JWTSecret:   getenv("JWT_SECRET", ""),
		AdminAPIKey: getenv("ADMIN_API_KEY", ""),

		ReportDailyLimit:  atoi("REPORT_DAILY_LIMIT", 10),
		AdminScanLimit:    int64(atoi("ADMIN_SCAN_LIMIT", 500)),
		SummarySampleSize: int64(atoi("SUMMARY_SAMPLE_SIZE", 10)),
	}
}
