package config

import (
	"os"
	"time"
)

type Twitter struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	AuthURL      string
	TokenURL     string
	APIURL       string
}

type Config struct {
	Twitter         Twitter
	PostgresURI     string
	RedisURI        string
	FrontendURL     string
	SecretKey       string
	AdminPassword   string
	CookieName      string
	Environment     string
	Port            string
	ProviderTimeout time.Duration
	LogLevel        string
	LogFormat       string
}

func LoadConfig() *Config {
	return &Config{
		Twitter: Twitter{
			ClientID:     getEnv("TWITTER_CLIENT_ID", ""),
			ClientSecret: getEnv("TWITTER_CLIENT_SECRET", ""),
			CallbackURL:  getEnv("TWITTER_CALLBACK_URL", "http://localhost:3000/api/auth/twitter/callback"),
			AuthURL:      getEnv("TWITTER_AUTH_URL", "https://twitter.com/i/oauth2/authorize"),
			TokenURL:     getEnv("TWITTER_TOKEN_URL", "https://api.twitter.com/2/oauth2/token"),
			APIURL:       getEnv("TWITTER_API_URL", "https://api.twitter.com"),
		},
		PostgresURI:     getEnv("POSTGRES_URI", ""),
		RedisURI:        getEnv("REDIS_URI", ""),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
		SecretKey:       getEnv("SECRET_KEY", ""),
		AdminPassword:   getEnv("ADMIN_PASSWORD", "admin123"),
		CookieName:      getEnv("COOKIE_NAME", "admin_session"),
		Environment:     getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "3000"),
		ProviderTimeout: getDuration("PROVIDER_TIMEOUT", 15*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
	}
}

// IsProduction reports whether cookies must be marked Secure.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
