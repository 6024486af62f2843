package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// defaultJWTSecret is only fit for local development.
const defaultJWTSecret = "supersecretjwtkey"

var ErrDefaultJWTSecret = errors.New("JWT_SECRET must be set explicitly when ENV=production and AUTH_PROVIDER=jwt")

type Config struct {
	Port                    string
	Env                     string
	PostgresConnStr         string
	MongoURI                string
	MongoDatabase           string
	AuthProvider            string // jwt or firebase
	JWTSecret               string
	FirebaseCredentialsPath string
	RedisURL                string
	UnreadCacheTTL          time.Duration
	GenAIAPIKey             string
	GenAIModel              string
	NotificationRetention   time.Duration
	APIBaseURL              string
	APIToken                string
}

// Load reads the .env file, if any, and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DB", "sparkmatch"),
		AuthProvider:            getEnv("AUTH_PROVIDER", "jwt"),
		JWTSecret:               getEnv("JWT_SECRET", defaultJWTSecret),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		RedisURL:                getEnv("REDIS_URL", ""),
		UnreadCacheTTL:          time.Duration(getEnvInt("UNREAD_CACHE_TTL_SECONDS", 60)) * time.Second,
		GenAIAPIKey:             getEnv("GENAI_API_KEY", ""),
		GenAIModel:              getEnv("GENAI_MODEL", "gemini-2.5-flash"),
		NotificationRetention:   time.Duration(getEnvInt("NOTIFICATION_RETENTION_DAYS", 30)) * 24 * time.Hour,
		APIBaseURL:              getEnv("API_BASE_URL", "http://localhost:8080/api/v1"),
		APIToken:                getEnv("API_TOKEN", ""),
	}
}

// Validate rejects settings the server must not start with.
func (c *Config) Validate() error {
	if c.Env == "production" && c.AuthProvider == "jwt" && (c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret) {
		return ErrDefaultJWTSecret
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("Ignoring invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
