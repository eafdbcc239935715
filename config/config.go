package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port           string
	MongoURI       string
	MongoDB        string
	JWTSecret      string
	JWTTTL         time.Duration
	RequestTimeout time.Duration
	LogLevel       string
	LogFormat      string
	StoreDriver    string
	CORSOrigins    string
	AuthRateLimit  int
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Warn().Str("key", key).Str("value", raw).Dur("fallback", fallback).Msg("invalid duration, using fallback")
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", raw).Int("fallback", fallback).Msg("invalid integer, using fallback")
		return fallback
	}
	return n
}

// LoadConfig reads .env when present and then the process environment.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, using system environment variables")
	}

	return Config{
		Port:           getEnv("PORT", "3000"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getEnv("MONGO_DB", "piazza"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTTTL:         getDuration("JWT_TTL", time.Hour),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 5*time.Second),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "console"),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		CORSOrigins:    getEnv("CORS_ORIGINS", "*"),
		AuthRateLimit:  getInt("AUTH_RATE_LIMIT", 20),
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.StoreDriver {
	case StoreMongo, StoreMemory:
	default:
		errs = append(errs, errors.New("STORE_DRIVER must be \"mongo\" or \"memory\""))
	}
	if c.StoreDriver == StoreMongo && c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI is required for the mongo store"))
	}
	return errors.Join(errs...)
}
