package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port          string        `yaml:"port"`
	DatabaseURL   string        `yaml:"database_url"`
	RedisHost     string        `yaml:"redis_host"`
	RedisPort     string        `yaml:"redis_port"`
	SessionStore  string        `yaml:"session_store"`
	SessionSecret string        `yaml:"session_secret"`
	JWTSecret     string        `yaml:"jwt_secret"`
	JWTExpiry     time.Duration `yaml:"-"`
	GinMode       string        `yaml:"gin_mode"`
	LogLevel      string        `yaml:"log_level"`
	CORSOrigins   []string      `yaml:"cors_origins"`
	AdminEmails   []string      `yaml:"admin_emails"`

	JWTExpiryHours int `yaml:"jwt_expiry_hours"`
}

func defaults() *Config {
	return &Config{
		Port:           "8080",
		DatabaseURL:    "sqlite3:taskflow.db",
		RedisHost:      "localhost",
		RedisPort:      "6379",
		SessionStore:   "cookie",
		SessionSecret:  "default-secret-key-change-me",
		JWTSecret:      "default-jwt-secret-change-me",
		JWTExpiryHours: 24 * 7,
		GinMode:        "debug",
		LogLevel:       "info",
		CORSOrigins:    []string{"http://localhost:3000"},
	}
}

// Load reads configuration from, in increasing precedence: built-in
// defaults, the YAML file named by CONFIG_FILE, a .env file, and the process
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Ignoring .env file: %v", err)
	}

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisHost = getEnv("REDIS_HOST", cfg.RedisHost)
	cfg.RedisPort = getEnv("REDIS_PORT", cfg.RedisPort)
	cfg.SessionStore = getEnv("SESSION_STORE", cfg.SessionStore)
	cfg.SessionSecret = getEnv("SESSION_SECRET", cfg.SessionSecret)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTExpiryHours = getEnvInt("JWT_EXPIRY_HOURS", cfg.JWTExpiryHours)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.CORSOrigins = getEnvList("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.AdminEmails = getEnvList("ADMIN_EMAILS", cfg.AdminEmails)

	if cfg.JWTExpiryHours <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRY_HOURS must be positive, got %d", cfg.JWTExpiryHours)
	}
	cfg.JWTExpiry = time.Duration(cfg.JWTExpiryHours) * time.Hour

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
