package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadENV loads variables from .env when GO_ENV is unset or "development"
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil {
			return err
		}
	}

	return nil
}

// Config is built once at startup and passed by injection into every
// component that needs it. Business logic never reads the environment.
type Config struct {
	GoEnv string
	Port  int

	// Database
	DBUserName string
	DBPassword string
	DBName     string
	DBHost     string
	DBPort     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTRefreshSecret string
	JWTIssuer        string

	// Service-to-service gate
	ServiceAPIKey string

	// Redis
	RedisURL string

	// Asset host (S3-compatible Spaces)
	SpacesAccessKey string
	SpacesSecretKey string
	SpacesBucket    string
	SpacesRegion    string
	SpacesEndpoint  string
	SpacesCDNURL    string

	// CORS
	AllowedOrigins string
}

// Get builds the configuration from the environment and verifies that
// every required secret is present.
func Get() (*Config, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	// Database defaults
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "abroad-api"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	cfg := &Config{
		GoEnv:      os.Getenv("GO_ENV"),
		Port:       port,
		DBUserName: os.Getenv("DB_USER_NAME"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBHost:     dbHost,
		DBPort:     dbPort,
		DBSSLMode:  os.Getenv("DB_SSL_MODE"),
		// JWT
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		JWTIssuer:        jwtIssuer,
		// Service gate
		ServiceAPIKey: os.Getenv("SERVICE_API_KEY"),
		// Redis
		RedisURL: os.Getenv("REDIS_URL"),
		// Spaces
		SpacesAccessKey: os.Getenv("SPACES_ACCESS_KEY"),
		SpacesSecretKey: os.Getenv("SPACES_SECRET_KEY"),
		SpacesBucket:    os.Getenv("SPACES_BUCKET"),
		SpacesRegion:    os.Getenv("SPACES_REGION"),
		SpacesEndpoint:  os.Getenv("SPACES_ENDPOINT"),
		SpacesCDNURL:    os.Getenv("SPACES_CDN_URL"),
		// CORS
		AllowedOrigins: allowedOrigins,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate ensures every required secret is set. The process must not start
// without database credentials or signing secrets.
func (c *Config) validate() error {
	required := map[string]string{
		"DB_USER_NAME":       c.DBUserName,
		"DB_NAME":            c.DBName,
		"JWT_SECRET":         c.JWTSecret,
		"JWT_REFRESH_SECRET": c.JWTRefreshSecret,
	}

	for name, value := range required {
		if value == "" {
			return fmt.Errorf("required environment variable %s is not set", name)
		}
	}

	return nil
}

// SpacesConfigured reports whether the asset host credentials are complete.
func (c *Config) SpacesConfigured() bool {
	return c.SpacesAccessKey != "" && c.SpacesSecretKey != "" &&
		c.SpacesBucket != "" && c.SpacesRegion != "" && c.SpacesEndpoint != ""
}
