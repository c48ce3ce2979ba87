package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every configuration parameter of the engine, including the
// named policy knobs the credit economy is tuned with.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// CORSAllowedOrigin is the hosting web client's origin.
	CORSAllowedOrigin string

	// AdminKeyHash is the bcrypt hash of the key required by the
	// administrative override path.
	AdminKeyHash string

	// Engine policy
	SetWinAwardCents      int64
	AutoResolveAwardCents int64
	AllowNegativeBalances bool
	MaxByesPerPlayer      int

	// Cloudflare R2 (pledge item photos)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load reads configuration from environment variables, optionally picking up
// a .env file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	adminKeyHash := os.Getenv("ADMIN_KEY_HASH")
	if adminKeyHash == "" {
		return nil, fmt.Errorf("ADMIN_KEY_HASH environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	setWinAward, err := intEnv("SET_WIN_AWARD_CENTS", 300)
	if err != nil {
		return nil, err
	}
	autoResolveAward, err := intEnv("AUTO_RESOLVE_AWARD_CENTS", 300)
	if err != nil {
		return nil, err
	}
	maxByes, err := intEnv("MAX_BYES_PER_PLAYER", 2)
	if err != nil {
		return nil, err
	}
	allowNegative, err := boolEnv("ALLOW_NEGATIVE_BALANCES", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:           dbURL,
		JWTSecretKey:          jwtKey,
		ServerPort:            port,
		CORSAllowedOrigin:     envOrDefault("CORS_ALLOWED_ORIGIN", "*"),
		AdminKeyHash:          adminKeyHash,
		SetWinAwardCents:      int64(setWinAward),
		AutoResolveAwardCents: int64(autoResolveAward),
		AllowNegativeBalances: allowNegative,
		MaxByesPerPlayer:      maxByes,
		R2AccountID:           os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:         os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:     os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:          os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:       os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return value, nil
}

func boolEnv(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return value, nil
}
