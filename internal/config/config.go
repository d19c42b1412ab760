// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"cardvault/pkg/db"
)

// GatewayConfig holds connection settings for the payments gateway
// (tokenization and charges share one endpoint and API key).
type GatewayConfig struct {
	BaseURL string
	APIKey  string
}

// WalletConfig holds connection settings for the wallet-debit collaborator.
type WalletConfig struct {
	BaseURL string
}

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort string
	DB         db.Config
	Gateway    GatewayConfig
	Wallet     WalletConfig
}

// LoadConfig loads configuration from environment variables, with a .env file
// as an optional local override. It returns an AppConfig instance or an error
// if any variable is invalid.
func LoadConfig() (*AppConfig, error) {
	// Missing .env is fine; env vars win in deployed environments.
	_ = godotenv.Load()

	serverPort := getEnv("SERVER_PORT", "8080")

	dbPortStr := getEnv("DB_PORT", "5432")
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	return &AppConfig{
		ServerPort: serverPort,
		DB: db.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "cardvaultdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Gateway: GatewayConfig{
			BaseURL: getEnv("GATEWAY_BASE_URL", "http://localhost:9090"),
			APIKey:  getEnv("GATEWAY_API_KEY", ""),
		},
		Wallet: WalletConfig{
			BaseURL: getEnv("WALLET_BASE_URL", "http://localhost:9091"),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
