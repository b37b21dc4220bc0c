package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Solana   SolanaConfig
	Market   MarketConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret string
}

// SolanaConfig holds chain settings for the escrow authority
type SolanaConfig struct {
	Network                string
	EscrowProgramID        string
	ServerWalletPrivateKey string
}

// MarketConfig holds the bootstrap marketplace parameters. The on-record
// MarketplaceConfig row is authoritative after first boot; these seed it.
type MarketConfig struct {
	AdminWallet     string
	TreasuryWallet  string
	PlatformFeeBps  int64
	DisputeFeeBps   int64
	MaxFeeBps       int64
	MinBidFloor     int64
	AntiSnipeWindow time.Duration
	AntiSnipeExtend time.Duration
	TransferPeriod  time.Duration
	Timelock        time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "marketplace_escrow"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Solana: SolanaConfig{
			Network:                getEnv("SOLANA_NETWORK", "devnet"),
			EscrowProgramID:        getEnv("ESCROW_PROGRAM_ID", ""),
			ServerWalletPrivateKey: getEnv("SERVER_WALLET_PRIVATE_KEY", ""),
		},
		Market: MarketConfig{
			AdminWallet:     getEnv("ADMIN_WALLET", ""),
			TreasuryWallet:  getEnv("TREASURY_WALLET", ""),
			PlatformFeeBps:  getEnvInt64("PLATFORM_FEE_BPS", 250),
			DisputeFeeBps:   getEnvInt64("DISPUTE_FEE_BPS", 100),
			MaxFeeBps:       getEnvInt64("MAX_FEE_BPS", 1000),
			MinBidFloor:     getEnvInt64("MIN_BID_FLOOR_LAMPORTS", 10_000_000),
			AntiSnipeWindow: getEnvDuration("ANTI_SNIPE_WINDOW", 10*time.Minute),
			AntiSnipeExtend: getEnvDuration("ANTI_SNIPE_EXTEND", 10*time.Minute),
			TransferPeriod:  getEnvDuration("TRANSFER_PERIOD", 7*24*time.Hour),
			Timelock:        getEnvDuration("ADMIN_TIMELOCK", 48*time.Hour),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if config.Market.AdminWallet == "" || config.Market.TreasuryWallet == "" {
		return nil, fmt.Errorf("ADMIN_WALLET and TREASURY_WALLET are required")
	}

	if config.Market.PlatformFeeBps > config.Market.MaxFeeBps {
		return nil, fmt.Errorf("PLATFORM_FEE_BPS exceeds MAX_FEE_BPS")
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
