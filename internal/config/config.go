package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Registry RegistryConfig
	Pinning  PinningConfig
	Gateway  GatewayConfig
	Views    ViewConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// RegistryConfig holds chain and registry contract settings
type RegistryConfig struct {
	Network             string
	RPCURL              string
	AlchemyAPIKey       string
	ContractAddress     string
	OperatorPrivateKey  string
	ConfirmationTimeout time.Duration
	MaxParameters       int
}

// RPCEndpoint returns the effective RPC endpoint, expanding the Alchemy
// key when no explicit URL is set.
func (c RegistryConfig) RPCEndpoint() string {
	if c.RPCURL != "" {
		return c.RPCURL
	}
	host := "eth-mainnet"
	if c.Network != "homestead" && c.Network != "mainnet" {
		host = "eth-" + c.Network
	}
	return "https://" + host + ".g.alchemy.com/v2/" + c.AlchemyAPIKey
}

// ExplorerTokenURL returns the block-explorer link for a token id.
func (c RegistryConfig) ExplorerTokenURL(tokenID uint64) string {
	host := "etherscan.io"
	if c.Network != "homestead" && c.Network != "mainnet" {
		host = c.Network + ".etherscan.io"
	}
	return "https://" + host + "/token/" + c.ContractAddress + "?a=" + strconv.FormatUint(tokenID, 10)
}

// PinningConfig holds content-store (pinning service) settings
type PinningConfig struct {
	APIBaseURL          string
	APIKey              string
	MaxUploadMB         int
	CompensateOnFailure bool
}

// MaxUploadBytes returns the upload size cap in bytes.
func (c PinningConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

// GatewayConfig holds IPFS gateway hosts. Host serves path-style document
// reads (https://<host>/ipfs/<cid>); SubdomainHost roots render URLs
// (https://<cid>.ipfs.<subdomain-host>/) so artifact code runs origin-isolated.
type GatewayConfig struct {
	Host          string
	SubdomainHost string
}

// ViewConfig holds collection-view windowing settings
type ViewConfig struct {
	PageCap           int
	FetchConcurrency  int
	RefreshInterval   time.Duration
	CuratedProjectIDs []uint64
	MetadataCacheTTL  time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "codemint"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		Registry: RegistryConfig{
			Network:             getEnv("NETWORK", "sepolia"),
			RPCURL:              getEnv("RPC_URL", ""),
			AlchemyAPIKey:       getEnv("ALCHEMY_API_KEY", ""),
			ContractAddress:     getEnv("REGISTRY_ADDRESS", ""),
			OperatorPrivateKey:  getEnv("OPERATOR_PRIVATE_KEY", ""),
			ConfirmationTimeout: getEnvAsDuration("CONFIRMATION_TIMEOUT", 2*time.Minute),
			MaxParameters:       getEnvAsInt("MAX_PARAMETERS", 16),
		},
		Pinning: PinningConfig{
			APIBaseURL:          getEnv("PINNING_API_URL", "http://localhost:3001"),
			APIKey:              getEnv("PINNING_API_KEY", ""),
			MaxUploadMB:         getEnvAsInt("MAX_UPLOAD_MB", 25),
			CompensateOnFailure: getEnvAsBool("PINNING_COMPENSATE_ON_FAILURE", false),
		},
		Gateway: GatewayConfig{
			Host:          getEnv("IPFS_GATEWAY_HOST", "ipfs.io"),
			SubdomainHost: getEnv("IPFS_SUBDOMAIN_GATEWAY", "dweb.link"),
		},
		Views: ViewConfig{
			PageCap:           getEnvAsInt("VIEW_PAGE_CAP", 1000),
			FetchConcurrency:  getEnvAsInt("VIEW_FETCH_CONCURRENCY", 8),
			RefreshInterval:   getEnvAsDuration("VIEW_REFRESH_INTERVAL", 30*time.Second),
			CuratedProjectIDs: getEnvAsIDList("CURATED_PROJECT_IDS"),
			MetadataCacheTTL:  getEnvAsDuration("METADATA_CACHE_TTL", 24*time.Hour),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsIDList(key string) []uint64 {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var ids []uint64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseUint(part, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
