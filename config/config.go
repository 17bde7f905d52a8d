package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config represents the application configuration for the registry node.
type Config struct {
	// Server configuration
	ServerPort    string
	ServerTimeout int
	ServerHost    string
	BaseURL       string

	// Database configuration (audit/event log persistence)
	DBHost               string
	DBPort               string
	DBUser               string
	DBPassword           string
	DBName               string
	DBSSLMode            string
	DBMaxConnections     int
	DBMaxIdleConnections int
	DBConnectionLifetime int

	// Redis configuration (read-through query cache)
	RedisHost string
	RedisPort string
	RedisDB   int

	// Registry capacity configuration
	GenesisBlockNumber    uint64
	MaxServiceEndpointID  int
	MaxServiceOrigin      int
	MaxServiceOrigins     int
	MaxDocRefLength       int
	MaxTrustRegistryName  int
	MaxGovFramework       int
	MaxSchemasPerActor    int
	MaxIssuersPerSchema   int
	MaxVerifiersPerSchema int
	MaxDelegatedIssuers   int

	// IPFS configuration (off-chain DID doc_ref resolution for CID references)
	IPFSNodeURL    string
	IPFSGatewayURL string

	// JWT configuration (operator/admin API, not DID-authenticated writes)
	JWTSecret     string
	JWTExpiration int
	JWTIssuer     string

	// Rate limiting configuration
	RateLimitRequests int
	RateLimitDuration int

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogFile   string

	// Metrics
	EnableMetrics bool
	MetricsPort   string

	// Localization
	DefaultLang string
	LocalesDir  string

	// Environment
	Environment string
}

// Load loads the configuration from environment variables.
func Load() *Config {
	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		ServerTimeout: getEnvAsInt("SERVER_TIMEOUT", 30),
		ServerHost:    getEnv("SERVER_HOST", "0.0.0.0"),
		BaseURL:       getEnv("BASE_URL", "http://localhost:8080"),

		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnv("DB_PORT", "5432"),
		DBUser:               getEnv("DB_USER", "postgres"),
		DBPassword:           getEnv("DB_PASSWORD", "postgres"),
		DBName:               getEnv("DB_NAME", "did_registry"),
		DBSSLMode:            getEnv("DB_SSLMODE", "disable"),
		DBMaxConnections:     getEnvAsInt("DB_MAX_CONNECTIONS", 20),
		DBMaxIdleConnections: getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 5),
		DBConnectionLifetime: getEnvAsInt("DB_CONNECTION_LIFETIME", 300),

		RedisHost: getEnv("REDIS_HOST", "localhost"),
		RedisPort: getEnv("REDIS_PORT", "6379"),
		RedisDB:   getEnvAsInt("REDIS_DB", 0),

		GenesisBlockNumber:    uint64(getEnvAsInt("GENESIS_BLOCK_NUMBER", 0)),
		MaxServiceEndpointID:  getEnvAsInt("MAX_SERVICE_ENDPOINT_ID", 256),
		MaxServiceOrigin:      getEnvAsInt("MAX_SERVICE_ORIGIN_LEN", 512),
		MaxServiceOrigins:     getEnvAsInt("MAX_SERVICE_ORIGINS", 64),
		MaxDocRefLength:       getEnvAsInt("MAX_DOC_REF_LEN", 512),
		MaxTrustRegistryName:  getEnvAsInt("MAX_TRUST_REGISTRY_NAME", 256),
		MaxGovFramework:       getEnvAsInt("MAX_GOV_FRAMEWORK_LEN", 4096),
		MaxSchemasPerActor:    getEnvAsInt("MAX_SCHEMAS_PER_ACTOR", 1000),
		MaxIssuersPerSchema:   getEnvAsInt("MAX_ISSUERS_PER_SCHEMA", 512),
		MaxVerifiersPerSchema: getEnvAsInt("MAX_VERIFIERS_PER_SCHEMA", 512),
		MaxDelegatedIssuers:   getEnvAsInt("MAX_DELEGATED_ISSUERS", 128),

		IPFSNodeURL:    getEnv("IPFS_NODE_URL", "http://localhost:5001"),
		IPFSGatewayURL: getEnv("IPFS_GATEWAY_URL", "http://localhost:8080"),

		JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"),
		JWTExpiration: getEnvAsInt("JWT_EXPIRATION", 24),
		JWTIssuer:     getEnv("JWT_ISSUER", "did-trust-registry"),

		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitDuration: getEnvAsInt("RATE_LIMIT_DURATION", 60),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogFile:   getEnv("LOG_FILE", "registry.log"),

		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),

		DefaultLang: getEnv("DEFAULT_LANG", "en"),
		LocalesDir:  getEnv("LOCALES_DIR", "locales"),

		Environment: getEnv("ENVIRONMENT", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// GetConfig returns the application configuration.
func GetConfig() *Config {
	return Load()
}

// GetJWTSecret retrieves the JWT secret from the configured source, supporting
// a "file:" prefix to read the secret from a mounted file (e.g. a k8s secret).
func GetJWTSecret() (string, error) {
	cfg := GetConfig()
	secret := cfg.JWTSecret

	if strings.HasPrefix(secret, "file:") {
		filePath := strings.TrimPrefix(secret, "file:")

		data, err := os.ReadFile(filePath)
		if err != nil {
			envSecret := os.Getenv("JWT_SECRET_VALUE")
			if envSecret != "" {
				return envSecret, nil
			}
			return "", fmt.Errorf("failed to read JWT secret from file %s: %w", filePath, err)
		}

		return strings.TrimSpace(string(data)), nil
	}

	return secret, nil
}
