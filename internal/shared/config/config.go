package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Accounts  AccountsConfig
	Storage   StorageConfig
	Tips      TipsConfig
	TLS       TLSConfig
	Firebase  FirebaseConfig
	Messages  MessagesConfig
	Telemetry TelemetryConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	AllowedHosts []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// AccountsConfig holds settings for accounts created on behalf of others.
type AccountsConfig struct {
	DependentDefaultPassword string
}

type StorageConfig struct {
	ReceiptsBucket  string
	PublicURLPrefix string
}

type TipsConfig struct {
	FunctionURL     string
	MaxTransactions int
	Timeout         time.Duration
}

type TLSConfig struct {
	Enabled      bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
}

type FirebaseConfig struct {
	CredentialsFile string
}

type MessagesConfig struct {
	File string
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	MetricsPort  string
}

type LogConfig struct {
	Level  string
	Format string
}

// FunctionConfig is the configuration of the tip generation function.
type FunctionConfig struct {
	Port         string
	GeminiAPIKey string
	GeminiModel  string
	MaxTips      int
	Log          LogConfig
}

func Load() (*Config, error) {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	accessTTL, err := time.ParseDuration(getEnv("ACCESS_TOKEN_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_TTL: %w", err)
	}
	refreshTTL, err := time.ParseDuration(getEnv("REFRESH_TOKEN_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_TOKEN_TTL: %w", err)
	}

	tipsMax, err := strconv.Atoi(getEnv("TIPS_MAX_TRANSACTIONS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIPS_MAX_TRANSACTIONS: %w", err)
	}
	tipsTimeout, err := time.ParseDuration(getEnv("TIPS_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIPS_TIMEOUT: %w", err)
	}

	bucket := getEnv("RECEIPTS_BUCKET", "receipts")

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Host:         getEnv("HOST", "0.0.0.0"),
			AllowedHosts: splitList(getEnv("ALLOWED_HOSTS", "")),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "mesada"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "mesada"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", ""),
			AccessTokenTTL:  accessTTL,
			RefreshTokenTTL: refreshTTL,
		},
		Accounts: AccountsConfig{
			DependentDefaultPassword: getEnv("DEPENDENT_DEFAULT_PASSWORD", ""),
		},
		Storage: StorageConfig{
			ReceiptsBucket:  bucket,
			PublicURLPrefix: getEnv("RECEIPTS_PUBLIC_URL", "https://storage.googleapis.com/"+bucket),
		},
		Tips: TipsConfig{
			FunctionURL:     getEnv("TIPS_FUNCTION_URL", "http://localhost:8090"),
			MaxTransactions: tipsMax,
			Timeout:         tipsTimeout,
		},
		TLS: TLSConfig{
			Enabled:      getBoolEnv("TLS_ENABLED", false),
			CertPath:     getEnv("TLS_CERT_PATH", ""),
			KeyPath:      getEnv("TLS_KEY_PATH", ""),
			RedirectHTTP: getBoolEnv("TLS_REDIRECT_HTTP", false),
		},
		Firebase: FirebaseConfig{
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		},
		Messages: MessagesConfig{
			File: getEnv("MESSAGES_FILE", ""),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "mesada-api"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
			MetricsPort:  getEnv("METRICS_PORT", "9090"),
		},
		Log: loadLog(),
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Accounts.DependentDefaultPassword != "" && len(cfg.Accounts.DependentDefaultPassword) < 6 {
		return nil, fmt.Errorf("DEPENDENT_DEFAULT_PASSWORD must have at least 6 characters")
	}
	if cfg.Tips.MaxTransactions <= 0 {
		return nil, fmt.Errorf("TIPS_MAX_TRANSACTIONS must be positive")
	}

	if cfg.TLS.Enabled {
		if cfg.TLS.CertPath == "" {
			return nil, fmt.Errorf("TLS_CERT_PATH is required when TLS_ENABLED=true")
		}
		if cfg.TLS.KeyPath == "" {
			return nil, fmt.Errorf("TLS_KEY_PATH is required when TLS_ENABLED=true")
		}
	}

	return cfg, nil
}

// LoadFunction reads the configuration of the tip generation function.
func LoadFunction() (*FunctionConfig, error) {
	_ = godotenv.Load()

	maxTips, err := strconv.Atoi(getEnv("TIPS_MAX_TIPS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIPS_MAX_TIPS: %w", err)
	}

	cfg := &FunctionConfig{
		Port:         getEnv("PORT", "8090"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		MaxTips:      maxTips,
		Log:          loadLog(),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.MaxTips < 1 {
		return nil, fmt.Errorf("TIPS_MAX_TIPS must be positive")
	}

	return cfg, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func loadLog() LogConfig {
	return LogConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "console"),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}
