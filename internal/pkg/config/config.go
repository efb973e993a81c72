package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server      ServerConfig
	DB          DBConfig
	CORS        CORSConfig
	Log         LogConfig
	JWT         JWTConfig
	Reservation ReservationConfig
	Inventory   InventoryConfig
	Storage     StorageConfig
	Telemetry   TelemetryConfig
}

type ServerConfig struct {
	Port              string        `envconfig:"PORT" required:"true"`
	ReadHeaderTimeout time.Duration `envconfig:"SERVER_READ_HEADER_TIMEOUT" default:"10s"`
	// Proof uploads can be slow on mobile connections.
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
}

type DBConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" required:"true"`
	Password    string `envconfig:"DB_PASSWORD" required:"true"`
	DBName      string `envconfig:"DB_NAME" required:"true"`
	SSLMode     string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone    string `envconfig:"DB_TIMEZONE" default:"America/Argentina/Buenos_Aires"`
	MaxConns    int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`

	// Serialization failures and deadlocks are retried with exponential backoff.
	TxMaxRetries int           `envconfig:"DB_TX_MAX_RETRIES" default:"3" validate:"gte=0"`
	TxRetryBase  time.Duration `envconfig:"DB_TX_RETRY_BASE" default:"100ms"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"America/Argentina/Buenos_Aires"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"-10800"` // -3*60*60
}

// Tokens are issued by the identity service; this service only verifies them.
type JWTConfig struct {
	Secret string        `envconfig:"JWT_SECRET" required:"true" validate:"min=16"`
	Issuer string        `envconfig:"JWT_ISSUER"`
	Leeway time.Duration `envconfig:"JWT_LEEWAY" default:"30s"`
}

type ReservationConfig struct {
	DepositPercentage float64       `envconfig:"RESERVATION_DEPOSIT_PERCENTAGE" default:"0.20" validate:"gt=0,lte=1"`
	DepositWindow     time.Duration `envconfig:"RESERVATION_DEPOSIT_WINDOW" default:"30m" validate:"gt=0"`
	DefaultPageSize   int           `envconfig:"RESERVATION_DEFAULT_PAGE_SIZE" default:"10" validate:"gte=1,ltefield=MaxPageSize"`
	MaxPageSize       int           `envconfig:"RESERVATION_MAX_PAGE_SIZE" default:"100" validate:"gte=1"`
	MaxProofBytes     int64         `envconfig:"RESERVATION_MAX_PROOF_BYTES" default:"5242880" validate:"gt=0"`
	EnrichConcurrency int           `envconfig:"RESERVATION_ENRICH_CONCURRENCY" default:"4" validate:"gte=1"`
	// Sale dates sent to inventory use the store's calendar.
	StoreTimeZone string `envconfig:"RESERVATION_STORE_TIMEZONE" default:"America/Argentina/Buenos_Aires"`
}

type InventoryConfig struct {
	BaseURL      string        `envconfig:"INVENTORY_BASE_URL" required:"true" validate:"url"`
	ServiceToken string        `envconfig:"INVENTORY_SERVICE_TOKEN"`
	Timeout      time.Duration `envconfig:"INVENTORY_TIMEOUT" default:"5s"`
}

// S3-compatible object storage (Cloudflare R2 in production).
type StorageConfig struct {
	Endpoint        string `envconfig:"STORAGE_ENDPOINT" required:"true" validate:"url"`
	Region          string `envconfig:"STORAGE_REGION" default:"auto"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY_ID" required:"true"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_ACCESS_KEY" required:"true"`
	Bucket          string `envconfig:"STORAGE_BUCKET" required:"true"`
	PublicURL       string `envconfig:"STORAGE_PUBLIC_URL" required:"true" validate:"url"`
	KeyPrefix       string `envconfig:"STORAGE_KEY_PREFIX" default:"proofs"`
}

type TelemetryConfig struct {
	Enabled      bool   `envconfig:"OTEL_ENABLED" default:"false"`
	ServiceName  string `envconfig:"OTEL_SERVICE_NAME" default:"apple-sales-reservations"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4318"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate catches settings that would only fail on the first request, such as a
// deposit percentage of 20 instead of 0.20.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 5,

			TxMaxRetries: 3,
			TxRetryBase:  10 * time.Millisecond,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"http://localhost:3000"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
			MaxAge:       time.Hour,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "UTC",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 0,
		},
		JWT: JWTConfig{
			Secret: "test-secret-key-for-reservations",
		},
		Reservation: ReservationConfig{
			DepositPercentage: 0.20,
			DepositWindow:     30 * time.Minute,
			DefaultPageSize:   10,
			MaxPageSize:       100,
			MaxProofBytes:     5 << 20,
			EnrichConcurrency: 4,
			StoreTimeZone:     "UTC",
		},
		Inventory: InventoryConfig{
			BaseURL: "http://localhost:18081",
			Timeout: 2 * time.Second,
		},
		Storage: StorageConfig{
			Endpoint:        "http://localhost:19000",
			Region:          "auto",
			AccessKeyID:     "test",
			SecretAccessKey: "test",
			Bucket:          "proofs-test",
			PublicURL:       "https://files.test.local",
			KeyPrefix:       "proofs",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			ServiceName: "apple-sales-reservations-test",
		},
	}
}
