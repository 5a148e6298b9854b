package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Auth    AuthConfig
	S3      S3Config
	Log     LogConfig
	CORS    CORSConfig
	Queue   QueueConfig
	Engine  EngineConfig
	Export  ExportConfig
	Storage StorageConfig
	Email   EmailConfig
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// QueueConfig holds report queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int           `mapstructure:"poll_interval_secs"`
	Concurrency      int           `mapstructure:"concurrency"`
	ClaimLease       time.Duration `mapstructure:"claim_lease"`
	JobTimeout       time.Duration `mapstructure:"job_timeout"`
	MaxAttempts      int           `mapstructure:"max_attempts"`
}

// EngineConfig holds document engine settings.
type EngineConfig struct {
	ConverterBinary  string        `mapstructure:"converter_binary"`
	ConverterTimeout time.Duration `mapstructure:"converter_timeout"`
	MaxSessions      int           `mapstructure:"max_sessions"`
}

// ExportConfig names the export filters used for each output format.
type ExportConfig struct {
	PDFFilter    string `mapstructure:"pdf_filter"`
	NativeFilter string `mapstructure:"native_filter"`
}

// StorageConfig holds local filesystem locations for generated reports.
type StorageConfig struct {
	OutputDir       string `mapstructure:"output_dir"`
	ScratchDir      string `mapstructure:"scratch_dir"`
	KeepScratch     bool   `mapstructure:"keep_scratch"`
	PublicOutputURL string `mapstructure:"public_output_url"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// AuthConfig holds bearer token verification settings. An empty secret
// disables authentication.
type AuthConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// Enabled reports whether API requests must carry a token.
func (a *AuthConfig) Enabled() bool { return a.Secret != "" }

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the ALBAYAN_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ALBAYAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "albayan")
	v.SetDefault("db.password", "albayan_secret")
	v.SetDefault("db.name", "albayan_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Auth defaults
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "albayan")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "albayan-reports")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 20)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 5)
	v.SetDefault("queue.concurrency", 2)
	v.SetDefault("queue.claim_lease", "15m")
	v.SetDefault("queue.job_timeout", "10m")
	v.SetDefault("queue.max_attempts", 3)

	// Engine defaults
	v.SetDefault("engine.converter_binary", "soffice")
	v.SetDefault("engine.converter_timeout", "2m")
	v.SetDefault("engine.max_sessions", 2)

	// Export defaults
	v.SetDefault("export.pdf_filter", "writer_pdf_Export")
	v.SetDefault("export.native_filter", "writer8")

	// Storage defaults
	v.SetDefault("storage.output_dir", "./output")
	v.SetDefault("storage.scratch_dir", filepath.Join(os.TempDir(), "albayan"))
	v.SetDefault("storage.keep_scratch", false)
	v.SetDefault("storage.public_output_url", "/output")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@albayan.local")
	v.SetDefault("email.from_name", "Albayan Reports")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "ALBAYAN_SERVER_PORT",
		"server.read_timeout":       "ALBAYAN_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "ALBAYAN_SERVER_WRITE_TIMEOUT",
		"server.environment":        "ALBAYAN_SERVER_ENVIRONMENT",
		"db.host":                   "ALBAYAN_DB_HOST",
		"db.port":                   "ALBAYAN_DB_PORT",
		"db.user":                   "ALBAYAN_DB_USER",
		"db.password":               "ALBAYAN_DB_PASSWORD",
		"db.name":                   "ALBAYAN_DB_NAME",
		"db.sslmode":                "ALBAYAN_DB_SSLMODE",
		"db.max_open":               "ALBAYAN_DB_MAX_OPEN",
		"db.max_idle":               "ALBAYAN_DB_MAX_IDLE",
		"auth.secret":               "ALBAYAN_AUTH_SECRET",
		"auth.issuer":               "ALBAYAN_AUTH_ISSUER",
		"s3.region":                 "ALBAYAN_S3_REGION",
		"s3.bucket":                 "ALBAYAN_S3_BUCKET",
		"s3.endpoint":               "ALBAYAN_S3_ENDPOINT",
		"s3.access_key":             "ALBAYAN_S3_ACCESS_KEY",
		"s3.secret_key":             "ALBAYAN_S3_SECRET_KEY",
		"s3.max_file_size_mb":       "ALBAYAN_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":         "ALBAYAN_S3_PRESIGN_EXPIRY",
		"log.level":                 "ALBAYAN_LOG_LEVEL",
		"log.format":                "ALBAYAN_LOG_FORMAT",
		"cors.allowed_origins":      "ALBAYAN_CORS_ALLOWED_ORIGINS",
		"queue.poll_interval_secs":  "ALBAYAN_QUEUE_POLL_INTERVAL_SECS",
		"queue.concurrency":         "ALBAYAN_QUEUE_CONCURRENCY",
		"queue.claim_lease":         "ALBAYAN_QUEUE_CLAIM_LEASE",
		"queue.job_timeout":         "ALBAYAN_QUEUE_JOB_TIMEOUT",
		"queue.max_attempts":        "ALBAYAN_QUEUE_MAX_ATTEMPTS",
		"engine.converter_binary":   "ALBAYAN_ENGINE_CONVERTER_BINARY",
		"engine.converter_timeout":  "ALBAYAN_ENGINE_CONVERTER_TIMEOUT",
		"engine.max_sessions":       "ALBAYAN_ENGINE_MAX_SESSIONS",
		"export.pdf_filter":         "ALBAYAN_EXPORT_PDF_FILTER",
		"export.native_filter":      "ALBAYAN_EXPORT_NATIVE_FILTER",
		"storage.output_dir":        "ALBAYAN_STORAGE_OUTPUT_DIR",
		"storage.scratch_dir":       "ALBAYAN_STORAGE_SCRATCH_DIR",
		"storage.keep_scratch":      "ALBAYAN_STORAGE_KEEP_SCRATCH",
		"storage.public_output_url": "ALBAYAN_STORAGE_PUBLIC_OUTPUT_URL",
		"email.provider":            "ALBAYAN_EMAIL_PROVIDER",
		"email.region":              "ALBAYAN_EMAIL_REGION",
		"email.from_address":        "ALBAYAN_EMAIL_FROM_ADDRESS",
		"email.from_name":           "ALBAYAN_EMAIL_FROM_NAME",
		"email.frontend_url":        "ALBAYAN_EMAIL_FRONTEND_URL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Container platforms set PORT. Use it unless ALBAYAN_SERVER_PORT is set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("ALBAYAN_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Auth = AuthConfig{
		Secret: v.GetString("auth.secret"),
		Issuer: v.GetString("auth.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		Concurrency:      v.GetInt("queue.concurrency"),
		ClaimLease:       v.GetDuration("queue.claim_lease"),
		JobTimeout:       v.GetDuration("queue.job_timeout"),
		MaxAttempts:      v.GetInt("queue.max_attempts"),
	}
	cfg.Engine = EngineConfig{
		ConverterBinary:  v.GetString("engine.converter_binary"),
		ConverterTimeout: v.GetDuration("engine.converter_timeout"),
		MaxSessions:      v.GetInt("engine.max_sessions"),
	}
	cfg.Export = ExportConfig{
		PDFFilter:    v.GetString("export.pdf_filter"),
		NativeFilter: v.GetString("export.native_filter"),
	}
	cfg.Storage = StorageConfig{
		OutputDir:       v.GetString("storage.output_dir"),
		ScratchDir:      v.GetString("storage.scratch_dir"),
		KeepScratch:     v.GetBool("storage.keep_scratch"),
		PublicOutputURL: strings.TrimRight(v.GetString("storage.public_output_url"), "/"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}

	return cfg, nil
}
