package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	GRPC       GRPCConfig       `yaml:"grpc"`
	Database   DatabaseConfig   `yaml:"database"`
	Email      EmailConfig      `yaml:"email"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	SendGrid   SendGridConfig   `yaml:"sendgrid"`
	JWT        JWTConfig        `yaml:"jwt"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Visa       VisaConfig       `yaml:"visa"`
	Invitation InvitationConfig `yaml:"invitation"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host                   string `yaml:"host" env:"SERVER_HOST"`
	Port                   int    `yaml:"port" env:"SERVER_PORT"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds" env:"SERVER_SHUTDOWN_TIMEOUT_SECONDS"`
}

// GRPCConfig contains the health/reflection gRPC listener settings
type GRPCConfig struct {
	Enabled bool `yaml:"enabled" env:"GRPC_ENABLED"`
	Port    int  `yaml:"port" env:"GRPC_PORT"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host         string `yaml:"host" env:"DB_HOST"`
	Port         int    `yaml:"port" env:"DB_PORT"`
	User         string `yaml:"user" env:"DB_USER"`
	Password     string `yaml:"password" env:"DB_PASSWORD"`
	Database     string `yaml:"database" env:"DB_NAME"`
	SSLMode      string `yaml:"ssl_mode" env:"DB_SSL_MODE"`
	AutoMigrate  bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
	MaxOpenConns int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
}

// EmailConfig selects the outbound mail provider
type EmailConfig struct {
	Provider    string `yaml:"provider" env:"EMAIL_PROVIDER"` // "smtp", "sendgrid" or "log"
	FromAddress string `yaml:"from_address" env:"EMAIL_FROM_ADDRESS"`
	FromName    string `yaml:"from_name" env:"EMAIL_FROM_NAME"`
}

// SMTPConfig contains SMTP relay settings
type SMTPConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT"`
	User     string `yaml:"user" env:"SMTP_USER"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	TLS      bool   `yaml:"tls" env:"SMTP_TLS"`
}

// SendGridConfig contains SendGrid API settings
type SendGridConfig struct {
	APIKey string `yaml:"api_key" env:"SENDGRID_API_KEY"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret             string `yaml:"secret" env:"JWT_SECRET"`
	AccessTokenExpiry  int    `yaml:"access_token_expiry_minutes" env:"JWT_ACCESS_TOKEN_EXPIRY_MINUTES"`
	RefreshTokenExpiry int    `yaml:"refresh_token_expiry_minutes" env:"JWT_REFRESH_TOKEN_EXPIRY_MINUTES"`
}

// StorageConfig contains document storage settings
type StorageConfig struct {
	Type                string   `yaml:"type" env:"STORAGE_TYPE"`             // "mock" or "firebase"
	UploadDir           string   `yaml:"upload_dir" env:"UPLOAD_DIR"`         // For mock storage
	BaseURL             string   `yaml:"base_url" env:"STORAGE_BASE_URL"`     // Server base URL for mock URLs
	Bucket              string   `yaml:"bucket" env:"STORAGE_BUCKET"`         // For firebase storage
	CredentialsFile     string   `yaml:"credentials_file" env:"GOOGLE_APPLICATION_CREDENTIALS"`
	URLExpiryMinutes    int      `yaml:"url_expiry_minutes" env:"STORAGE_URL_EXPIRY_MINUTES"`
	MaxFileSize         int64    `yaml:"max_file_size_mb" env:"STORAGE_MAX_FILE_SIZE_MB"`
	AllowedContentTypes []string `yaml:"allowed_content_types" env:"STORAGE_ALLOWED_CONTENT_TYPES" envSeparator:","`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`   // "debug", "info", "warn", "error"
	Format string `yaml:"format" env:"LOG_FORMAT"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	SendVisaReminders          string `yaml:"send_visa_reminders" env:"CRON_SEND_VISA_REMINDERS"`
	WarnExpiringAuthorizations string `yaml:"warn_expiring_authorizations" env:"CRON_WARN_EXPIRING_AUTHORIZATIONS"`
	PurgeRegistrationTokens    string `yaml:"purge_registration_tokens" env:"CRON_PURGE_REGISTRATION_TOKENS"`
}

// VisaConfig contains visa tracking settings
type VisaConfig struct {
	ExpiryWarningDays []int `yaml:"expiry_warning_days" env:"VISA_EXPIRY_WARNING_DAYS" envSeparator:","`
}

// InvitationConfig contains registration invite settings
type InvitationConfig struct {
	FrontendURL        string `yaml:"frontend_url" env:"FRONTEND_URL"`
	TokenExpiryMinutes int    `yaml:"token_expiry_minutes" env:"INVITATION_TOKEN_EXPIRY_MINUTES"`
	RetentionDays      int    `yaml:"retention_days" env:"INVITATION_RETENTION_DAYS"`
}

// TelemetryConfig contains OpenTelemetry exporter settings
type TelemetryConfig struct {
	ServiceName  string `yaml:"service_name" env:"OTEL_SERVICE_NAME"`
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables win over the file
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 15
	}
	if c.GRPC.Enabled && (c.GRPC.Port <= 0 || c.GRPC.Port > 65535) {
		return fmt.Errorf("invalid grpc port: %d", c.GRPC.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.Email.Provider == "" {
		c.Email.Provider = "log"
	}
	switch c.Email.Provider {
	case "smtp":
		if c.SMTP.Host == "" {
			return fmt.Errorf("SMTP host is required")
		}
		if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.SMTP.Port)
		}
	case "sendgrid":
		if c.SendGrid.APIKey == "" {
			return fmt.Errorf("SendGrid API key is required")
		}
	case "log":
	default:
		return fmt.Errorf("unknown email provider: %s", c.Email.Provider)
	}
	if c.Email.Provider != "log" && c.Email.FromAddress == "" {
		return fmt.Errorf("email from address is required")
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "HR Team"
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}
	if c.JWT.RefreshTokenExpiry == 0 {
		c.JWT.RefreshTokenExpiry = 7 * 24 * 60
	}

	if c.Storage.Type == "" {
		c.Storage.Type = "mock"
	}
	switch c.Storage.Type {
	case "mock":
		if c.Storage.UploadDir == "" {
			return fmt.Errorf("upload directory is required")
		}
		if c.Storage.BaseURL == "" {
			c.Storage.BaseURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
		}
	case "firebase":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage bucket is required")
		}
	default:
		return fmt.Errorf("unknown storage type: %s", c.Storage.Type)
	}
	if c.Storage.URLExpiryMinutes == 0 {
		c.Storage.URLExpiryMinutes = 15
	}
	if c.Storage.MaxFileSize == 0 {
		c.Storage.MaxFileSize = 10
	}
	if len(c.Storage.AllowedContentTypes) == 0 {
		c.Storage.AllowedContentTypes = []string{"application/pdf", "image/jpeg", "image/png"}
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Scheduler.SendVisaReminders == "" {
		c.Scheduler.SendVisaReminders = "0 0 9 * * *" // Daily at 9 AM UTC
	}
	if c.Scheduler.WarnExpiringAuthorizations == "" {
		c.Scheduler.WarnExpiringAuthorizations = "0 0 8 * * *" // Daily at 8 AM UTC
	}
	if c.Scheduler.PurgeRegistrationTokens == "" {
		c.Scheduler.PurgeRegistrationTokens = "0 0 3 * * *" // Daily at 3 AM UTC
	}

	if len(c.Visa.ExpiryWarningDays) == 0 {
		c.Visa.ExpiryWarningDays = []int{90, 60, 30, 14, 7, 1}
	}
	for _, d := range c.Visa.ExpiryWarningDays {
		if d <= 0 {
			return fmt.Errorf("invalid expiry warning day: %d", d)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(c.Visa.ExpiryWarningDays)))

	if c.Invitation.FrontendURL == "" {
		c.Invitation.FrontendURL = "http://localhost:5173"
	}
	if c.Invitation.TokenExpiryMinutes == 0 {
		c.Invitation.TokenExpiryMinutes = 180
	}
	if c.Invitation.RetentionDays == 0 {
		c.Invitation.RetentionDays = 90
	}

	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "hr-onboarding-backend"
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetGRPCAddress returns the gRPC health server address
func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.GRPC.Port)
}
