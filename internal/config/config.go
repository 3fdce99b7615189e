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
	App         AppConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Workday     WorkdayConfig
	Checkpoints CheckpointsConfig
	Office      OfficeConfig
	SMTP        SMTPConfig
	Push        PushConfig
	CORS        CORSConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	AccessExpiration  string
	RefreshExpiration string
}

// WorkdayConfig holds the reference workday shape. All times are
// interpreted in Timezone; no other component does timezone math.
type WorkdayConfig struct {
	Timezone      string
	StandardStart string // "HH:MM"
	StandardEnd   string // "HH:MM"
	StandardHours float64
}

// CheckpointsConfig holds the canonical slot table and escalation timing.
type CheckpointsConfig struct {
	Slots             []string // "HH:MM", 24-hour
	WindowLeadMinutes int
	WarnMinutes       int
	EscalateMinutes   int
	SweepInterval     time.Duration
}

// OfficeConfig holds the geofence reference point.
type OfficeConfig struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// PushConfig holds the push-gateway client-credentials settings.
type PushConfig struct {
	GatewayURL   string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cms"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
	}

	// Workday configuration
	standardHours, err := strconv.ParseFloat(getEnv("WORKDAY_STANDARD_HOURS", "8"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKDAY_STANDARD_HOURS: %w", err)
	}

	config.Workday = WorkdayConfig{
		Timezone:      getEnv("WORKDAY_TIMEZONE", "Asia/Kolkata"),
		StandardStart: getEnv("WORKDAY_STANDARD_START", "09:00"),
		StandardEnd:   getEnv("WORKDAY_STANDARD_END", "17:30"),
		StandardHours: standardHours,
	}

	// Checkpoint configuration
	leadMinutes, err := strconv.Atoi(getEnv("CHECKPOINT_WINDOW_LEAD_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKPOINT_WINDOW_LEAD_MINUTES: %w", err)
	}
	warnMinutes, err := strconv.Atoi(getEnv("CHECKPOINT_WARN_MINUTES", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKPOINT_WARN_MINUTES: %w", err)
	}
	escalateMinutes, err := strconv.Atoi(getEnv("CHECKPOINT_ESCALATE_MINUTES", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKPOINT_ESCALATE_MINUTES: %w", err)
	}
	sweepInterval, err := time.ParseDuration(getEnv("CHECKPOINT_SWEEP_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKPOINT_SWEEP_INTERVAL: %w", err)
	}

	slots := getEnvSlice("CHECKPOINT_SLOTS")
	if len(slots) == 0 {
		slots = []string{"10:30", "12:00", "13:30", "16:00", "17:30"}
	}

	config.Checkpoints = CheckpointsConfig{
		Slots:             slots,
		WindowLeadMinutes: leadMinutes,
		WarnMinutes:       warnMinutes,
		EscalateMinutes:   escalateMinutes,
		SweepInterval:     sweepInterval,
	}

	// Office geofence configuration
	officeLat, err := strconv.ParseFloat(getEnv("OFFICE_LATITUDE", "0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OFFICE_LATITUDE: %w", err)
	}
	officeLng, err := strconv.ParseFloat(getEnv("OFFICE_LONGITUDE", "0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OFFICE_LONGITUDE: %w", err)
	}
	officeRadius, err := strconv.ParseFloat(getEnv("OFFICE_RADIUS_METERS", "1000"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OFFICE_RADIUS_METERS: %w", err)
	}

	config.Office = OfficeConfig{
		Latitude:     officeLat,
		Longitude:    officeLng,
		RadiusMeters: officeRadius,
	}

	// SMTP configuration
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@cms.local"),
		FromName: getEnv("SMTP_FROM_NAME", "Compliance Bot"),
	}

	// Push gateway configuration
	config.Push = PushConfig{
		GatewayURL:   getEnv("PUSH_GATEWAY_URL", ""),
		TokenURL:     getEnv("PUSH_TOKEN_URL", ""),
		ClientID:     getEnv("PUSH_CLIENT_ID", ""),
		ClientSecret: getEnv("PUSH_CLIENT_SECRET", ""),
	}

	// CORS configuration
	origins := getEnvSlice("CORS_ALLOWED_ORIGINS")
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	config.CORS = CORSConfig{AllowedOrigins: origins}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Checkpoints.WarnMinutes <= 0 {
		return fmt.Errorf("CHECKPOINT_WARN_MINUTES must be positive")
	}
	if c.Checkpoints.EscalateMinutes <= c.Checkpoints.WarnMinutes {
		return fmt.Errorf("CHECKPOINT_ESCALATE_MINUTES must exceed CHECKPOINT_WARN_MINUTES")
	}
	if c.Checkpoints.WindowLeadMinutes <= 0 {
		return fmt.Errorf("CHECKPOINT_WINDOW_LEAD_MINUTES must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
