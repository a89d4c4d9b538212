package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Durable DurableConfig `mapstructure:"durable"`
	Cache   CacheConfig   `mapstructure:"cache"`
	SMTP    SMTPConfig    `mapstructure:"smtp"`
	Admin   AdminConfig   `mapstructure:"admin"`
	Company CompanyConfig `mapstructure:"company"`
	Logger  LoggerConfig  `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// DurableConfig holds durable store (Postgres) configuration
type DurableConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// CacheConfig holds local cache (SQLite) configuration
type CacheConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SMTPConfig holds email transport configuration
type SMTPConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	FromName    string `mapstructure:"from_name"`
	FromAddress string `mapstructure:"from_address"`
}

// AdminConfig holds the admin session gate configuration
type AdminConfig struct {
	SessionCookie string `mapstructure:"session_cookie"`
	SessionToken  string `mapstructure:"session_token"`
}

// CompanyConfig holds the business identity used on rendered documents
type CompanyConfig struct {
	Name    string `mapstructure:"name"`
	Email   string `mapstructure:"email"`
	Website string `mapstructure:"website"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	viper.SetDefault("durable.max_open_conns", 25)
	viper.SetDefault("durable.max_idle_conns", 5)
	viper.SetDefault("durable.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("durable.migrations_dir", "migrations/postgres")

	viper.SetDefault("cache.path", "data/backoffice-cache.db")
	viper.SetDefault("cache.max_open_conns", 5)
	viper.SetDefault("cache.max_idle_conns", 2)
	viper.SetDefault("cache.conn_max_lifetime", 5*time.Minute)

	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("smtp.from_name", "Studioware Billing")

	viper.SetDefault("admin.session_cookie", "admin_session")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("durable.dsn", "DATABASE_URL")
	viper.BindEnv("smtp.host", "SMTP_HOST")
	viper.BindEnv("smtp.username", "SMTP_USERNAME")
	viper.BindEnv("smtp.password", "SMTP_PASSWORD")
	viper.BindEnv("smtp.from_address", "SMTP_FROM_ADDRESS")
	viper.BindEnv("admin.session_token", "ADMIN_SESSION_TOKEN")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Durable.DSN == "" {
		return fmt.Errorf("durable.dsn is required")
	}
	if c.Cache.Path == "" {
		return fmt.Errorf("cache.path is required")
	}
	if c.SMTP.Host == "" {
		return fmt.Errorf("smtp.host is required")
	}
	if c.SMTP.FromAddress == "" {
		return fmt.Errorf("smtp.from_address is required")
	}
	if c.Admin.SessionToken == "" {
		return fmt.Errorf("admin.session_token is required")
	}
	if c.Company.Name == "" {
		return fmt.Errorf("company.name is required")
	}
	return nil
}
