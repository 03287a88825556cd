package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "HIRELOCAL_CONFIG"

	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Storage    StorageConfig    `yaml:"storage"`
	Database   DatabaseConfig   `yaml:"database"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	Mail       MailConfig       `yaml:"mail"`
	WhatsApp   WhatsAppConfig   `yaml:"whatsapp"`
	Auth       AuthConfig       `yaml:"auth"`
	Delivery   DeliveryConfig   `yaml:"delivery"`
	Acceptance AcceptanceConfig `yaml:"acceptance"`
	Sweeps     SweepConfig      `yaml:"sweeps"`
	RateLimit  RateLimitConfig  `yaml:"rateLimit"`
	Log        LogConfig        `yaml:"log"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	AllowedOrigins  []string      `yaml:"allowedOrigins"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// StorageConfig picks the repository implementation. There is no automatic fallback.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	// SeedFile preloads users, profiles and subscriptions into the memory driver.
	SeedFile string `yaml:"seedFile"`
}

type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	Migrate         bool          `yaml:"migrate"`
}

// RabbitMQConfig is optional: an empty URL disables the customer notice queue.
type RabbitMQConfig struct {
	URL string `yaml:"url"`
}

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	BaseURL  string `yaml:"baseUrl"`
}

type WhatsAppConfig struct {
	AccessToken string `yaml:"accessToken"`
	PhoneID     string `yaml:"phoneId"`
	Language    string `yaml:"language"`
	BaseURL     string `yaml:"baseUrl"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret"`
	Issuer    string `yaml:"issuer"`
}

type DeliveryConfig struct {
	Concurrency int `yaml:"concurrency"`
}

type AcceptanceConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

type SweepConfig struct {
	MissedLeadInterval   time.Duration `yaml:"missedLeadInterval"`
	MissedLeadWindow     time.Duration `yaml:"missedLeadWindow"`
	SubscriptionInterval time.Duration `yaml:"subscriptionInterval"`
}

type RateLimitConfig struct {
	LeadsPerMinute int `yaml:"leadsPerMinute"`
	Burst          int `yaml:"burst"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			AllowedOrigins:  []string{"http://localhost:5173"},
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{Driver: DriverPostgres},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Mail:       MailConfig{Port: 587, From: "no-reply@hirelocal.in"},
		WhatsApp:   WhatsAppConfig{Language: "en"},
		Delivery:   DeliveryConfig{Concurrency: 8},
		Acceptance: AcceptanceConfig{Timeout: 5 * time.Second},
		Sweeps: SweepConfig{
			MissedLeadInterval:   5 * time.Minute,
			MissedLeadWindow:     72 * time.Hour,
			SubscriptionInterval: 15 * time.Minute,
		},
		RateLimit: RateLimitConfig{LeadsPerMinute: 5, Burst: 5},
		Log:       LogConfig{Level: "info", Format: "json"},
	}
}

// Load layers defaults, the YAML file named by HIRELOCAL_CONFIG and environment variables,
// in that order, then validates the result.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	setString := func(env string, dst *string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	setInt := func(env string, dst *int) error {
		v := os.Getenv(env)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", env, err)
		}
		*dst = n
		return nil
	}

	if v := os.Getenv("PORT"); v != "" {
		c.HTTP.Addr = ":" + v
	}
	setString("STORAGE_DRIVER", &c.Storage.Driver)
	setString("STORAGE_SEED_FILE", &c.Storage.SeedFile)
	setString("DATABASE_URL", &c.Database.DSN)
	if v := os.Getenv("DATABASE_MIGRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: DATABASE_MIGRATE: %w", err)
		}
		c.Database.Migrate = b
	}
	setString("RABBITMQ_URL", &c.RabbitMQ.URL)
	setString("MAIL_HOST", &c.Mail.Host)
	if err := setInt("MAIL_PORT", &c.Mail.Port); err != nil {
		return err
	}
	setString("MAIL_USER", &c.Mail.User)
	setString("MAIL_PASS", &c.Mail.Password)
	setString("MAIL_FROM", &c.Mail.From)
	setString("APP_BASE_URL", &c.Mail.BaseURL)
	setString("WHATSAPP_ACCESS_TOKEN", &c.WhatsApp.AccessToken)
	setString("WHATSAPP_PHONE_ID", &c.WhatsApp.PhoneID)
	setString("JWT_SECRET", &c.Auth.JWTSecret)
	if err := setInt("DELIVERY_CONCURRENCY", &c.Delivery.Concurrency); err != nil {
		return err
	}
	setString("LOG_LEVEL", &c.Log.Level)
	return nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("database.dsn is required for the postgres driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Storage.Driver))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwtSecret is required"))
	}
	if c.Delivery.Concurrency < 1 {
		errs = append(errs, errors.New("delivery.concurrency must be at least 1"))
	}
	if c.Acceptance.Timeout <= 0 {
		errs = append(errs, errors.New("acceptance.timeout must be positive"))
	}
	if c.Sweeps.MissedLeadWindow <= 0 || c.Sweeps.MissedLeadInterval <= 0 || c.Sweeps.SubscriptionInterval <= 0 {
		errs = append(errs, errors.New("sweep intervals and window must be positive"))
	}
	if c.RateLimit.LeadsPerMinute < 1 || c.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("rateLimit values must be at least 1"))
	}
	return errors.Join(errs...)
}
