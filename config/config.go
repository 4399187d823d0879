package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host" envconfig:"DB_HOST"`
	Port     int    `mapstructure:"port" envconfig:"DB_PORT"`
	User     string `mapstructure:"user" envconfig:"DB_USER"`
	Password string `mapstructure:"password" envconfig:"DB_PASSWORD"`
	Name     string `mapstructure:"name" envconfig:"DB_NAME"`
	SSLMode  string `mapstructure:"sslmode" envconfig:"DB_SSLMODE"`
}

type JWTConfig struct {
	Secret             string `mapstructure:"secret" envconfig:"JWT_SECRET"`
	RefreshSecret      string `mapstructure:"refresh_secret" envconfig:"JWT_REFRESH_SECRET"`
	ExpiryHours        int    `mapstructure:"expiry_hours"`
	RefreshExpiryHours int    `mapstructure:"refresh_expiry_hours"`
}

type GoogleOAuthConfig struct {
	ClientID     string `mapstructure:"client_id" envconfig:"GOOGLE_CLIENT_ID"`
	ClientSecret string `mapstructure:"client_secret" envconfig:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `mapstructure:"redirect_url" envconfig:"GOOGLE_REDIRECT_URL"`
}

type RedisConfig struct {
	URL string `mapstructure:"url" envconfig:"REDIS_URL"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host" envconfig:"SMTP_HOST"`
	Port     int    `mapstructure:"port" envconfig:"SMTP_PORT"`
	Username string `mapstructure:"username" envconfig:"SMTP_USERNAME"`
	Password string `mapstructure:"password" envconfig:"SMTP_PASSWORD"`
	From     string `mapstructure:"from" envconfig:"SMTP_FROM"`
	Enabled  bool   `mapstructure:"enabled"`
}

// DemoSlotStrategy picks how demo-doctor slots materialize: "ephemeral"
// synthesizes them per request with no write, "persisted" upserts them
// into time_slots on first view.
type DemoConfig struct {
	SlotStrategy string `mapstructure:"slot_strategy"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type OutboxConfig struct {
	BatchSize    int           `mapstructure:"batch_size"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

type Config struct {
	Server    ServerConfig      `mapstructure:"server"`
	Database  DatabaseConfig    `mapstructure:"database"`
	JWT       JWTConfig         `mapstructure:"jwt"`
	Google    GoogleOAuthConfig `mapstructure:"google"`
	Redis     RedisConfig       `mapstructure:"redis"`
	SMTP      SMTPConfig        `mapstructure:"smtp"`
	Demo      DemoConfig        `mapstructure:"demo"`
	RateLimit RateLimitConfig   `mapstructure:"rate_limit"`
	Outbox    OutboxConfig      `mapstructure:"outbox"`
}

// LoadConfig reads config.yaml via viper, then lets environment variables
// override the credential-bearing fields through envconfig.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 15*time.Second)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("jwt.expiry_hours", 24)
	viper.SetDefault("jwt.refresh_expiry_hours", 720)
	viper.SetDefault("demo.slot_strategy", "ephemeral")
	viper.SetDefault("rate_limit.requests_per_second", 50.0)
	viper.SetDefault("rate_limit.burst", 100)
	viper.SetDefault("outbox.batch_size", 50)
	viper.SetDefault("outbox.poll_interval", 5*time.Second)
	viper.SetDefault("outbox.max_retries", 3)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for _, override := range []interface{}{
		&cfg.Database, &cfg.JWT, &cfg.Google, &cfg.Redis, &cfg.SMTP,
	} {
		if err := envconfig.Process("", override); err != nil {
			return nil, fmt.Errorf("failed to apply env overrides: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate rejects configuration that would otherwise fail silently at
// runtime, e.g. a misspelled slot strategy degrading to ephemeral.
func (c *Config) validate() error {
	switch c.Demo.SlotStrategy {
	case "ephemeral", "persisted":
	default:
		return fmt.Errorf("invalid demo.slot_strategy %q: must be ephemeral or persisted", c.Demo.SlotStrategy)
	}
	return nil
}
