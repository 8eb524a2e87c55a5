package config

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/beatfarda/studio-api/internal/model"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Studio   StudioConfig
	Services []model.Service `mapstructure:"services"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	RateLimit      int `mapstructure:"rate_limit"`
	RateBurst      int `mapstructure:"rate_burst"`
}

type DatabaseConfig struct {
	// URL, when set, wins over the discrete fields.
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN builds the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

// StudioConfig carries the booking policy shared by the availability
// calculator and the reservation coordinator.
type StudioConfig struct {
	AccountID          string        `mapstructure:"account_id"`
	DayStartHour       int           `mapstructure:"day_start_hour"`
	DayEndHour         int           `mapstructure:"day_end_hour"`
	SlotStepMinutes    int           `mapstructure:"slot_step_minutes"`
	GlobalBufferBefore int           `mapstructure:"global_buffer_before"`
	GlobalBufferAfter  int           `mapstructure:"global_buffer_after"`
	MinLeadTimeHours   int           `mapstructure:"min_lead_time_hours"`
	HoldMinutes        int           `mapstructure:"hold_minutes"`
	SweepInterval      time.Duration `mapstructure:"sweep_interval"`
}

// HoldDuration is how long a provisional hold blocks the slot before payment.
func (s StudioConfig) HoldDuration() time.Duration {
	return time.Duration(s.HoldMinutes) * time.Minute
}

// MinLeadTime is the minimum notice between now and a bookable slot start.
func (s StudioConfig) MinLeadTime() time.Duration {
	return time.Duration(s.MinLeadTimeHours) * time.Hour
}

// SlotStep is the candidate-slot cursor step.
func (s StudioConfig) SlotStep() time.Duration {
	return time.Duration(s.SlotStepMinutes) * time.Minute
}

// Account parses the configured tenant account id.
func (s StudioConfig) Account() (uuid.UUID, error) {
	id, err := uuid.Parse(s.AccountID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid studio account id: %w", err)
	}
	return id, nil
}

// envOverrides holds deployment-level settings that beat the config file.
type envOverrides struct {
	DatabaseURL string `envconfig:"DATABASE_URL"`
	RedisURL    string `envconfig:"REDIS_URL"`
	Port        int    `envconfig:"PORT"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if env.Port != 0 {
		config.Server.Port = env.Port
	}
	if env.RedisURL != "" {
		config.Redis.URL = env.RedisURL
	}
	if env.DatabaseURL != "" {
		config.Database.URL = env.DatabaseURL
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeout_seconds", 30)
	viper.SetDefault("server.rate_limit", 20)
	viper.SetDefault("server.rate_burst", 40)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.min_idle_conns", 2)
	viper.SetDefault("studio.day_start_hour", 10)
	viper.SetDefault("studio.day_end_hour", 22)
	viper.SetDefault("studio.slot_step_minutes", 30)
	viper.SetDefault("studio.global_buffer_before", 15)
	viper.SetDefault("studio.global_buffer_after", 15)
	viper.SetDefault("studio.min_lead_time_hours", 24)
	viper.SetDefault("studio.hold_minutes", 15)
	viper.SetDefault("studio.sweep_interval", time.Minute)
}

func (c *Config) Validate() error {
	if c.Studio.DayStartHour < 0 || c.Studio.DayEndHour > 24 ||
		c.Studio.DayStartHour >= c.Studio.DayEndHour {
		return fmt.Errorf("invalid studio hours %d-%d", c.Studio.DayStartHour, c.Studio.DayEndHour)
	}
	if c.Studio.SlotStepMinutes <= 0 {
		return fmt.Errorf("slot step must be positive")
	}
	if c.Studio.HoldMinutes <= 0 {
		return fmt.Errorf("hold duration must be positive")
	}
	if _, err := c.Studio.Account(); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(c.Services))
	for _, svc := range c.Services {
		if svc.ID == "" {
			return fmt.Errorf("service with empty id in catalog")
		}
		if _, dup := seen[svc.ID]; dup {
			return fmt.Errorf("duplicate service id %q in catalog", svc.ID)
		}
		seen[svc.ID] = struct{}{}
	}
	return nil
}
