// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/db"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	Ingestion IngestionConfig
	YouTube   YouTubeConfig
	RabbitMQ  RabbitMQConfig
	Logging   LoggingConfig
	Database  DatabaseConfig
	Server    ServerConfig
}

// IngestionConfig contains the run schedule and watch-list.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type IngestionConfig struct {
	Timezone     string
	TargetHour   int
	DailyMax     int
	RequestDelay time.Duration
	MaxDuration  time.Duration
	Channels     []string
	FailOnError  bool
}

// YouTubeConfig contains the Data API credentials.
type YouTubeConfig struct {
	APIKey string
	// Endpoint overrides the API base URL, for local fakes.
	Endpoint string
}

// ServerConfig contains HTTP server configuration. The server only runs when Enabled is set.
type ServerConfig struct {
	Enabled         bool
	Port            int
	ShutdownTimeout time.Duration
	// APIKeys guard the run trigger.
	APIKeys []string
}

// DatabaseConfig contains database connection configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type DatabaseConfig struct {
	URL            string
	Host           string
	Name           string
	User           string
	Password       string
	Port           int
	MaxConnections int
	MinConnections int
	MaxIdleTime    time.Duration
	MaxLifetime    time.Duration
}

// RabbitMQConfig contains RabbitMQ connection and queue configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type RabbitMQConfig struct {
	Enabled    bool
	Host       string
	User       string
	Password   string
	Exchange   string
	Queue      string
	RoutingKey string
	Port       int
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// DefaultChannels is the watch-list used when none is configured.
var DefaultChannels = []string{
	"UC95qm5Xg8AOFPQajjriO4CA",
	"UCJdIPJrFvh2KbnbX4U9ILhA",
	"UCtFXLjeUk7lJ9eN0KAxqn1w",
	"UCqe0sSESmaQbLFdTExctQLA",
	"UCvC4D8onUfXzvjTOM-dBfEA",
	"UCRE-097LGtx_Zo7LrHvkycA",
	"UCPNxhDvTcytIdvwXWAm43cA",
	"UCl3F2QfnlJj3BCYhbbG4wqg",
	"UCq9TsFbtNkfRiKa7YxKEorw",
	"UCe9qomDawkYpuPyG6prIfCg",
	"UCp41n_WUDdvC2qu20MsmYng",
	"UC5NEWyJDtr8vtzJWT6SXK4Q",
	"UCZTGFkS7f-6NqCw66-Rj2Ag",
	"UC45w2hxRWSdVPUHZXNl_CuQ",
	"UCa4BGN_3s2xW3rci_v6Nphw",
	"UCJhlFKSRaF483kPayLjovyA",
	"UC-MeFI2sQpSoi0zxavR5dLw",
	"UCJlumPwjk1-PStyYGhtK9yA",
	"UClCUtBCBJw1UB3PDwW_Jemg",
	"UCbAZH3nTxzyNmehmTUhuUsA",
	"UCDtgtjN1fq7yFEAP8iTrV2w",
	"UCG98ruDeyp55THxbpBCIv3g",
	"UCtKdMZGVlIQXcDuETX1LvTA",
	"UCNkDZBwQM-uMEC3TrNUzRCQ",
	"UCWqY4jGnjJ-A7DojRSS5F4g",
	"UCFx3j0DLkcCU3aTKJnb8-Ug",
	"UCqvgSFtxX7YSDbJdzhfQOOg",
	"UCFpuqadXaJdIBumC5CfyQeA",
	"UCOo-DTlc97oR6uvGNZGjVEg",
	"UCTt1ranoSdq6JxGcikhvRqA",
	"UCivKv4Q9HGM04Y0o8aTmZZw",
	"UCGA_iwc3t5I1dVFff54wYGA",
	"UCPvLEc3la6Q2MdlCXzKRRPg",
	"UCBjMCVOUt2MuEWS4YPzBH2g",
	"UCZ7HzTBmljSCMBNRoNgHuJA",
	"UCvz84_Q0BbvZThy75mbd-Dg",
	"UCgPeJSMnI75Px4p5sZeIOcg",
	"UC_JISfg0S3EBA0g4Hz0b85Q",
	"UCW2oS6trETa9jMN_Rb36xlg",
	"UCj5fjg5xArF1WEaTmSJPE4Q",
	"UCDWMEIEKgwHLjl2x2WdL_Jg",
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set defaults
	setDefaults()

	// Read environment variables, APP_INGESTION_TARGETHOUR maps to ingestion.targethour
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Variable names the job has always been deployed with
	_ = viper.BindEnv("youtube.apikey", "APP_YOUTUBE_APIKEY", "YOUTUBE_API_KEY")
	_ = viper.BindEnv("database.url", "APP_DATABASE_URL", "DATABASE_URL")

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate reports the first setting the job cannot run with.
func (c *Config) Validate() error {
	if c.YouTube.APIKey == "" {
		return errors.New("youtube.apikey is required")
	}
	if c.Ingestion.TargetHour < 0 || c.Ingestion.TargetHour > 23 {
		return fmt.Errorf("ingestion.targethour must be between 0 and 23, got %d", c.Ingestion.TargetHour)
	}
	if _, err := time.LoadLocation(c.Ingestion.Timezone); err != nil {
		return fmt.Errorf("ingestion.timezone: %w", err)
	}
	if c.Ingestion.DailyMax <= 0 {
		return fmt.Errorf("ingestion.dailymax must be positive, got %d", c.Ingestion.DailyMax)
	}
	if len(c.Ingestion.Channels) == 0 {
		return errors.New("ingestion.channels must not be empty")
	}
	seen := make(map[string]struct{}, len(c.Ingestion.Channels))
	for _, id := range c.Ingestion.Channels {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("ingestion.channels contains duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
	if c.Ingestion.RequestDelay < 0 {
		return fmt.Errorf("ingestion.requestdelay must not be negative, got %s", c.Ingestion.RequestDelay)
	}
	if c.Server.Enabled && len(c.Server.APIKeys) == 0 {
		return errors.New("server.apikeys is required when server.enabled is set")
	}
	if c.Ingestion.MaxDuration <= 0 {
		return fmt.Errorf("ingestion.maxduration must be positive, got %s", c.Ingestion.MaxDuration)
	}
	return nil
}

// DBConfig converts the database settings into a pool configuration.
func (c *DatabaseConfig) DBConfig() *db.Config {
	return &db.Config{
		URL:             c.URL,
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Password:        c.Password,
		Database:        c.Name,
		MaxConns:        int32(c.MaxConnections),
		MinConns:        int32(c.MinConnections),
		MaxConnLifetime: c.MaxLifetime,
		MaxConnIdleTime: c.MaxIdleTime,
	}
}

// AMQPURL renders the broker connection URL.
func (c *RabbitMQConfig) AMQPURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", c.User, c.Password, c.Host, c.Port)
}

func setDefaults() {
	// Ingestion
	viper.SetDefault("ingestion.timezone", "Africa/Casablanca")
	viper.SetDefault("ingestion.targethour", 10)
	viper.SetDefault("ingestion.dailymax", 300)
	viper.SetDefault("ingestion.requestdelay", 1500*time.Millisecond)
	viper.SetDefault("ingestion.maxduration", 180*time.Second)
	viper.SetDefault("ingestion.channels", DefaultChannels)
	viper.SetDefault("ingestion.failonerror", false)

	// YouTube
	viper.SetDefault("youtube.apikey", "")
	viper.SetDefault("youtube.endpoint", "")

	// Server
	viper.SetDefault("server.enabled", false)
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)
	viper.SetDefault("server.apikeys", []string{})

	// Database
	viper.SetDefault("database.url", "")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "shorts_catalog")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.maxconnections", 4)
	viper.SetDefault("database.minconnections", 1)
	viper.SetDefault("database.maxidletime", 10*time.Minute)
	viper.SetDefault("database.maxlifetime", 1*time.Hour)

	// RabbitMQ
	viper.SetDefault("rabbitmq.enabled", false)
	viper.SetDefault("rabbitmq.host", "localhost")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.exchange", "youtube.shorts")
	viper.SetDefault("rabbitmq.queue", "youtube.shorts.ingested")
	viper.SetDefault("rabbitmq.routingkey", "video.ingested")

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}
