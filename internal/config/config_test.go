package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		setup   func()
		cleanup func()
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "load with defaults (no config file)",
			setup: func() {
				viper.Reset()
			},
			cleanup: func() {},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Ingestion.Timezone != "Africa/Casablanca" {
					t.Errorf("Ingestion.Timezone = %s, want Africa/Casablanca", cfg.Ingestion.Timezone)
				}
				if cfg.Ingestion.TargetHour != 10 {
					t.Errorf("Ingestion.TargetHour = %d, want 10", cfg.Ingestion.TargetHour)
				}
				if cfg.Ingestion.DailyMax != 300 {
					t.Errorf("Ingestion.DailyMax = %d, want 300", cfg.Ingestion.DailyMax)
				}
				if cfg.Ingestion.RequestDelay != 1500*time.Millisecond {
					t.Errorf("Ingestion.RequestDelay = %v, want 1.5s", cfg.Ingestion.RequestDelay)
				}
				if cfg.Ingestion.MaxDuration != 180*time.Second {
					t.Errorf("Ingestion.MaxDuration = %v, want 3m0s", cfg.Ingestion.MaxDuration)
				}
				if len(cfg.Ingestion.Channels) != 41 {
					t.Errorf("len(Ingestion.Channels) = %d, want 41", len(cfg.Ingestion.Channels))
				}
				if cfg.Ingestion.FailOnError {
					t.Error("Ingestion.FailOnError = true, want false")
				}
				if cfg.Server.Enabled {
					t.Error("Server.Enabled = true, want false")
				}
				if cfg.RabbitMQ.Enabled {
					t.Error("RabbitMQ.Enabled = true, want false")
				}
				if cfg.Database.Port != 5432 {
					t.Errorf("Database.Port = %d, want 5432", cfg.Database.Port)
				}
			},
		},
		{
			name: "load with environment variables",
			setup: func() {
				viper.Reset()
				os.Setenv("APP_INGESTION_TARGETHOUR", "18")
				os.Setenv("APP_INGESTION_REQUESTDELAY", "250ms")
				os.Setenv("APP_INGESTION_CHANNELS", "UCone,UCtwo")
				os.Setenv("APP_SERVER_ENABLED", "true")
				os.Setenv("APP_RABBITMQ_HOST", "testrabbitmq")
			},
			cleanup: func() {
				os.Unsetenv("APP_INGESTION_TARGETHOUR")
				os.Unsetenv("APP_INGESTION_REQUESTDELAY")
				os.Unsetenv("APP_INGESTION_CHANNELS")
				os.Unsetenv("APP_SERVER_ENABLED")
				os.Unsetenv("APP_RABBITMQ_HOST")
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Ingestion.TargetHour != 18 {
					t.Errorf("Ingestion.TargetHour = %d, want 18", cfg.Ingestion.TargetHour)
				}
				if cfg.Ingestion.RequestDelay != 250*time.Millisecond {
					t.Errorf("Ingestion.RequestDelay = %v, want 250ms", cfg.Ingestion.RequestDelay)
				}
				if strings.Join(cfg.Ingestion.Channels, " ") != "UCone UCtwo" {
					t.Errorf("Ingestion.Channels = %v, want [UCone UCtwo]", cfg.Ingestion.Channels)
				}
				if !cfg.Server.Enabled {
					t.Error("Server.Enabled = false, want true")
				}
				if cfg.RabbitMQ.Host != "testrabbitmq" {
					t.Errorf("RabbitMQ.Host = %s, want testrabbitmq", cfg.RabbitMQ.Host)
				}
			},
		},
		{
			name: "load with deployment variable names",
			setup: func() {
				viper.Reset()
				os.Setenv("YOUTUBE_API_KEY", "test-key")
				os.Setenv("DATABASE_URL", "postgres://u:p@db:5432/shorts")
			},
			cleanup: func() {
				os.Unsetenv("YOUTUBE_API_KEY")
				os.Unsetenv("DATABASE_URL")
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				if cfg.YouTube.APIKey != "test-key" {
					t.Errorf("YouTube.APIKey = %s, want test-key", cfg.YouTube.APIKey)
				}
				if cfg.Database.URL != "postgres://u:p@db:5432/shorts" {
					t.Errorf("Database.URL = %s, want postgres://u:p@db:5432/shorts", cfg.Database.URL)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			defer func() {
				if tt.cleanup != nil {
					tt.cleanup()
				}
			}()

			cfg, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && cfg == nil {
				t.Fatal("Load() returned nil config")
			}

			if tt.check != nil && cfg != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	viper.Reset()
	setDefaults()

	tests := []struct {
		name string
		key  string
		want interface{}
	}{
		{"ingestion timezone", "ingestion.timezone", "Africa/Casablanca"},
		{"ingestion targethour", "ingestion.targethour", 10},
		{"ingestion dailymax", "ingestion.dailymax", 300},
		{"ingestion failonerror", "ingestion.failonerror", false},
		{"server enabled", "server.enabled", false},
		{"server port", "server.port", 8080},
		{"database host", "database.host", "localhost"},
		{"database port", "database.port", 5432},
		{"database name", "database.name", "shorts_catalog"},
		{"database maxconnections", "database.maxconnections", 4},
		{"rabbitmq enabled", "rabbitmq.enabled", false},
		{"rabbitmq exchange", "rabbitmq.exchange", "youtube.shorts"},
		{"rabbitmq queue", "rabbitmq.queue", "youtube.shorts.ingested"},
		{"rabbitmq routingkey", "rabbitmq.routingkey", "video.ingested"},
		{"logging level", "logging.level", "info"},
		{"logging file", "logging.file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := viper.Get(tt.key)
			if got != tt.want {
				t.Errorf("viper.Get(%s) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}

	if viper.GetDuration("ingestion.requestdelay") != 1500*time.Millisecond {
		t.Errorf("ingestion.requestdelay = %v, want 1.5s", viper.GetDuration("ingestion.requestdelay"))
	}
	if viper.GetDuration("ingestion.maxduration") != 3*time.Minute {
		t.Errorf("ingestion.maxduration = %v, want 3m", viper.GetDuration("ingestion.maxduration"))
	}
	if viper.GetDuration("server.shutdowntimeout") != 30*time.Second {
		t.Errorf("server.shutdowntimeout = %v, want 30s", viper.GetDuration("server.shutdowntimeout"))
	}
}

func validConfig() *Config {
	return &Config{
		Ingestion: IngestionConfig{
			Timezone:     "Africa/Casablanca",
			TargetHour:   10,
			DailyMax:     300,
			RequestDelay: 1500 * time.Millisecond,
			MaxDuration:  180 * time.Second,
			Channels:     []string{"UCone"},
		},
		YouTube: YouTubeConfig{APIKey: "key"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing api key", func(c *Config) { c.YouTube.APIKey = "" }, "youtube.apikey"},
		{"negative hour", func(c *Config) { c.Ingestion.TargetHour = -1 }, "targethour"},
		{"hour 24", func(c *Config) { c.Ingestion.TargetHour = 24 }, "targethour"},
		{"unknown zone", func(c *Config) { c.Ingestion.Timezone = "Mars/Olympus" }, "timezone"},
		{"zero daily max", func(c *Config) { c.Ingestion.DailyMax = 0 }, "dailymax"},
		{"no channels", func(c *Config) { c.Ingestion.Channels = nil }, "channels"},
		{"duplicate channel", func(c *Config) { c.Ingestion.Channels = []string{"UCone", "UCtwo", "UCone"} }, "duplicate id \"UCone\""},
		{"default watch-list", func(c *Config) { c.Ingestion.Channels = DefaultChannels }, ""},
		{"negative delay", func(c *Config) { c.Ingestion.RequestDelay = -time.Second }, "requestdelay"},
		{"zero max duration", func(c *Config) { c.Ingestion.MaxDuration = 0 }, "maxduration"},
		{"server without keys", func(c *Config) { c.Server.Enabled = true }, "server.apikeys"},
		{"server with keys", func(c *Config) { c.Server.Enabled = true; c.Server.APIKeys = []string{"k"} }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestDatabaseConfig_DBConfig(t *testing.T) {
	dc := DatabaseConfig{
		Host:           "db",
		Port:           5433,
		Name:           "shorts",
		User:           "u",
		Password:       "p",
		MaxConnections: 4,
	}

	got := dc.DBConfig()
	if got.Database != "shorts" || got.Port != 5433 || got.MaxConns != 4 {
		t.Errorf("DBConfig() = %+v", got)
	}
	if want := "host=db port=5433 user=u password=p dbname=shorts sslmode=disable"; got.ConnString() != want {
		t.Errorf("ConnString() = %s, want %s", got.ConnString(), want)
	}
}

func TestRabbitMQConfig_AMQPURL(t *testing.T) {
	rc := RabbitMQConfig{Host: "mq", Port: 5672, User: "guest", Password: "guest"}
	if got := rc.AMQPURL(); got != "amqp://guest:guest@mq:5672/" {
		t.Errorf("AMQPURL() = %s", got)
	}
}
