package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Dreo     DreoConfig     `mapstructure:"dreo"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Push     PushConfig     `mapstructure:"push"`
	Recorder RecorderConfig `mapstructure:"recorder"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	Host           string   `mapstructure:"host"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DreoConfig holds the cloud account credentials. Region is an
// optional override for the region derived from the login token.
type DreoConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Region   string `mapstructure:"region"`
}

type SyncConfig struct {
	PollInterval string `mapstructure:"poll_interval"`
	PollTimeout  string `mapstructure:"poll_timeout"`
}

type PushConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	PingInterval   int  `mapstructure:"ping_interval"`
	ReconnectDelay int  `mapstructure:"reconnect_delay"`
}

// RecorderConfig controls the optional sqlite update-event log.
type RecorderConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PollIntervalDuration parses the configured poll interval.
func (s SyncConfig) PollIntervalDuration() time.Duration {
	d, err := time.ParseDuration(s.PollInterval)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// PollTimeoutDuration parses the configured per-poll timeout.
func (s SyncConfig) PollTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(s.PollTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// Load reads configuration from configs/config.yaml and the environment.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.BindEnv("dreo.username", "DREO_USERNAME")
	viper.BindEnv("dreo.password", "DREO_PASSWORD")
	viper.BindEnv("dreo.region", "DREO_REGION")
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("logging.level", "LOG_LEVEL")
	viper.BindEnv("recorder.path", "RECORDER_PATH")

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional; env vars and defaults may be enough
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 3200)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("server.allowed_origins", []string{"*"})
	viper.SetDefault("sync.poll_interval", "60s")
	viper.SetDefault("sync.poll_timeout", "10s")
	viper.SetDefault("push.enabled", true)
	viper.SetDefault("push.ping_interval", 15)
	viper.SetDefault("push.reconnect_delay", 5)
	viper.SetDefault("recorder.enabled", false)
	viper.SetDefault("recorder.path", "./data/events.db")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Dreo.Username == "" {
		return fmt.Errorf("dreo.username is required")
	}
	if c.Dreo.Password == "" {
		return fmt.Errorf("dreo.password is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}
