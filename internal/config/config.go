// Package config holds the settings shared by the chat widget and the
// companion server.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is read from the environment (and a .env file) and then
// overridden by command line flags.
type Config struct {
	Dev       bool          `env:"CAFETEIRA_DEV"`
	LogPath   string        `env:"CAFETEIRA_LOG_PATH"`
	ServerURL string        `env:"CAFETEIRA_SERVER_URL" envDefault:"http://localhost:5000"`
	Timeout   time.Duration `env:"CAFETEIRA_TIMEOUT" envDefault:"30s"`

	Server ServerConfig
}

// ServerConfig configures `cafeteira serve`.
type ServerConfig struct {
	Addr         string `env:"CAFETEIRA_ADDR" envDefault:":5000"`
	DifyAPIURL   string `env:"DIFY_API_URL" envDefault:"https://api.dify.ai/v1"`
	DifyAPIKey   string `env:"DIFY_API_KEY"`
	MQTTBroker   string `env:"MQTT_BROKER"`
	MQTTClientID string `env:"MQTT_CLIENT_ID" envDefault:"cafeteira-server"`
	CommandTopic string `env:"MQTT_TOPIC_COMMAND" envDefault:"cafeteira/comando"`
	StatusTopic  string `env:"MQTT_TOPIC_STATUS" envDefault:"cafeteira/status"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings needed by the chat widget.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server url %q: %w", c.ServerURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server url %q: scheme and host are required", c.ServerURL)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be > 0")
	}
	return nil
}

// Validate checks the settings needed by the companion server.
func (s *ServerConfig) Validate() error {
	if s.Addr == "" {
		return errors.New("listen address cannot be empty")
	}
	if s.DifyAPIURL == "" {
		return errors.New("DIFY_API_URL cannot be empty")
	}
	if s.DifyAPIKey == "" {
		return errors.New("DIFY_API_KEY is required")
	}
	if s.MQTTBroker != "" && (s.CommandTopic == "" || s.StatusTopic == "") {
		return errors.New("MQTT topics cannot be empty when a broker is set")
	}
	return nil
}
