package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.ServerURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, "cafeteira/comando", cfg.Server.CommandTopic)
	assert.Equal(t, "cafeteira/status", cfg.Server.StatusTopic)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CAFETEIRA_SERVER_URL", "http://10.0.0.5:8080")
	t.Setenv("CAFETEIRA_TIMEOUT", "5s")
	t.Setenv("CAFETEIRA_DEV", "true")
	t.Setenv("DIFY_API_KEY", "app-test")
	t.Setenv("MQTT_BROKER", "tcp://broker:1883")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:8080", cfg.ServerURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.Dev)
	assert.Equal(t, "app-test", cfg.Server.DifyAPIKey)
	assert.Equal(t, "tcp://broker:1883", cfg.Server.MQTTBroker)
	assert.NoError(t, cfg.Server.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{ServerURL: "http://localhost:5000", Timeout: time.Second}, false},
		{"no scheme", Config{ServerURL: "localhost:5000", Timeout: time.Second}, true},
		{"zero timeout", Config{ServerURL: "http://localhost:5000"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServerValidateRequiresKey(t *testing.T) {
	s := ServerConfig{Addr: ":5000", DifyAPIURL: "https://api.dify.ai/v1"}
	assert.Error(t, s.Validate())

	s.DifyAPIKey = "app-test"
	assert.NoError(t, s.Validate())
}
