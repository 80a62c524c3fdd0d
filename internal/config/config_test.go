package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "https://util.devi.tools/api/v2/authorize", cfg.AuthorizationURL)
	assert.Equal(t, "https://util.devi.tools/api/v1/notify", cfg.NotificationURL)
	assert.Equal(t, 60*time.Second, cfg.RecentWindow)
	assert.Equal(t, 30*time.Second, cfg.RecentTTL)
	assert.Equal(t, QueueRabbitMQ, cfg.QueueDriver)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("QUEUE_DRIVER", "memory")
	t.Setenv("WORKERS", "8")
	t.Setenv("GATEWAY_TIMEOUT", "750ms")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, QueueMemory, cfg.QueueDriver)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 750*time.Millisecond, cfg.GatewayTimeout)
	assert.True(t, cfg.LogPretty)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string][2]string{
		"unknown driver": {"QUEUE_DRIVER", "kafka"},
		"no workers":     {"WORKERS", "0"},
		"no attempts":    {"QUEUE_MAX_ATTEMPTS", "0"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(env[0], env[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
