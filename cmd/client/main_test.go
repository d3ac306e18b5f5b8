package main

import (
	"os"
	"testing"

	"github.com/kelseyhightower/envconfig"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("CHAT_USERNAME", "alice")
		t.Setenv("CHAT_PASSWORD", "secret")

		var config Config
		req.NoError(envconfig.Process("CHAT", &config))

		req.Equal("http://localhost:8080", config.ServerURL)
		req.Equal("#2aa198", config.Color)
		req.Equal(1, config.History)
	})

	t.Run("credentials are required", func(t *testing.T) {
		req := require.New(t)
		for _, key := range []string{"CHAT_USERNAME", "CHAT_PASSWORD"} {
			t.Setenv(key, "")
			req.NoError(os.Unsetenv(key))
		}

		var config Config
		req.Error(envconfig.Process("CHAT", &config))
	})
}
