package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func TestLoadConfig_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("BADGER_FILEPATH", "/tmp/badger")
	t.Setenv("BLUGE_FILEPATH", "/tmp/bluge")
	t.Setenv("JWT_SECRET", testSecret)

	config, err := LoadConfig()

	req.NoError(err)
	req.Equal(8080, config.HTTPPort)
	req.Equal(9090, config.GRPCPort)
	req.Equal(24*time.Hour, config.AuthTokenDuration)
	req.Equal(20, config.MessageBurst)
	req.Nil(config.LimitMessages)
	req.Equal("*", config.CharReplacement)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "BADGER_FILEPATH=/data/badger\nBLUGE_FILEPATH=/data/bluge\nJWT_SECRET=" + testSecret + "\nLIMIT_MESSAGES=25\nHTTP_PORT=8181\n"
	req.NoError(os.WriteFile(path, []byte(content), 0o600))
	for _, key := range []string{"BADGER_FILEPATH", "BLUGE_FILEPATH", "JWT_SECRET", "LIMIT_MESSAGES", "HTTP_PORT"} {
		t.Setenv(key, "")
		req.NoError(os.Unsetenv(key))
	}
	// Already exported variables take precedence over the file
	t.Setenv("HTTP_PORT", "8282")

	config, err := LoadConfig(path)

	req.NoError(err)
	req.Equal("/data/badger", config.BadgerFilepath)
	req.Equal(8282, config.HTTPPort)
	req.NotNil(config.LimitMessages)
	req.Equal(25, *config.LimitMessages)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing required variable", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("BADGER_FILEPATH", "")
		req.NoError(os.Unsetenv("BADGER_FILEPATH"))
		t.Setenv("BLUGE_FILEPATH", "/tmp/bluge")
		t.Setenv("JWT_SECRET", testSecret)

		_, err := LoadConfig()

		req.Error(err)
	})

	t.Run("short secret", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("BADGER_FILEPATH", "/tmp/badger")
		t.Setenv("BLUGE_FILEPATH", "/tmp/bluge")
		t.Setenv("JWT_SECRET", "short")

		_, err := LoadConfig()

		req.ErrorContains(err, "JWT_SECRET")
	})

	t.Run("missing env file", func(t *testing.T) {
		req := require.New(t)

		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.env"))

		req.Error(err)
	})
}

func TestCharacterRune(t *testing.T) {
	req := require.New(t)

	r, err := CharacterRune("#")
	req.NoError(err)
	req.Equal('#', r)

	_, err = CharacterRune("ab")
	req.Error(err)
}
