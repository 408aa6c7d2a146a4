package main

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BADGER_FILEPATH", t.TempDir())
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("LOG_LEVEL", "info")
}

func Test_Config_Defaults_Parse(t *testing.T) {
	req := require.New(t)
	setRequiredEnv(t)

	// When only the required variables are set
	var config Config
	_, err := env.UnmarshalFromEnviron(&config)

	// Then every default applies, including the replacement character
	req.NoError(err)
	req.Equal(1048576, config.MaxPayloadBytes)
	req.Equal(60, config.RateLimitMax)
	req.Equal(time.Minute, config.RateLimitWindow)
	req.Equal(30*time.Second, config.HeartbeatInterval)
	req.Equal(time.Minute, config.LivenessTimeout)
	req.Equal(256, config.SendBufferSize)
	req.Equal('*', config.ModerationRune())
}

func Test_Config_Custom_Moderation_Character(t *testing.T) {
	req := require.New(t)
	setRequiredEnv(t)
	t.Setenv("MODERATION_CHARACTER_REPLACEMENT", "#")

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)

	req.NoError(err)
	req.Equal('#', config.ModerationRune())
}

func Test_Config_Empty_Moderation_Character_Falls_Back(t *testing.T) {
	req := require.New(t)

	config := Config{ModerationCharReplacement: ""}
	req.Equal('*', config.ModerationRune())
}
