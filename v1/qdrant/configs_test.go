package qdrant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromURI(t *testing.T) {
	cfg, err := FromURI("http://localhost:6334")
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Endpoint)
	assert.Equal(t, 6334, cfg.Port)
	assert.False(t, cfg.UseTLS)

	cfg, err = FromURI("https://qdrant.example.com")
	require.NoError(t, err)
	assert.Equal(t, "qdrant.example.com", cfg.Endpoint)
	assert.Equal(t, defaultPort, cfg.Port)
	assert.True(t, cfg.UseTLS)

	_, err = FromURI("://bad")
	assert.Error(t, err)

	_, err = FromURI("localhost")
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Endpoint = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.RangeSearchPages = -1
	assert.Error(t, cfg.Validate())
}

func TestConfigBuilders(t *testing.T) {
	cfg := DefaultConfig().WithApiKey("secret").WithCompatibilityCheck(true)
	assert.Equal(t, "secret", cfg.ApiKey)
	assert.True(t, cfg.CheckCompatibility)
}
