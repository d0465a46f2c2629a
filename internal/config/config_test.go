package config_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Alan-Jowett/shardedudpecho/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequiredPort(t *testing.T) {
	var out bytes.Buffer
	cfg, err := config.Parse([]string{"--port", "9000"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 0, cfg.Cores)
	assert.Equal(t, 4194304, cfg.RecvBuf)
}

func TestParseShorthand(t *testing.T) {
	var out bytes.Buffer
	cfg, err := config.Parse([]string{"-p", "9000", "-c", "4", "-b", "1048576"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 4, cfg.Cores)
	assert.Equal(t, 1048576, cfg.RecvBuf)
}

func TestParseMissingPort(t *testing.T) {
	var out bytes.Buffer
	_, err := config.Parse([]string{}, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInvalidArgument))
}

func TestParsePortOutOfRange(t *testing.T) {
	var out bytes.Buffer
	_, err := config.Parse([]string{"--port", "70000"}, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInvalidArgument))
}

func TestParseHelp(t *testing.T) {
	var out bytes.Buffer
	_, err := config.Parse([]string{"--help"}, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrHelp))
	assert.NotEmpty(t, out.String())
}

func TestResolvedWorkerCount(t *testing.T) {
	cfg := config.Config{Port: 9000, Cores: 0}
	assert.Greater(t, cfg.ResolvedWorkerCount(), 0)

	cfg.Cores = 1 << 30
	assert.Equal(t, cfg.ResolvedWorkerCount(), config.Config{Port: 9000, Cores: 0}.ResolvedWorkerCount())
}
