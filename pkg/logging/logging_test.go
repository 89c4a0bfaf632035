package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(LogConfig{Writer: &buf})
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	logger.Debug("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	verbose, err := New(LogConfig{Verbose: true, Writer: &buf})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, verbose.GetLevel())
}

func TestNewDefaultsToStderr(t *testing.T) {
	logger, err := New(LogConfig{})
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, logger.Out)
	assert.NoError(t, Close(logger))
}

func TestNewRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "check_hycu.log")
	logger, err := New(LogConfig{Verbose: true, File: path})
	require.NoError(t, err)

	logger.WithField("check", "jobs").Debug("Running check")
	require.NoError(t, Close(logger))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Running check")
	assert.Contains(t, string(data), "check=jobs")
}
