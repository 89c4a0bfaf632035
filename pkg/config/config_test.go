package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every HYCU_ variable for the test; viper ignores empty
// values.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HYCU_HOST", "HYCU_TOKEN", "HYCU_NAME", "HYCU_TYPE", "HYCU_TIMEOUT",
		"HYCU_WARNING", "HYCU_CRITICAL", "HYCU_PERIOD", "HYCU_VERBOSE",
		"HYCU_OUTPUT", "HYCU_PORT", "HYCU_LOG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func parsedFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("check_hycu", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(parsedFlags(t), "")
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Timeout)
	assert.Equal(t, 5, cfg.Warning)
	assert.Equal(t, 10, cfg.Critical)
	assert.Equal(t, 24, cfg.Period)
	assert.Equal(t, 8443, cfg.Port)
	assert.Equal(t, "plugin", cfg.Output)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.Host)
}

func TestLoadFlagsBeatEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("HYCU_HOST", "env-host")
	t.Setenv("HYCU_WARNING", "7")

	cfg, err := Load(parsedFlags(t, "-l", "flag-host", "-t", "jobs", "-c", "20", "-v"), "")
	require.NoError(t, err)

	assert.Equal(t, "flag-host", cfg.Host)
	assert.Equal(t, 7, cfg.Warning)
	assert.Equal(t, 20, cfg.Critical)
	assert.Equal(t, "jobs", cfg.Type)
	assert.True(t, cfg.Verbose)
}

func TestLoadEnvFileDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("HYCU_HOST", "env-host")
	os.Unsetenv("HYCU_TOKEN")
	os.Unsetenv("HYCU_LOG_FILE")
	t.Cleanup(func() {
		os.Unsetenv("HYCU_TOKEN")
		os.Unsetenv("HYCU_LOG_FILE")
	})

	path := filepath.Join(t.TempDir(), "hycu.env")
	require.NoError(t, os.WriteFile(path, []byte("HYCU_HOST=file-host\nHYCU_TOKEN=file-token\nHYCU_LOG_FILE=/tmp/hycu.log\n"), 0o600))

	cfg, err := Load(parsedFlags(t), path)
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Host)
	assert.Equal(t, "file-token", cfg.Token)
	assert.Equal(t, "/tmp/hycu.log", cfg.LogFile)
}

func TestLoadMissingExplicitEnvFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(parsedFlags(t), filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}

func TestLoadWithoutFlags(t *testing.T) {
	clearEnv(t)
	t.Setenv("HYCU_PORT", "9443")
	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, 9443, cfg.Port)
	assert.Equal(t, 10, cfg.Critical)
}

func TestConfigRequestAndClient(t *testing.T) {
	cfg := &Config{
		Host: "hycu.local", Token: "tok", Name: "vm01", Type: "vm",
		Timeout: 30, Warning: 2, Critical: 4, Period: 12, Port: 9443,
	}

	req := cfg.Request()
	assert.Equal(t, "vm01", req.Target)
	assert.Equal(t, 12, req.PeriodHours)
	assert.Equal(t, 30*time.Second, req.Timeout)

	cc := cfg.ClientConfig()
	assert.Equal(t, "hycu.local", cc.Host)
	assert.Equal(t, 9443, cc.Port)
	assert.Equal(t, 30*time.Second, cc.Timeout)
}
