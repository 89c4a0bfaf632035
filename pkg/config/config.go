// Package config loads check_hycu settings from command-line flags, the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/danpilch/hycucheck/pkg/checks"
	"github.com/danpilch/hycucheck/pkg/hycu"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment key (HYCU_HOST, HYCU_TOKEN, ...).
const EnvPrefix = "HYCU"

// DefaultEnvFile is loaded when present and no --env-file is given.
const DefaultEnvFile = ".env"

const (
	defaultTimeoutSeconds = 100
	defaultWarning        = 5
	defaultCritical       = 10
	defaultPeriodHours    = 24
)

// Config holds every setting for one invocation.
type Config struct {
	Host     string
	Token    string
	Name     string
	Type     string
	Timeout  int
	Warning  int
	Critical int
	Period   int
	Verbose  bool
	Output   string
	Port     int
	LogFile  string
}

// binding maps a viper key to its flag.
type binding struct {
	key  string
	flag string
}

var bindings = []binding{
	{"host", "host"},
	{"token", "token"},
	{"name", "name"},
	{"type", "type"},
	{"timeout", "timeout"},
	{"warning", "warning"},
	{"critical", "critical"},
	{"period", "period"},
	{"verbose", "verbose"},
	{"output", "output"},
	{"port", "port"},
	{"log.file", "log-file"},
}

// RegisterFlags defines the check flags on flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringP("token", "a", "", "HYCU API token (env HYCU_TOKEN)")
	flags.StringP("host", "l", "", "HYCU controller hostname or IP (env HYCU_HOST)")
	flags.StringP("name", "n", "", "Object name (VM, target, policy, sub-mode or port)")
	flags.StringP("type", "t", "", "Check type (see 'check_hycu list')")
	flags.IntP("timeout", "T", defaultTimeoutSeconds, "Request timeout in seconds")
	flags.BoolP("verbose", "v", false, "Verbose output and debug diagnostics on stderr")
	flags.IntP("warning", "w", defaultWarning, "Warning threshold")
	flags.IntP("critical", "c", defaultCritical, "Critical threshold")
	flags.IntP("period", "p", defaultPeriodHours, "Look-back period in hours for jobs and backup-validation")
	flags.String("output", "plugin", "Output format: plugin or json")
	flags.Int("port", hycu.DefaultPort, "HYCU API port")
	flags.String("env-file", "", "Load environment from this file (default .env when present)")
	flags.String("log-file", "", "Write diagnostics to a rotating log file")
}

// LoadEnvFile loads KEY=VALUE pairs into the process environment without
// overriding variables that are already set. An empty path loads .env when
// it exists; an explicit path must exist.
func LoadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load resolves the configuration. Precedence: explicit flag, then
// environment, then the env file, then defaults.
func Load(flags *pflag.FlagSet, envFile string) (*Config, error) {
	if err := LoadEnvFile(envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("timeout", defaultTimeoutSeconds)
	v.SetDefault("warning", defaultWarning)
	v.SetDefault("critical", defaultCritical)
	v.SetDefault("period", defaultPeriodHours)
	v.SetDefault("output", "plugin")
	v.SetDefault("port", hycu.DefaultPort)

	if flags != nil {
		for _, b := range bindings {
			if f := flags.Lookup(b.flag); f != nil {
				if err := v.BindPFlag(b.key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", b.flag, err)
				}
			}
		}
	}

	return &Config{
		Host:     v.GetString("host"),
		Token:    v.GetString("token"),
		Name:     v.GetString("name"),
		Type:     v.GetString("type"),
		Timeout:  v.GetInt("timeout"),
		Warning:  v.GetInt("warning"),
		Critical: v.GetInt("critical"),
		Period:   v.GetInt("period"),
		Verbose:  v.GetBool("verbose"),
		Output:   v.GetString("output"),
		Port:     v.GetInt("port"),
		LogFile:  v.GetString("log.file"),
	}, nil
}

// TimeoutDuration returns the request timeout.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Request builds the dispatcher request.
func (c *Config) Request() checks.Request {
	return checks.Request{
		Host:        c.Host,
		Token:       c.Token,
		Target:      c.Name,
		Type:        c.Type,
		Warning:     c.Warning,
		Critical:    c.Critical,
		PeriodHours: c.Period,
		Timeout:     c.TimeoutDuration(),
		Verbose:     c.Verbose,
	}
}

// ClientConfig builds the API client settings.
func (c *Config) ClientConfig() hycu.ClientConfig {
	return hycu.ClientConfig{
		Host:    c.Host,
		Token:   c.Token,
		Port:    c.Port,
		Timeout: c.TimeoutDuration(),
	}
}
