package main

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// controllerServer serves /administration/controller and returns the host
// and port to pass on the command line.
func controllerServer(t *testing.T) (string, string) {
	t.Helper()
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/rest/v1.0/administration/controller" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"entities":[{"controllerVmName":"hycu01","softwareVersion":"5.1.0","buildVersion":"5.1.0-123","externalHypervisorType":"NUTANIX"}],"metadata":{"grandTotalEntityCount":1,"totalEntityCount":1}}`))
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	return host, port
}

func TestVersionCheckEndToEnd(t *testing.T) {
	clearEnv(t)
	host, port := controllerServer(t)

	code, stdout, _ := run(t, "-l", host, "--port", port, "-a", "tok", "-t", "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "OK: HYCU Controller 'hycu01' - Version 5.1.0 (Build 5.1.0-123), Hypervisor: NUTANIX\n", stdout)
}

func TestAuthFailureIsCritical(t *testing.T) {
	clearEnv(t)
	host, port := controllerServer(t)

	code, stdout, _ := run(t, "-l", host, "--port", port, "-a", "wrong", "-t", "version")
	assert.Equal(t, 2, code)
	assert.True(t, strings.HasPrefix(stdout, "CRITICAL: API Error - "))
}

func TestVerboseWritesDiagnosticsToStderr(t *testing.T) {
	clearEnv(t)
	host, port := controllerServer(t)

	code, stdout, stderr := run(t, "-l", host, "--port", port, "-a", "tok", "-t", "version", "-v")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "OK: "))
	assert.Contains(t, stderr, "Check Timing Report")
	assert.Contains(t, stderr, "/rest/v1.0/administration/controller")
	assert.NotContains(t, stdout, "Timing")
}

func TestJSONOutput(t *testing.T) {
	clearEnv(t)
	host, port := controllerServer(t)

	code, stdout, _ := run(t, "-l", host, "--port", port, "-a", "tok", "-t", "version", "--output", "json")
	assert.Equal(t, 0, code)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "OK", out["severity"])
	assert.Equal(t, float64(0), out["exit_code"])
}

func TestMissingTypeIsUnknown(t *testing.T) {
	clearEnv(t)
	code, stdout, stderr := run(t, "-l", "hycu.local", "-a", "tok")
	assert.Equal(t, 3, code)
	assert.True(t, strings.HasPrefix(stdout, "UNKNOWN: Missing required argument: -t check type\n"))
	assert.Contains(t, stdout, "Usage:")
	assert.NotContains(t, stderr, "Usage:")
}

func TestInvalidThresholdsAreUnknown(t *testing.T) {
	clearEnv(t)
	code, stdout, _ := run(t, "-l", "hycu.local", "-a", "tok", "-t", "jobs", "-w", "10", "-c", "5")
	assert.Equal(t, 3, code)
	assert.True(t, strings.HasPrefix(stdout, "UNKNOWN: Critical threshold must be >= warning threshold\n"))
	assert.Contains(t, stdout, "Usage:")
}

func TestBadFlagIsUnknown(t *testing.T) {
	clearEnv(t)
	code, stdout, _ := run(t, "--bogus")
	assert.Equal(t, 3, code)
	assert.True(t, strings.HasPrefix(stdout, "UNKNOWN: unknown flag: --bogus"))
	assert.Contains(t, stdout, "Usage:")
}

func TestPortWithoutNumberIsUsageError(t *testing.T) {
	clearEnv(t)
	code, stdout, _ := run(t, "-l", "127.0.0.1", "-t", "port")
	assert.Equal(t, 3, code)
	assert.True(t, strings.HasPrefix(stdout, "UNKNOWN: Missing required argument: -n name (required for type 'port')\n"))
	assert.Contains(t, stdout, "Usage:")
}

func TestUsageOmittedFromJSON(t *testing.T) {
	clearEnv(t)
	code, stdout, _ := run(t, "-l", "hycu.local", "-a", "tok", "--output", "json")
	assert.Equal(t, 3, code)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "UNKNOWN", out["severity"])
}

func TestBadOutputFormat(t *testing.T) {
	clearEnv(t)
	code, stdout, _ := run(t, "-l", "h", "-t", "port", "--output", "xml")
	assert.Equal(t, 3, code)
	assert.True(t, strings.HasPrefix(stdout, "UNKNOWN: unknown output format"))
}

func TestListCommand(t *testing.T) {
	clearEnv(t)
	code, stdout, _ := run(t, "list")
	assert.Equal(t, 0, code)
	for _, want := range []string{"OBJECTS", "vmid", "policy-advanced", "backup-validation", "port"} {
		assert.Contains(t, stdout, want)
	}
}

func TestVersionCommand(t *testing.T) {
	clearEnv(t)
	code, stdout, _ := run(t, "version")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "check_hycu dev\n"))
}

func TestSelftestRequiresConnectionSettings(t *testing.T) {
	t.Setenv("HYCU_HOST", "")
	t.Setenv("HYCU_TOKEN", "")
	code, stdout, _ := run(t, "selftest")
	assert.Equal(t, 3, code)
	assert.Contains(t, stdout, "HYCU_HOST is not set")
}
