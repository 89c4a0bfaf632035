package selftest

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/danpilch/hycucheck/pkg/checks"
	"github.com/danpilch/hycucheck/pkg/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDispatcher struct {
	results map[string]plugin.Result
	seen    []checks.Request
}

func (d *stubDispatcher) Dispatch(_ context.Context, req checks.Request) plugin.Result {
	d.seen = append(d.seen, req)
	if r, ok := d.results[req.Type]; ok {
		return r
	}
	return plugin.OKf("%s fine", req.Type).WithMetrics(plugin.Count(req.Type, 1))
}

func clearSettingsEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HYCU_HOST", "HYCU_TOKEN", "TIMEOUT", "VERBOSE",
		"TEST_VM_NAME", "TEST_TARGET_NAME", "TEST_POLICY_NAME",
		"JOBS_WARNING", "JOBS_CRITICAL", "JOBS_PERIOD",
		"LICENSE_WARNING", "LICENSE_CRITICAL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadSettingsDefaults(t *testing.T) {
	clearSettingsEnv(t)
	t.Setenv("HYCU_HOST", "hycu.local")
	t.Setenv("HYCU_TOKEN", "tok")
	t.Setenv("JOBS_WARNING", "3")

	s := LoadSettings()
	require.NoError(t, s.Validate())
	assert.Equal(t, 100*time.Second, s.Timeout)
	assert.Equal(t, 3, s.threshold("jobs_warning"))
	assert.Equal(t, 30, s.threshold("license_warning"))
	assert.Equal(t, 7, s.threshold("license_critical"))
}

func TestSettingsValidate(t *testing.T) {
	err := Settings{}.Validate()
	require.Error(t, err)
	assert.Equal(t, "HYCU_HOST is not set; HYCU_TOKEN is not set", err.Error())
}

func TestScenarios(t *testing.T) {
	clearSettingsEnv(t)
	s := LoadSettings()
	s.Host, s.Token, s.VMName = "hycu.local", "tok", "vm01"

	scenarios := Scenarios(s)
	require.Len(t, scenarios, 12)

	byType := map[string]Scenario{}
	for _, sc := range scenarios {
		byType[sc.Request.Type] = sc
	}

	assert.Equal(t, "8443", byType["port"].Request.Target)
	assert.True(t, byType["port"].Required)
	assert.Equal(t, 30, byType["license"].Request.Warning)
	assert.Equal(t, 7, byType["license"].Request.Critical)
	assert.Equal(t, 24, byType["backup-validation"].Request.PeriodHours)
	assert.Equal(t, 2, byType["buckets"].Request.Warning)
	assert.Equal(t, "protected", byType["manager"].Request.Target)

	assert.Empty(t, byType["vm"].SkipReason)
	assert.Equal(t, "TEST_TARGET_NAME not set", byType["target"].SkipReason)
	assert.Equal(t, "TEST_POLICY_NAME not set", byType["policy-advanced"].SkipReason)

	var required []string
	for _, sc := range scenarios {
		if sc.Required {
			required = append(required, sc.Request.Type)
		}
	}
	assert.Equal(t, []string{"port", "version", "license", "jobs", "unassigned"}, required)
}

func TestRunnerReport(t *testing.T) {
	clearSettingsEnv(t)
	s := LoadSettings()
	s.Host, s.Token = "hycu.local", "tok"

	d := &stubDispatcher{results: map[string]plugin.Result{
		"shares":  plugin.Warningf("Shares (NFS/SMB): 4 non-compliant"),
		"license": plugin.Criticalf("License expires in 3 days"),
	}}
	report := NewRunner(d, nil).Run(context.Background(), Scenarios(s))

	assert.Len(t, d.seen, 9)
	passed, failed, skipped := report.Counts()
	assert.Equal(t, 7, passed)
	assert.Equal(t, 2, failed)
	assert.Equal(t, 3, skipped)

	assert.Equal(t, []string{"License Status"}, report.RequiredFailures())
	assert.Equal(t, 1, report.ExitCode())

	card := report.Scorecard()
	assert.Equal(t, 65, card.Score, "required critical costs double")
	assert.Equal(t, 9, card.Scored)
	assert.Equal(t, 3, card.Skipped)

	summary := report.Summary()
	assert.Equal(t, 9, summary.Total)
	assert.Equal(t, 1, summary.Critical)
	assert.Equal(t, 1, summary.Warnings)

	var buf bytes.Buffer
	report.Render(&buf)
	out := buf.String()
	assert.Contains(t, out, "License Status")
	assert.Contains(t, out, "SKIPPED")
	assert.Contains(t, out, "Required checks failed: License Status")
	assert.Contains(t, out, "Health Score: ")
	assert.Contains(t, out, "65/100 (Degraded)")
	assert.Contains(t, out, "3 skipped checks not scored")
	assert.Contains(t, out, "Next steps:")
	assert.Contains(t, out, "check_hycu -l hycu.local -a $HYCU_TOKEN -t license -v")
}

func TestRunnerOptionalFailureOnly(t *testing.T) {
	d := &stubDispatcher{results: map[string]plugin.Result{
		"buckets": plugin.Unknownf("API Error - Resource not found."),
	}}
	s := Settings{Host: "h", Token: "t"}
	report := NewRunner(d, nil).Run(context.Background(), Scenarios(s))
	assert.Equal(t, 0, report.ExitCode())

	var buf bytes.Buffer
	report.Render(&buf)
	assert.Contains(t, buf.String(), "1 optional checks did not")
}
