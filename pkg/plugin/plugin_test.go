package plugin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityCodes(t *testing.T) {
	cases := []struct {
		sev    Severity
		label  string
		exit   int
		metric int
	}{
		{OK, "OK", 0, 2},
		{Warning, "WARNING", 1, 1},
		{Critical, "CRITICAL", 2, 0},
		{Unknown, "UNKNOWN", 3, 1},
	}
	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			assert.Equal(t, tc.label, tc.sev.String())
			assert.Equal(t, tc.exit, tc.sev.ExitCode())
			assert.Equal(t, tc.metric, tc.sev.MetricValue())

			parsed, err := ParseSeverity(tc.label)
			require.NoError(t, err)
			assert.Equal(t, tc.sev, parsed)
		})
	}

	_, err := ParseSeverity("bogus")
	assert.Error(t, err)
}

func TestSeverityWorse(t *testing.T) {
	assert.Equal(t, Critical, OK.Worse(Critical))
	assert.Equal(t, Critical, Critical.Worse(Warning))
	assert.Equal(t, Warning, Unknown.Worse(Warning))
	assert.Equal(t, Unknown, OK.Worse(Unknown))
}

func TestMetricString(t *testing.T) {
	normal := Thresholds{Warning: 5, Critical: 10}
	countdown := Thresholds{Warning: 30, Critical: 7, Inverted: true}

	cases := []struct {
		name   string
		metric Metric
		want   string
	}{
		{"bare", Count("backup_status", 2), "backup_status=2;;;"},
		{"min only", Count("total_objects", 5).WithMin(0), "total_objects=5;;;0;"},
		{"thresholds", Count("jobs_failed", 3).WithThresholds(normal), "jobs_failed=3;5;10;"},
		{"countdown", Count("days_left", 10).WithThresholds(countdown).WithMin(0), "days_left=10;30;7;0;"},
		{"max", Count("vms_protected", 40).WithMax(50), "vms_protected=40;;;;50"},
		{"percent", Percent("compliance_rate", 95), "compliance_rate=95.00%;;;0;100"},
		{"millis", Millis("response_time", 12), "response_time=12ms;;;0;"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.metric.String())
		})
	}
}

func TestResultBuilders(t *testing.T) {
	r := Criticalf("%s has no backups", "vm01").
		WithMetrics(Count("backup_status", 0)).
		WithNotes("note").
		WithDetails("a", "b")

	assert.Equal(t, Critical, r.Severity)
	assert.Equal(t, "vm01 has no backups", r.Text)
	assert.Len(t, r.Metrics, 1)
	assert.Equal(t, []string{"note"}, r.Notes)
	assert.Equal(t, []string{"a", "b"}, r.Details)
	assert.Equal(t, 2, r.ExitCode())
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, Thresholds{Warning: 5, Critical: 10}.Validate())
	assert.NoError(t, Thresholds{Warning: 5, Critical: 5}.Validate())
	assert.NoError(t, Thresholds{Warning: 30, Critical: 7, Inverted: true}.Validate())

	var verr *ValidationError
	err := Thresholds{Warning: 10, Critical: 5}.Validate()
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Critical threshold must be >= warning threshold", verr.Error())

	err = Thresholds{Warning: 7, Critical: 30, Inverted: true}.Validate()
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "For license checks, critical threshold must be <= warning threshold", verr.Error())

	err = Thresholds{Warning: -1, Critical: 10}.Validate()
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Thresholds must be positive integers", verr.Error())
}

func TestThresholdsClassify(t *testing.T) {
	normal := Thresholds{Warning: 5, Critical: 10}
	assert.Equal(t, OK, normal.Classify(0))
	assert.Equal(t, OK, normal.Classify(4))
	assert.Equal(t, Warning, normal.Classify(5))
	assert.Equal(t, Warning, normal.Classify(9))
	assert.Equal(t, Critical, normal.Classify(10))

	countdown := Thresholds{Warning: 30, Critical: 7, Inverted: true}
	assert.Equal(t, OK, countdown.Classify(31))
	assert.Equal(t, Warning, countdown.Classify(30))
	assert.Equal(t, Warning, countdown.Classify(8))
	assert.Equal(t, Critical, countdown.Classify(7))
	assert.Equal(t, Critical, countdown.Classify(0))
}

func TestStatusTable(t *testing.T) {
	table := StatusTable{"OK": OK, "WARNING": Warning, "FATAL": Critical}
	assert.Equal(t, OK, table.Lookup("OK"))
	assert.Equal(t, Unknown, table.Lookup("ok"))
	assert.Equal(t, Critical, table.Lookup("FATAL"))
	assert.Equal(t, Unknown, table.Lookup("ABORTED"))
	assert.Equal(t, Unknown, table.Lookup(""))
}

func TestExitCodeAggregate(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 3, ExitCode([]Result{OKf("a"), Unknownf("b")}))
	assert.Equal(t, 1, ExitCode([]Result{Unknownf("a"), Warningf("b")}))
	assert.Equal(t, 2, ExitCode([]Result{Warningf("a"), Criticalf("b")}))

	s := Summarize([]Result{OKf("a"), OKf("b"), Criticalf("c")})
	assert.Equal(t, Summary{Total: 3, OK: 2, Critical: 1}, s)
}
