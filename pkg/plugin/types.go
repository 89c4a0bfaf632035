// Package plugin provides the severity model, result types and threshold
// evaluation shared by every HYCU check.
package plugin

import (
	"fmt"
	"strconv"
	"strings"
)

// Severity represents the outcome of a check as understood by monitoring
// frameworks (Nagios, Icinga, Centreon).
type Severity int

const (
	OK Severity = iota
	Warning
	Critical
	Unknown
)

// String returns the upper-case label printed at the start of the status line.
func (s Severity) String() string {
	switch s {
	case OK:
		return "OK"
	case Warning:
		return "WARNING"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode returns the process exit code for the severity.
func (s Severity) ExitCode() int {
	switch s {
	case OK:
		return 0
	case Warning:
		return 1
	case Critical:
		return 2
	default:
		return 3
	}
}

// MetricValue returns the numeric status used for graphing.
// Higher is healthier: 2 for OK, 1 for WARNING, 0 for CRITICAL.
// UNKNOWN graphs as 1, between healthy and failed.
func (s Severity) MetricValue() int {
	switch s {
	case OK:
		return 2
	case Critical:
		return 0
	default:
		return 1
	}
}

// rank orders severities for escalation. CRITICAL outranks WARNING,
// which outranks UNKNOWN, which outranks OK.
func (s Severity) rank() int {
	switch s {
	case Critical:
		return 3
	case Warning:
		return 2
	case Unknown:
		return 1
	default:
		return 0
	}
}

// Worse returns whichever of s and other is more severe.
func (s Severity) Worse(other Severity) Severity {
	if other.rank() > s.rank() {
		return other
	}
	return s
}

// ParseSeverity converts a label such as "WARNING" back to a Severity.
func ParseSeverity(label string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "OK":
		return OK, nil
	case "WARNING":
		return Warning, nil
	case "CRITICAL":
		return Critical, nil
	case "UNKNOWN":
		return Unknown, nil
	}
	return Unknown, fmt.Errorf("unknown severity %q", label)
}

// MarshalText renders the severity label in JSON output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Bound is an optional threshold or range value in a metric tuple.
type Bound struct {
	Value float64
	Set   bool
}

// B returns a set bound.
func B(v float64) Bound {
	return Bound{Value: v, Set: true}
}

// String returns the bound as printed in perfdata, or "" when unset.
func (b Bound) String() string {
	if !b.Set {
		return ""
	}
	return strconv.FormatFloat(b.Value, 'f', -1, 64)
}

// Metric is one perfdata tuple: name=value[unit];warn;crit;min;max.
type Metric struct {
	Name      string
	Value     float64
	Unit      string
	Precision int
	Warn      Bound
	Crit      Bound
	Min       Bound
	Max       Bound
}

// Count returns an integer metric.
func Count(name string, v int) Metric {
	return Metric{Name: name, Value: float64(v)}
}

// Percent returns a percentage metric rendered with two decimals and
// bounded to 0..100.
func Percent(name string, v float64) Metric {
	return Metric{Name: name, Value: v, Unit: "%", Precision: 2, Min: B(0), Max: B(100)}
}

// Millis returns a duration metric expressed in milliseconds.
func Millis(name string, ms int64) Metric {
	return Metric{Name: name, Value: float64(ms), Unit: "ms", Min: B(0)}
}

// WithThresholds sets the warn and crit bounds.
func (m Metric) WithThresholds(t Thresholds) Metric {
	m.Warn = B(float64(t.Warning))
	m.Crit = B(float64(t.Critical))
	return m
}

// WithMin sets the lower bound.
func (m Metric) WithMin(v float64) Metric {
	m.Min = B(v)
	return m
}

// WithMax sets the upper bound.
func (m Metric) WithMax(v float64) Metric {
	m.Max = B(v)
	return m
}

// FormatValue renders the value with the metric's precision and unit.
func (m Metric) FormatValue() string {
	return strconv.FormatFloat(m.Value, 'f', m.Precision, 64) + m.Unit
}

// String renders the metric as a perfdata tuple. Warn and crit slots are
// always present; min and max are appended only when one of them is set.
func (m Metric) String() string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteByte('=')
	b.WriteString(m.FormatValue())
	b.WriteByte(';')
	b.WriteString(m.Warn.String())
	b.WriteByte(';')
	b.WriteString(m.Crit.String())
	b.WriteByte(';')
	if m.Min.Set || m.Max.Set {
		b.WriteString(m.Min.String())
		b.WriteByte(';')
		b.WriteString(m.Max.String())
	}
	return b.String()
}

// Result is the outcome of one check invocation.
type Result struct {
	Severity Severity `json:"severity"`
	Text     string   `json:"text"`
	Metrics  []Metric `json:"-"`
	// Notes are extra long-output lines printed under the status line.
	Notes []string `json:"notes,omitempty"`
	// Details is the enumeration printed only in verbose mode.
	Details []string `json:"details,omitempty"`
}

// Resultf returns a result of the given severity with a formatted text.
func Resultf(s Severity, format string, args ...any) Result {
	return Result{Severity: s, Text: fmt.Sprintf(format, args...)}
}

// OKf returns an OK result with a formatted text.
func OKf(format string, args ...any) Result { return Resultf(OK, format, args...) }

// Warningf returns a WARNING result with a formatted text.
func Warningf(format string, args ...any) Result { return Resultf(Warning, format, args...) }

// Criticalf returns a CRITICAL result with a formatted text.
func Criticalf(format string, args ...any) Result { return Resultf(Critical, format, args...) }

// Unknownf returns an UNKNOWN result with a formatted text.
func Unknownf(format string, args ...any) Result { return Resultf(Unknown, format, args...) }

// WithMetrics appends metrics to the result.
func (r Result) WithMetrics(metrics ...Metric) Result {
	r.Metrics = append(r.Metrics, metrics...)
	return r
}

// WithNotes appends long-output lines.
func (r Result) WithNotes(notes ...string) Result {
	r.Notes = append(r.Notes, notes...)
	return r
}

// WithDetails appends verbose detail lines.
func (r Result) WithDetails(lines ...string) Result {
	r.Details = append(r.Details, lines...)
	return r
}

// ExitCode returns the process exit code for the result.
func (r Result) ExitCode() int {
	return r.Severity.ExitCode()
}
