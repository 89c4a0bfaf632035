// Package output provides formatters for displaying check results.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/danpilch/hycucheck/pkg/plugin"
)

// Format represents the output format type.
type Format string

const (
	// FormatPlugin is the monitoring-plugin status line.
	FormatPlugin Format = "plugin"
	FormatJSON   Format = "json"
)

// ParseFormat validates a --output value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatPlugin:
		return FormatPlugin, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (use plugin or json)", s)
}

// Formatter handles output formatting.
type Formatter struct {
	format  Format
	writer  io.Writer
	verbose bool
}

// NewFormatter creates a new formatter.
func NewFormatter(format Format, writer io.Writer) *Formatter {
	return &Formatter{
		format: format,
		writer: writer,
	}
}

// SetVerbose enables the detail block under the status line.
func (f *Formatter) SetVerbose(verbose bool) {
	f.verbose = verbose
}

// Render outputs the result in the configured format.
func (f *Formatter) Render(result plugin.Result) error {
	switch f.format {
	case FormatJSON:
		return f.renderJSON(result)
	default:
		return f.renderPlugin(result)
	}
}

// PerfData joins the metrics of a result into a perfdata trailer.
func PerfData(metrics []plugin.Metric) string {
	parts := make([]string, len(metrics))
	for i, m := range metrics {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

// StatusLine renders "LEVEL: text |perfdata".
func StatusLine(result plugin.Result) string {
	line := result.Severity.String() + ": " + result.Text
	if len(result.Metrics) > 0 {
		line += " |" + PerfData(result.Metrics)
	}
	return line
}

// renderPlugin writes the status line, long-output notes and, in verbose
// mode, the detail block after a blank line.
func (f *Formatter) renderPlugin(result plugin.Result) error {
	var b strings.Builder
	b.WriteString(StatusLine(result))
	b.WriteByte('\n')
	for _, note := range result.Notes {
		b.WriteString(note)
		b.WriteByte('\n')
	}
	if f.verbose && len(result.Details) > 0 {
		b.WriteByte('\n')
		for _, line := range result.Details {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(f.writer, b.String())
	return err
}

type jsonMetric struct {
	Name  string   `json:"name"`
	Value float64  `json:"value"`
	Unit  string   `json:"unit,omitempty"`
	Warn  *float64 `json:"warn,omitempty"`
	Crit  *float64 `json:"crit,omitempty"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
}

func boundPtr(b plugin.Bound) *float64 {
	if !b.Set {
		return nil
	}
	v := b.Value
	return &v
}

// renderJSON outputs the result as JSON.
func (f *Formatter) renderJSON(result plugin.Result) error {
	metrics := make([]jsonMetric, len(result.Metrics))
	for i, m := range result.Metrics {
		metrics[i] = jsonMetric{
			Name:  m.Name,
			Value: m.Value,
			Unit:  m.Unit,
			Warn:  boundPtr(m.Warn),
			Crit:  boundPtr(m.Crit),
			Min:   boundPtr(m.Min),
			Max:   boundPtr(m.Max),
		}
	}

	out := struct {
		Severity plugin.Severity `json:"severity"`
		ExitCode int             `json:"exit_code"`
		Text     string          `json:"text"`
		PerfData string          `json:"perfdata,omitempty"`
		Metrics  []jsonMetric    `json:"metrics"`
		Notes    []string        `json:"notes,omitempty"`
		Details  []string        `json:"details,omitempty"`
	}{
		Severity: result.Severity,
		ExitCode: result.ExitCode(),
		Text:     result.Text,
		PerfData: PerfData(result.Metrics),
		Metrics:  metrics,
		Notes:    result.Notes,
		Details:  result.Details,
	}

	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
