package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danpilch/hycucheck/pkg/plugin"
)

// ParseStatusLine splits "LEVEL: text |perfdata" into its parts.
func ParseStatusLine(line string) (plugin.Severity, string, []plugin.Metric, error) {
	label, rest, ok := strings.Cut(line, ": ")
	if !ok {
		return plugin.Unknown, "", nil, fmt.Errorf("missing severity prefix in %q", line)
	}
	sev, err := plugin.ParseSeverity(label)
	if err != nil {
		return plugin.Unknown, "", nil, err
	}

	text, perf, hasPerf := strings.Cut(rest, " |")
	if !hasPerf {
		return sev, rest, nil, nil
	}
	metrics, err := ParsePerfData(perf)
	if err != nil {
		return sev, text, nil, err
	}
	return sev, text, metrics, nil
}

// ParsePerfData parses a space-separated list of
// name=value[unit];warn;crit;min;max tuples.
func ParsePerfData(s string) ([]plugin.Metric, error) {
	var metrics []plugin.Metric
	for _, field := range strings.Fields(s) {
		m, err := parseMetric(field)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, nil
}

func parseMetric(field string) (plugin.Metric, error) {
	name, rest, ok := strings.Cut(field, "=")
	if !ok || name == "" {
		return plugin.Metric{}, fmt.Errorf("malformed perfdata %q", field)
	}

	slots := strings.Split(rest, ";")
	m := plugin.Metric{Name: name}

	raw := slots[0]
	end := strings.IndexFunc(raw, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.' && r != '-'
	})
	num, unit := raw, ""
	if end >= 0 {
		num, unit = raw[:end], raw[end:]
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return plugin.Metric{}, fmt.Errorf("perfdata %q: bad value: %w", name, err)
	}
	m.Value, m.Unit = v, unit
	if dot := strings.IndexByte(num, '.'); dot >= 0 {
		m.Precision = len(num) - dot - 1
	}

	bounds := []*plugin.Bound{&m.Warn, &m.Crit, &m.Min, &m.Max}
	for i, slot := range slots[1:] {
		if i >= len(bounds) {
			break
		}
		if slot == "" {
			continue
		}
		bv, err := strconv.ParseFloat(slot, 64)
		if err != nil {
			return plugin.Metric{}, fmt.Errorf("perfdata %q: bad bound %q: %w", name, slot, err)
		}
		*bounds[i] = plugin.B(bv)
	}
	return m, nil
}
