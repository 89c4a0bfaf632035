package plugin

import "fmt"

// DefaultThresholds mirrors the command-line defaults (-w 5 -c 10).
func DefaultThresholds() Thresholds {
	return Thresholds{Warning: 5, Critical: 10}
}

// Thresholds holds a warning/critical pair.
//
// In normal mode a larger value is worse and Critical must be >= Warning.
// In inverted mode (countdowns such as days left on a license) a smaller
// value is worse and Critical must be <= Warning.
type Thresholds struct {
	Warning  int
	Critical int
	Inverted bool
}

// ValidationError reports an invalid threshold or argument value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate checks the ordering invariant for the threshold mode.
func (t Thresholds) Validate() error {
	if t.Warning < 0 || t.Critical < 0 {
		return &ValidationError{Reason: "Thresholds must be positive integers"}
	}
	if t.Inverted {
		if t.Critical > t.Warning {
			return &ValidationError{Reason: "For license checks, critical threshold must be <= warning threshold"}
		}
		return nil
	}
	if t.Critical < t.Warning {
		return &ValidationError{Reason: "Critical threshold must be >= warning threshold"}
	}
	return nil
}

// Classify compares value against the pair. Both boundaries are inclusive.
func (t Thresholds) Classify(value int) Severity {
	if t.Inverted {
		if value <= t.Critical {
			return Critical
		}
		if value <= t.Warning {
			return Warning
		}
		return OK
	}
	if value >= t.Critical {
		return Critical
	}
	if value >= t.Warning {
		return Warning
	}
	return OK
}

// StatusTable maps an enumerated API status string to a severity.
type StatusTable map[string]Severity

// Lookup returns the mapped severity, or Unknown for unmapped strings.
// Matching is case-sensitive.
func (t StatusTable) Lookup(status string) Severity {
	if s, ok := t[status]; ok {
		return s
	}
	return Unknown
}
