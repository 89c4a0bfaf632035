package debug

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/danpilch/hycucheck/pkg/checks"
	"github.com/danpilch/hycucheck/pkg/plugin"
)

var (
	debugTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	debugHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	debugDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// CheckTiming records the duration of a check's Run call.
type CheckTiming struct {
	Name     string
	Duration time.Duration
	Severity plugin.Severity
	Failed   bool
}

// TimedCheck wraps a checks.Check to record run duration.
type TimedCheck struct {
	inner  checks.Check
	Timing CheckTiming
	ran    bool
}

// NewTimedCheck wraps a check with timing instrumentation.
func NewTimedCheck(c checks.Check) *TimedCheck {
	return &TimedCheck{
		inner: c,
	}
}

// Name returns the wrapped check's name.
func (t *TimedCheck) Name() string {
	return t.inner.Name()
}

func (t *TimedCheck) Category() checks.Category {
	return t.inner.Category()
}

func (t *TimedCheck) Requirements() checks.Requirements {
	return t.inner.Requirements()
}

// Validate forwards to the wrapped check when it validates its own arguments.
func (t *TimedCheck) Validate(req checks.Request) error {
	if v, ok := t.inner.(checks.Validator); ok {
		return v.Validate(req)
	}
	return nil
}

// Run runs the wrapped check and records duration.
func (t *TimedCheck) Run(ctx context.Context, env checks.Env, req checks.Request) (plugin.Result, error) {
	start := time.Now()
	result, err := t.inner.Run(ctx, env, req)
	t.Timing = CheckTiming{
		Name:     t.inner.Name(),
		Duration: time.Since(start),
		Severity: result.Severity,
		Failed:   err != nil,
	}
	t.ran = true
	return result, err
}

// Instrument returns a copy of the registry with every check wrapped in a
// TimedCheck, plus the wrappers in registration order.
func Instrument(reg *checks.Registry) (*checks.Registry, []*TimedCheck) {
	out := checks.NewRegistry()
	var timed []*TimedCheck
	for _, c := range reg.Checks() {
		tc := NewTimedCheck(c)
		out.Register(tc)
		timed = append(timed, tc)
	}
	return out, timed
}

// Timings collects the timings of the wrappers that actually ran.
func Timings(timed []*TimedCheck) []CheckTiming {
	var out []CheckTiming
	for _, t := range timed {
		if t.ran {
			out = append(out, t.Timing)
		}
	}
	return out
}

// TimingReport prints a styled timing summary for all timed checks.
func TimingReport(w io.Writer, timings []CheckTiming) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, debugTitle.Render("Check Timing Report"))
	fmt.Fprintln(w, debugDim.Render(strings.Repeat("═", 52)))
	fmt.Fprintf(w, "  %s  %s  %s\n",
		debugHeader.Render("CHECK              "),
		debugHeader.Render("DURATION    "),
		debugHeader.Render("RESULT  "))
	fmt.Fprintln(w, "  "+debugDim.Render(strings.Repeat("─", 52)))

	var total time.Duration
	for _, t := range timings {
		outcome := t.Severity.String()
		if t.Failed {
			outcome = "ERROR"
		}
		fmt.Fprintf(w, "  %-20s %-13v %s\n", t.Name, t.Duration.Round(time.Microsecond), outcome)
		total += t.Duration
	}
	fmt.Fprintln(w, "  "+debugDim.Render(strings.Repeat("─", 52)))
	fmt.Fprintf(w, "  %-20s %v\n",
		lipgloss.NewStyle().Bold(true).Render("TOTAL"), total.Round(time.Microsecond))
}
