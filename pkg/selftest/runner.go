package selftest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/danpilch/hycucheck/pkg/checks"
	"github.com/danpilch/hycucheck/pkg/output"
	"github.com/danpilch/hycucheck/pkg/plugin"
	"github.com/sirupsen/logrus"
)

const maxOutputWidth = 90

// Dispatcher runs one check request.
type Dispatcher interface {
	Dispatch(ctx context.Context, req checks.Request) plugin.Result
}

// Outcome is the result of one scenario.
type Outcome struct {
	Scenario Scenario
	Result   plugin.Result
	Skipped  bool
	Duration time.Duration
	// ParseErr is set when the status line does not round-trip through the
	// perfdata parser.
	ParseErr error
}

// Passed reports an executed scenario that returned OK with well-formed
// output.
func (o Outcome) Passed() bool {
	return !o.Skipped && o.ParseErr == nil && o.Result.Severity == plugin.OK
}

// Runner executes scenarios in order.
type Runner struct {
	dispatcher Dispatcher
	logger     *logrus.Logger
}

// NewRunner creates a runner.
func NewRunner(d Dispatcher, logger *logrus.Logger) *Runner {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	return &Runner{dispatcher: d, logger: logger}
}

// Run executes every scenario that is not skipped.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) Report {
	report := Report{Started: time.Now()}
	for _, sc := range scenarios {
		if sc.SkipReason != "" {
			r.logger.WithField("scenario", sc.Name).Debug("Skipping: " + sc.SkipReason)
			report.Outcomes = append(report.Outcomes, Outcome{Scenario: sc, Skipped: true})
			continue
		}

		start := time.Now()
		result := r.dispatcher.Dispatch(ctx, sc.Request)
		o := Outcome{Scenario: sc, Result: result, Duration: time.Since(start)}
		if _, _, _, err := output.ParseStatusLine(output.StatusLine(result)); err != nil {
			o.ParseErr = err
		}

		r.logger.WithFields(logrus.Fields{
			"scenario": sc.Name,
			"severity": result.Severity,
			"elapsed":  o.Duration,
		}).Debug("Scenario finished")
		report.Outcomes = append(report.Outcomes, o)
	}
	report.Finished = time.Now()
	return report
}

// Report collects the outcomes of a run.
type Report struct {
	Started  time.Time
	Finished time.Time
	Outcomes []Outcome
}

// Counts returns passed, failed and skipped totals.
func (r Report) Counts() (passed, failed, skipped int) {
	for _, o := range r.Outcomes {
		switch {
		case o.Skipped:
			skipped++
		case o.Passed():
			passed++
		default:
			failed++
		}
	}
	return passed, failed, skipped
}

// RequiredFailures lists required scenarios that did not pass.
func (r Report) RequiredFailures() []string {
	var names []string
	for _, o := range r.Outcomes {
		if o.Scenario.Required && !o.Skipped && !o.Passed() {
			names = append(names, o.Scenario.Name)
		}
	}
	return names
}

// ExitCode is 1 when any required scenario failed.
func (r Report) ExitCode() int {
	if len(r.RequiredFailures()) > 0 {
		return 1
	}
	return 0
}

func (r Report) executed() []plugin.Result {
	var results []plugin.Result
	for _, o := range r.Outcomes {
		if !o.Skipped {
			results = append(results, o.Result)
		}
	}
	return results
}

// Summary aggregates the executed results by severity.
func (r Report) Summary() plugin.Summary {
	return plugin.Summarize(r.executed())
}

// Scorecard scores the executed scenarios. Malformed output counts as
// unknown.
func (r Report) Scorecard() output.Scorecard {
	var scored []output.Scored
	skipped := 0
	for _, o := range r.Outcomes {
		if o.Skipped {
			skipped++
			continue
		}
		sev := o.Result.Severity
		if o.ParseErr != nil {
			sev = sev.Worse(plugin.Unknown)
		}
		scored = append(scored, output.Scored{Severity: sev, Required: o.Scenario.Required})
	}
	return output.HealthScore(scored, skipped)
}

var statusStyles = map[plugin.Severity]lipgloss.Style{
	plugin.OK:       lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	plugin.Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	plugin.Critical: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	plugin.Unknown:  lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
}

var skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}

// Render writes the report as a table followed by a summary.
func (r Report) Render(w io.Writer) {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, len(r.Outcomes))
	for i, o := range r.Outcomes {
		status := skippedStyle.Render("SKIPPED")
		text := o.Scenario.SkipReason
		elapsed := "-"
		if !o.Skipped {
			status = statusStyles[o.Result.Severity].Render(o.Result.Severity.String())
			text = output.StatusLine(o.Result)
			if o.ParseErr != nil {
				text = "malformed output: " + o.ParseErr.Error()
			}
			elapsed = o.Duration.Round(time.Millisecond).String()
		}
		required := ""
		if o.Scenario.Required {
			required = "yes"
		}
		rows[i] = []string{
			fmt.Sprintf("%d/%d", i+1, len(r.Outcomes)),
			strings.ToUpper(string(o.Scenario.Category)),
			o.Scenario.Name,
			required,
			status,
			elapsed,
			truncate(text, maxOutputWidth),
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("#", "CATEGORY", "CHECK", "REQUIRED", "STATUS", "TIME", "OUTPUT").
		Rows(rows...)

	fmt.Fprintln(w, t)
	fmt.Fprintln(w)
	r.renderSummary(w)
}

func (r Report) renderSummary(w io.Writer) {
	passed, failed, skipped := r.Counts()
	fmt.Fprintf(w, "Total Tests:   %d\n", len(r.Outcomes))
	fmt.Fprintln(w, statusStyles[plugin.OK].Render(fmt.Sprintf("Passed:        %d", passed)))
	fmt.Fprintln(w, statusStyles[plugin.Critical].Render(fmt.Sprintf("Failed:        %d", failed)))
	fmt.Fprintln(w, statusStyles[plugin.Warning].Render(fmt.Sprintf("Skipped:       %d", skipped)))

	if executed := passed + failed; executed > 0 {
		fmt.Fprintf(w, "\nSuccess Rate:  %.1f%%\n", float64(passed)/float64(executed)*100)
	}

	s := r.Summary()
	var parts []string
	if s.Critical > 0 {
		parts = append(parts, statusStyles[plugin.Critical].Render(fmt.Sprintf("%d critical", s.Critical)))
	}
	if s.Warnings > 0 {
		parts = append(parts, statusStyles[plugin.Warning].Render(fmt.Sprintf("%d warnings", s.Warnings)))
	}
	if s.Unknown > 0 {
		parts = append(parts, statusStyles[plugin.Unknown].Render(fmt.Sprintf("%d unknown", s.Unknown)))
	}
	if len(parts) > 0 {
		fmt.Fprintf(w, "Summary: %s\n", strings.Join(parts, ", "))
	}

	card := r.Scorecard()
	scoreStyle := statusStyles[plugin.OK]
	if card.Score < 80 {
		scoreStyle = statusStyles[plugin.Warning]
	}
	if card.Score < 50 {
		scoreStyle = statusStyles[plugin.Critical]
	}
	fmt.Fprintf(w, "Health Score: %s\n",
		scoreStyle.Render(fmt.Sprintf("%d/100 (%s)", card.Score, card.Label)))
	if card.Skipped > 0 {
		fmt.Fprintf(w, "  %d skipped checks not scored\n", card.Skipped)
	}

	r.renderNextSteps(w)

	if failures := r.RequiredFailures(); len(failures) > 0 {
		fmt.Fprintf(w, "\n%s Required checks failed: %s\n",
			statusStyles[plugin.Critical].Render("[FAIL]"), strings.Join(failures, ", "))
		return
	}
	if failed > 0 {
		fmt.Fprintf(w, "\n%s Required checks passed; %d optional checks did not.\n",
			statusStyles[plugin.Warning].Render("[PASS]"), failed)
		return
	}
	fmt.Fprintf(w, "\n%s All tests passed!\n", statusStyles[plugin.OK].Render("[SUCCESS]"))
}

func (r Report) renderNextSteps(w io.Writer) {
	printed := false
	for _, o := range r.Outcomes {
		if o.Skipped || o.Passed() {
			continue
		}
		suggestions := output.DrillDown(o.Scenario.Request.Host, o.Scenario.Request.Type, o.Result)
		if len(suggestions) == 0 {
			continue
		}
		if !printed {
			fmt.Fprintln(w)
			fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render("Next steps:"))
			printed = true
		}
		fmt.Fprintf(w, "  %s\n", o.Scenario.Name)
		for _, s := range suggestions {
			fmt.Fprintf(w, "    %s %s\n", s.Command, skippedStyle.Render("# "+s.Reason))
		}
	}
}
