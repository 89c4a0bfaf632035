package debug

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/danpilch/hycucheck/pkg/plugin"
)

// DumpMetrics outputs the metric tuples of a result before rendering.
func DumpMetrics(w io.Writer, metrics []plugin.Metric) {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	fmt.Fprintln(w)
	fmt.Fprintln(w, title.Render("Raw Metrics Dump"))
	fmt.Fprintln(w, dim.Render(strings.Repeat("═", 75)))
	fmt.Fprintf(w, "  %s %s %s %s %s %s\n",
		header.Render("METRIC                  "),
		header.Render("VALUE       "),
		header.Render("WARN  "),
		header.Render("CRIT  "),
		header.Render("MIN "),
		header.Render("MAX "))
	fmt.Fprintln(w, "  "+dim.Render(strings.Repeat("─", 75)))

	for _, m := range metrics {
		fmt.Fprintf(w, "  %-25s %-13s %-7s %-7s %-5s %s\n",
			m.Name, m.FormatValue(),
			orDash(m.Warn), orDash(m.Crit), orDash(m.Min), orDash(m.Max))
	}
}

func orDash(b plugin.Bound) string {
	if !b.Set {
		return "-"
	}
	return b.String()
}
