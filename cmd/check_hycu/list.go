package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/danpilch/hycucheck/pkg/checks"
	"github.com/spf13/cobra"
)

var (
	listTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	listCategory = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	listDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func describe(r checks.Requirements) string {
	var needs []string
	if r.Token {
		needs = append(needs, "-a")
	}
	if r.Target {
		needs = append(needs, "-n")
	}
	switch r.Thresholds {
	case checks.ThresholdsNormal:
		needs = append(needs, "-w/-c")
	case checks.ThresholdsInverted:
		needs = append(needs, "-w/-c (inverted)")
	}
	if r.Period {
		needs = append(needs, "-p")
	}
	if len(needs) == 0 {
		return "no arguments"
	}
	return strings.Join(needs, " ")
}

func newListCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available check types by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := checks.DefaultRegistry()
			byName := make(map[string]checks.Check)
			for _, c := range registry.Checks() {
				byName[c.Name()] = c
			}

			fmt.Fprintln(stdout, listTitle.Render("HYCU check types"))
			groups := registry.ByCategory()
			for _, cat := range checks.Categories {
				names, ok := groups[cat]
				if !ok {
					continue
				}
				fmt.Fprintln(stdout)
				fmt.Fprintln(stdout, listCategory.Render(strings.ToUpper(string(cat))))
				for _, name := range names {
					fmt.Fprintf(stdout, "  %-20s %s\n", name, listDim.Render(describe(byName[name].Requirements())))
				}
			}
			return nil
		},
	}
}
