package output

import (
	"fmt"
	"strings"

	"github.com/danpilch/hycucheck/pkg/plugin"
)

// Suggestion represents a diagnostic next-step.
type Suggestion struct {
	Tool    string
	Command string
	Reason  string
}

// DrillDown returns diagnostic suggestions for a check result with issues.
// Connection and argument problems are recognised from the result text;
// everything else is keyed by check type.
func DrillDown(host, checkType string, result plugin.Result) []Suggestion {
	if result.Severity == plugin.OK {
		return nil
	}
	verbose := fmt.Sprintf("check_hycu -l %s -a $HYCU_TOKEN -t %s -v", host, checkType)

	text := result.Text
	switch {
	case strings.HasPrefix(text, "Missing required argument"), strings.HasPrefix(text, "Invalid type"):
		return []Suggestion{{"check_hycu", "check_hycu list", "List check types and their arguments"}}
	case strings.Contains(text, "Authentication failed"), strings.Contains(text, "Access forbidden"):
		return []Suggestion{{"curl", fmt.Sprintf("curl -k -H \"Authorization: Bearer $HYCU_TOKEN\" https://%s:8443/rest/v1.0/administration/controller", host), "Verify the API token"}}
	case strings.Contains(text, "Connection error"), strings.Contains(text, "Request timeout"):
		return []Suggestion{{"check_hycu", fmt.Sprintf("check_hycu -l %s -t port -n 8443", host), "Verify the API port is reachable"}}
	case strings.Contains(text, "does not exist"):
		return []Suggestion{{"HYCU UI", "Inventory", "Confirm the exact object name; matching falls back to case-insensitive"}}
	}

	var suggestions []Suggestion
	switch checkType {
	case "jobs", "backup-validation":
		suggestions = append(suggestions, Suggestion{"check_hycu", verbose, "List the failed jobs in the window"})
	case "vm", "vmid":
		suggestions = append(suggestions,
			Suggestion{"check_hycu", fmt.Sprintf("check_hycu -l %s -a $HYCU_TOKEN -t jobs -v", host), "Look for failed backup jobs"},
		)
	case "unassigned", "policy-advanced", "target", "license":
		suggestions = append(suggestions, Suggestion{"check_hycu", verbose, "Show the detail breakdown"})
	case "shares", "buckets":
		suggestions = append(suggestions, Suggestion{"HYCU UI", "Shares", "Review compliance of the flagged shares"})
	case "port":
		suggestions = append(suggestions, Suggestion{"nc", fmt.Sprintf("nc -vz %s 8443", host), "Probe the port from this host"})
	}
	return suggestions
}
