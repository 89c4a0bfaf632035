package plugin

// Summary counts results by severity.
type Summary struct {
	Total    int `json:"total"`
	OK       int `json:"ok"`
	Warnings int `json:"warnings"`
	Critical int `json:"critical"`
	Unknown  int `json:"unknown"`
}

// Summarize calculates summary statistics from a set of results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Severity {
		case OK:
			s.OK++
		case Warning:
			s.Warnings++
		case Critical:
			s.Critical++
		default:
			s.Unknown++
		}
	}
	return s
}

// ExitCode returns the exit code for a batch of results: the worst
// severity wins, and UNKNOWN only when nothing is WARNING or CRITICAL.
func ExitCode(results []Result) int {
	summary := Summarize(results)
	if summary.Critical > 0 {
		return Critical.ExitCode()
	}
	if summary.Warnings > 0 {
		return Warning.ExitCode()
	}
	if summary.Unknown > 0 {
		return Unknown.ExitCode()
	}
	return OK.ExitCode()
}
