package output

import "github.com/danpilch/hycucheck/pkg/plugin"

// Scored is one executed check as seen by the health score.
type Scored struct {
	Severity plugin.Severity
	// Required checks cost twice the usual penalty.
	Required bool
}

// Scorecard is the outcome of HealthScore.
type Scorecard struct {
	Score   int
	Label   string
	Scored  int
	Skipped int
}

var severityPenalty = map[plugin.Severity]int{
	plugin.Critical: 15,
	plugin.Warning:  5,
	plugin.Unknown:  3,
}

// HealthScore starts at 100 and subtracts a penalty per non-OK check,
// doubled for required ones. Skipped checks are counted but never scored.
// A run with nothing scored is labelled "Unscored".
func HealthScore(checks []Scored, skipped int) Scorecard {
	card := Scorecard{Scored: len(checks), Skipped: skipped}
	if len(checks) == 0 {
		card.Label = "Unscored"
		return card
	}

	score := 100
	for _, c := range checks {
		penalty := severityPenalty[c.Severity]
		if c.Required {
			penalty *= 2
		}
		score -= penalty
	}
	if score < 0 {
		score = 0
	}
	card.Score = score
	card.Label = ScoreLabel(score)
	return card
}

// ScoreLabel returns a human-readable label for a health score.
func ScoreLabel(score int) string {
	if score >= 80 {
		return "Healthy"
	}
	if score >= 50 {
		return "Degraded"
	}
	return "Critical"
}
