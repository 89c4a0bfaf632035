package output

import (
	"testing"

	"github.com/danpilch/hycucheck/pkg/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthScore(t *testing.T) {
	card := HealthScore(nil, 4)
	assert.Equal(t, Scorecard{Label: "Unscored", Skipped: 4}, card)

	card = HealthScore([]Scored{
		{Severity: plugin.OK},
		{Severity: plugin.Critical},
		{Severity: plugin.Warning},
		{Severity: plugin.Unknown},
	}, 0)
	assert.Equal(t, 77, card.Score)
	assert.Equal(t, "Degraded", card.Label)
	assert.Equal(t, 4, card.Scored)

	card = HealthScore([]Scored{
		{Severity: plugin.Critical, Required: true},
		{Severity: plugin.Warning},
	}, 3)
	assert.Equal(t, 65, card.Score)
	assert.Equal(t, 3, card.Skipped)

	many := make([]Scored, 4)
	for i := range many {
		many[i] = Scored{Severity: plugin.Critical, Required: true}
	}
	assert.Equal(t, 0, HealthScore(many, 0).Score)
	assert.Equal(t, "Critical", HealthScore(many, 0).Label)

	assert.Equal(t, "Healthy", ScoreLabel(80))
	assert.Equal(t, "Degraded", ScoreLabel(50))
	assert.Equal(t, "Critical", ScoreLabel(49))
}

func TestDrillDown(t *testing.T) {
	assert.Nil(t, DrillDown("h", "jobs", plugin.OKf("fine")))

	s := DrillDown("h", "jobs", plugin.Warningf("HYCU jobs over 24h - 6 failed"))
	require.Len(t, s, 1)
	assert.Equal(t, "check_hycu -l h -a $HYCU_TOKEN -t jobs -v", s[0].Command)

	s = DrillDown("h", "version", plugin.Criticalf("API Error - Authentication failed. Check your API token."))
	require.Len(t, s, 1)
	assert.Equal(t, "curl", s[0].Tool)

	s = DrillDown("h", "vm", plugin.Criticalf("API Error - Connection error. Check host address and network."))
	require.Len(t, s, 1)
	assert.Equal(t, "check_hycu -l h -t port -n 8443", s[0].Command)

	s = DrillDown("h", "", plugin.Unknownf("Missing required argument: -t check type"))
	require.Len(t, s, 1)
	assert.Equal(t, "check_hycu list", s[0].Command)

	assert.Empty(t, DrillDown("h", "version", plugin.Warningf("Controller information not available")))
}
