// Package scoring turns cumulative player counters into per-90 rates and the
// composite form/value scores used by the fantasy leaderboard.
package scoring

import "github.com/albapepper/scoracle-site/internal/player"

// Linear weights for the base score. Goals count most, matching fantasy
// scoring convention.
const (
	GoalWeight   = 4.0
	AssistWeight = 3.0
	ShotWeight   = 0.5
)

// Result is the per-player figure set handed to the leaderboard renderer.
type Result struct {
	G90        float64 `json:"g90"`
	A90        float64 `json:"a90"`
	S90        float64 `json:"s90"`
	FormScore  float64 `json:"formScore"`
	ValueScore float64 `json:"valueScore"`
}

// Per90 converts a counting stat into a rate per 90 minutes. Zero or negative
// minutes yield 0. No rounding is applied.
func Per90(count, minutes float64) float64 {
	if minutes <= 0 {
		return 0
	}
	return count / (minutes / 90)
}

// Score computes the composite figures for one record given its league
// difficulty and team form multipliers.
//
// formScore scales the weighted per-90 output by both multipliers. valueScore
// is extrapolated full-match goal involvement adjusted for league only, since
// it should reflect the player's own output rather than the team's run.
func Score(rec player.Record, leagueDifficulty, teamForm float64) Result {
	g90 := Per90(rec.Goals, rec.Minutes)
	a90 := Per90(rec.Assists, rec.Minutes)
	s90 := Per90(rec.Shots, rec.Minutes)

	base := g90*GoalWeight + a90*AssistWeight + s90*ShotWeight
	return Result{
		G90:        g90,
		A90:        a90,
		S90:        s90,
		FormScore:  base * leagueDifficulty * teamForm,
		ValueScore: (g90 + a90) * 90 * leagueDifficulty,
	}
}
