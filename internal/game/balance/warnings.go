package balance

import "fmt"

// Thresholds are the tunable boundaries the warning rules compare against.
// Rates are fractions in [0, 1].
type Thresholds struct {
	// TooEasyWinRate flags scenarios won above this rate against an
	// equal-or-higher-level opposition.
	TooEasyWinRate float64
	// TooHardWinRate flags scenarios won below this rate against an
	// equal-or-lower-level opposition.
	TooHardWinRate float64
	// NoRiskMissRate flags player miss rates below this at high level:
	// combat without whiffs reads as no risk at all.
	NoRiskMissRate float64
	// HighLevelFloor is the player level at which the no-risk rule starts
	// applying.
	HighLevelFloor int
	// FrustratingMissRate flags player miss rates above this at any level.
	FrustratingMissRate float64
	// MinAvgTurns and MaxAvgTurns bound the pacing band.
	MinAvgTurns float64
	MaxAvgTurns float64
}

// DefaultThresholds returns the stock warning boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TooEasyWinRate:      0.95,
		TooHardWinRate:      0.05,
		NoRiskMissRate:      0.05,
		HighLevelFloor:      20,
		FrustratingMissRate: 0.50,
		MinAvgTurns:         2,
		MaxAvgTurns:         20,
	}
}

// Validate checks the thresholds for internal consistency.
func (t Thresholds) Validate() error {
	for _, r := range []struct {
		name  string
		value float64
	}{
		{"too_easy_win_rate", t.TooEasyWinRate},
		{"too_hard_win_rate", t.TooHardWinRate},
		{"no_risk_miss_rate", t.NoRiskMissRate},
		{"frustrating_miss_rate", t.FrustratingMissRate},
	} {
		if r.value < 0 || r.value > 1 {
			return fmt.Errorf("balance: threshold %s must be in [0, 1], got %g", r.name, r.value)
		}
	}
	if t.TooHardWinRate >= t.TooEasyWinRate {
		return fmt.Errorf("balance: too_hard_win_rate (%g) must be below too_easy_win_rate (%g)",
			t.TooHardWinRate, t.TooEasyWinRate)
	}
	if t.HighLevelFloor < 1 {
		return fmt.Errorf("balance: high_level_floor must be >= 1, got %d", t.HighLevelFloor)
	}
	if t.MinAvgTurns < 0 || t.MaxAvgTurns <= t.MinAvgTurns {
		return fmt.Errorf("balance: turn band [%g, %g] is not a valid range", t.MinAvgTurns, t.MaxAvgTurns)
	}
	return nil
}

// Warning is one triggered balance rule for one scenario.
type Warning struct {
	Scenario string
	Rule     string
	Message  string
}

// Evaluate runs every warning rule against a scenario result. Stall-only
// results carry no decided combats and trigger only the stall rule.
func (t Thresholds) Evaluate(r ScenarioResult) []Warning {
	var out []Warning
	warn := func(rule, format string, args ...any) {
		out = append(out, Warning{
			Scenario: r.Scenario.Name,
			Rule:     rule,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	decided := r.Wins + r.Losses
	if decided == 0 {
		if r.Stalls > 0 {
			warn("all-stalled", "all %d iterations hit the turn cap", r.Stalls)
		}
		return out
	}

	maxEnemy, minEnemy := r.Scenario.EnemyLevels[0], r.Scenario.EnemyLevels[0]
	for _, l := range r.Scenario.EnemyLevels[1:] {
		if l > maxEnemy {
			maxEnemy = l
		}
		if l < minEnemy {
			minEnemy = l
		}
	}

	if maxEnemy >= r.Scenario.PlayerLevel && r.WinRate > t.TooEasyWinRate {
		warn("too-easy", "win rate %.1f%% against equal-or-higher-level enemies (threshold %.0f%%)",
			r.WinRate*100, t.TooEasyWinRate*100)
	}
	if minEnemy <= r.Scenario.PlayerLevel && r.WinRate < t.TooHardWinRate {
		warn("too-hard", "win rate %.1f%% against equal-or-lower-level enemies (threshold %.0f%%)",
			r.WinRate*100, t.TooHardWinRate*100)
	}
	if r.Scenario.PlayerLevel >= t.HighLevelFloor && r.PlayerMissRate < t.NoRiskMissRate {
		warn("no-risk", "player miss rate %.1f%% at level %d leaves combat without risk (threshold %.0f%%)",
			r.PlayerMissRate*100, r.Scenario.PlayerLevel, t.NoRiskMissRate*100)
	}
	if r.PlayerMissRate > t.FrustratingMissRate {
		warn("frustrating", "player miss rate %.1f%% (threshold %.0f%%)",
			r.PlayerMissRate*100, t.FrustratingMissRate*100)
	}
	if r.AvgTurns < t.MinAvgTurns {
		warn("too-fast", "combats average %.1f turns (floor %.0f)", r.AvgTurns, t.MinAvgTurns)
	}
	if r.AvgTurns > t.MaxAvgTurns {
		warn("too-slow", "combats average %.1f turns (ceiling %.0f)", r.AvgTurns, t.MaxAvgTurns)
	}
	return out
}

// Summary is the cross-scenario report input: every result, every warning,
// and the level-progression markers read off the equal-level duel sweep.
type Summary struct {
	Results  []ScenarioResult
	Warnings []Warning
	// FirstDominantLevel is the lowest equal-level duel the player never
	// loses (no losses, no stalls); nil when none qualifies.
	FirstDominantLevel *int
	// FirstHopelessLevel is the lowest equal-level duel the player never
	// wins; nil when none qualifies.
	FirstHopelessLevel *int
}

// Summarize evaluates warnings for every result and derives the progression
// markers from the duel-shaped scenarios.
func Summarize(results []ScenarioResult, th Thresholds) Summary {
	sum := Summary{Results: results}
	for _, r := range results {
		sum.Warnings = append(sum.Warnings, th.Evaluate(r)...)

		if !r.Scenario.duel() || r.Iterations == 0 {
			continue
		}
		level := r.Scenario.PlayerLevel
		if r.Wins == r.Iterations &&
			(sum.FirstDominantLevel == nil || level < *sum.FirstDominantLevel) {
			l := level
			sum.FirstDominantLevel = &l
		}
		if r.Wins == 0 && r.Losses == r.Iterations &&
			(sum.FirstHopelessLevel == nil || level < *sum.FirstHopelessLevel) {
			l := level
			sum.FirstHopelessLevel = &l
		}
	}
	return sum
}
