package balance

import "github.com/cory-johannsen/skirmish/internal/game/combat"

// ScenarioResult aggregates every iteration of one scenario.
type ScenarioResult struct {
	Scenario   Scenario
	Iterations int

	Wins   int
	Losses int
	Stalls int
	// WinRate is wins over decided combats; stalls are excluded so the
	// turn cap cannot masquerade as balance.
	WinRate float64

	// AvgTurns averages rounds over decided combats only.
	AvgTurns float64
	// AvgPlayerHPPercent averages the player side's remaining HP across
	// all iterations, losses contributing zeros.
	AvgPlayerHPPercent float64

	PlayerMissRate float64
	EnemyMissRate  float64

	// CrushingRate is crushing hits over all attack rolls, both sides.
	CrushingRate float64
	// AvgArmorMitigated is damage soaked by armor per combat, both sides.
	AvgArmorMitigated float64

	// AvgPlayerDamage and AvgEnemyDamage are damage dealt per combat,
	// attributed by side.
	AvgPlayerDamage float64
	AvgEnemyDamage  float64
}

// Aggregate folds per-combat statistics into a ScenarioResult.
//
// Precondition: stats is non-empty.
func Aggregate(sc Scenario, stats []CombatStats) ScenarioResult {
	r := ScenarioResult{Scenario: sc, Iterations: len(stats)}

	var turnSum, playerHits, playerMisses, enemyHits, enemyMisses int
	var crushing, mitigated, playerDamage, enemyDamage int
	var hpSum float64
	for _, cs := range stats {
		switch cs.Outcome {
		case OutcomeWin:
			r.Wins++
			turnSum += cs.Turns
		case OutcomeLoss:
			r.Losses++
			turnSum += cs.Turns
		default:
			r.Stalls++
		}
		hpSum += cs.FinalPlayerHPPercent
		playerHits += cs.PlayerHits
		playerMisses += cs.PlayerMisses
		enemyHits += cs.EnemyHits
		enemyMisses += cs.EnemyMisses
		crushing += cs.QualityCounts[combat.QualityCrushing]
		mitigated += cs.ArmorMitigated
		playerDamage += cs.PlayerDamageDealt
		enemyDamage += cs.EnemyDamageDealt
	}

	if decided := r.Wins + r.Losses; decided > 0 {
		r.WinRate = float64(r.Wins) / float64(decided)
		r.AvgTurns = float64(turnSum) / float64(decided)
	}
	r.AvgPlayerHPPercent = hpSum / float64(len(stats))
	if n := playerHits + playerMisses; n > 0 {
		r.PlayerMissRate = float64(playerMisses) / float64(n)
	}
	if n := playerHits + playerMisses + enemyHits + enemyMisses; n > 0 {
		r.CrushingRate = float64(crushing) / float64(n)
	}
	if n := enemyHits + enemyMisses; n > 0 {
		r.EnemyMissRate = float64(enemyMisses) / float64(n)
	}
	r.AvgArmorMitigated = float64(mitigated) / float64(len(stats))
	r.AvgPlayerDamage = float64(playerDamage) / float64(len(stats))
	r.AvgEnemyDamage = float64(enemyDamage) / float64(len(stats))
	return r
}
