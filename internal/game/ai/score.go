package ai

import (
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// Target-scoring weights. Factors combine additively; higher is more
// desirable. The ladder in Decide consumes only the ranking, so the
// absolute scale is free.
const (
	// threatPerDamage scales accumulated damage taken from a target,
	// capped at threatCap.
	threatPerDamage = 5.0
	threatCap       = 100.0
	// lowHPWeight rewards finishing wounded targets: (1 - hp%) * weight.
	lowHPWeight = 50.0
	// proximityPerStep rewards closeness: max(0, proximityHorizon - d) *
	// proximityPerStep.
	proximityHorizon = 10.0
	proximityPerStep = 8.0
	// literalPlayerBonus nudges scoring toward the player character.
	literalPlayerBonus = 5.0
	// inRangeBonus rewards targets attackable without moving.
	inRangeBonus = 30.0
	// clearLOSBonus applies to ranged actors with sight of the target.
	clearLOSBonus = 15.0
)

// scoreTarget rates target as a candidate for actor given the accumulated
// threat map.
func scoreTarget(actor, target *combat.Combatant, threat map[string]int, g *grid.Grid) float64 {
	score := threatPerDamage * float64(threat[target.ID])
	if score > threatCap {
		score = threatCap
	}

	score += (1 - target.HPPercent()) * lowHPWeight

	dist := float64(actor.Position.Chebyshev(target.Position))
	if d := proximityHorizon - dist; d > 0 {
		score += d * proximityPerStep
	}

	if target.IsPlayer {
		score += literalPlayerBonus
	}
	if combat.InRange(actor, target) {
		score += inRangeBonus
	}
	if actor.AttackRange > 1 && g.HasLineOfSight(actor.Position, target.Position) {
		score += clearLOSBonus
	}
	return score
}

// pickTarget returns the highest-scored living enemy of actor, or nil when
// none remain. Ties keep turn order, so the choice is deterministic.
func pickTarget(s *combat.State, actor *combat.Combatant, g *grid.Grid) *combat.Combatant {
	enemies := combat.LivingEnemiesOf(s, actor.ID)
	if len(enemies) == 0 {
		return nil
	}
	threat := ThreatTo(s.Log, actor.ID)
	best := enemies[0]
	bestScore := scoreTarget(actor, best, threat, g)
	for _, e := range enemies[1:] {
		if sc := scoreTarget(actor, e, threat, g); sc > bestScore {
			best, bestScore = e, sc
		}
	}
	return best
}
