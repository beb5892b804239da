// Package ai implements the enemy decision procedure: log-derived threat
// tracking, weighted target scoring, and a fixed priority ladder that always
// yields at least one legal action.
//
// The package is pure. Decide never mutates the state; the caller applies
// the returned actions through the engine one at a time, re-deriving state
// between calls, since the first action may kill the chosen target.
package ai

import "github.com/cory-johannsen/skirmish/internal/game/combat"

// ThreatTo scans the log for attacks that hit victimID and accumulates
// damage dealt by each attacker. Threat is recomputed from the immutable
// log on every decision — there is no persistent per-actor memory — so it
// stays consistent with any history truncation.
//
// Postcondition: every value is > 0; attackers that only missed do not
// appear.
func ThreatTo(log []combat.LogEntry, victimID string) map[string]int {
	threat := make(map[string]int)
	for _, entry := range log {
		if entry.Action != combat.ActionAttack || entry.TargetID != victimID {
			continue
		}
		if !entry.Result.Hit || entry.Result.Damage <= 0 {
			continue
		}
		threat[entry.ActorID] += entry.Result.Damage
	}
	return threat
}
