package combat

import "github.com/cory-johannsen/skirmish/internal/game/grid"

// ValidAttackTargets returns every combatant the actor could legally attack
// right now: living, on the opposite side, within attack range, and — for
// ranged actors — with clear line of sight. Results follow turn order, so
// the query is deterministic and idempotent.
//
// Postcondition: never contains the actor, a same-side combatant, or a
// knocked-out combatant; empty (not nil-panic) when the actor is unknown
// or knocked out.
func ValidAttackTargets(s *State, actorID string, g *grid.Grid) []*Combatant {
	actor, ok := s.Combatants[actorID]
	if !ok || !actor.Alive() {
		return nil
	}
	var out []*Combatant
	for _, id := range s.Order {
		c := s.Combatants[id]
		if c == nil || c.ID == actorID || !c.Alive() || actor.SameSide(c) {
			continue
		}
		if !InRange(actor, c) {
			continue
		}
		if actor.AttackRange > 1 && !g.HasLineOfSight(actor.Position, c.Position) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// LivingEnemiesOf returns every living combatant on the opposite side of
// actorID, in turn order. Unlike ValidAttackTargets it ignores range and
// sight; the AI uses it to pick targets worth closing on.
func LivingEnemiesOf(s *State, actorID string) []*Combatant {
	actor, ok := s.Combatants[actorID]
	if !ok {
		return nil
	}
	var out []*Combatant
	for _, id := range s.Order {
		c := s.Combatants[id]
		if c == nil || c.ID == actorID || !c.Alive() || actor.SameSide(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// OccupiedBlocker returns a grid.Blocker marking every tile held by a
// living combatant other than excludeID. Pathfinding for a mover must
// exclude the mover's own tile.
func OccupiedBlocker(s *State, excludeID string) grid.Blocker {
	return occupiedExcept(s, excludeID)
}
