package ai

import (
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// Branch names the rung of the priority ladder a plan came from. It is part
// of the decision trace: tests and balance tooling assert on it.
type Branch string

const (
	BranchAttack        Branch = "attack"
	BranchKite          Branch = "kite"
	BranchAdvanceAttack Branch = "advance_attack"
	BranchAdvance       Branch = "advance"
	BranchDefend        Branch = "defend"
	BranchEndTurn       Branch = "end_turn"
)

// Plan is an ordered action list plus the branch that produced it.
type Plan struct {
	Actions []combat.Action
	Branch  Branch
}

// pathOpts builds the standard AI pathfinding options: 8-way movement,
// budgeted, blocked by living combatants other than the mover.
func pathOpts(s *combat.State, actorID string, budget int) grid.PathOptions {
	return grid.PathOptions{
		MaxCost:        budget,
		AllowDiagonals: true,
		Occupied:       combat.OccupiedBlocker(s, actorID),
	}
}

// canAttackFrom reports whether actor standing at pos could attack target:
// within range, and with line of sight when ranged. Melee never needs LOS.
func canAttackFrom(pos grid.Position, actor, target *combat.Combatant, g *grid.Grid) bool {
	if pos.Chebyshev(target.Position) > actor.AttackRange {
		return false
	}
	if actor.AttackRange > 1 && !g.HasLineOfSight(pos, target.Position) {
		return false
	}
	return true
}

// nearestEnemyDistance returns the Chebyshev distance from pos to the
// closest living enemy of actor.
func nearestEnemyDistance(s *combat.State, actor *combat.Combatant, pos grid.Position) int {
	best := -1
	for _, e := range combat.LivingEnemiesOf(s, actor.ID) {
		d := pos.Chebyshev(e.Position)
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

// Decide produces the ordered action plan for one AI turn. It never mutates
// state; the caller applies actions through the engine one at a time and
// re-plans from the fresh state, tolerating rejections from stale snapshots.
//
// The ladder, in order: kite (ranged actor in melee contact with a strictly
// better tile reachable), attack the top-scored target in place, move to
// bring the target in range then attack, close distance, defend, end turn.
// Earlier rungs pre-empt later ones — the order encodes risk posture, not
// score. Kiting sits above the in-place attack because a ranged actor that
// trades blows at range 1 gives up its whole advantage.
//
// Postcondition: always returns >= 1 action; never an attack on a
// knocked-out or same-side combatant.
func Decide(s *combat.State, actorID string, g *grid.Grid, tuning combat.Tuning) Plan {
	endTurn := Plan{Actions: []combat.Action{combat.EndTurn(actorID)}, Branch: BranchEndTurn}

	actor, ok := s.Combatants[actorID]
	if !ok || !actor.Alive() || s.Phase != combat.PhaseActive {
		return endTurn
	}
	target := pickTarget(s, actor, g)
	if target == nil {
		return endTurn
	}

	if plan, ok := kitePlan(s, actor, target, g, tuning); ok {
		return plan
	}
	if actor.APRemaining >= tuning.AttackCost && canAttackFrom(actor.Position, actor, target, g) {
		return Plan{
			Actions: []combat.Action{combat.Attack(actorID, target.ID)},
			Branch:  BranchAttack,
		}
	}
	if plan, ok := advanceAttackPlan(s, actor, target, g, tuning); ok {
		return plan
	}
	if plan, ok := advancePlan(s, actor, target, g); ok {
		return plan
	}
	if !actor.IsDefending && actor.APRemaining >= tuning.DefendCost {
		return Plan{
			Actions: []combat.Action{combat.Defend(actorID)},
			Branch:  BranchDefend,
		}
	}
	return endTurn
}

// DecideActions is the plain entry point for callers that do not care about
// the decision trace.
func DecideActions(s *combat.State, actorID string, g *grid.Grid, tuning combat.Tuning) []combat.Action {
	return Decide(s, actorID, g, tuning).Actions
}

// kitePlan retreats a ranged actor out of melee contact. It triggers only
// when an enemy stands adjacent and a strictly farther tile is reachable
// within a conservative budget that reserves AP for a follow-up attack.
// Attack-capable tiles are preferred over merely safer ones, and maximum
// distance is preferred over minimum movement cost.
func kitePlan(s *combat.State, actor, target *combat.Combatant, g *grid.Grid, tuning combat.Tuning) (Plan, bool) {
	if actor.AttackRange <= 1 {
		return Plan{}, false
	}
	if nearestEnemyDistance(s, actor, actor.Position) != 1 {
		return Plan{}, false
	}
	budget := actor.APRemaining - tuning.AttackCost
	if budget > actor.MovementRange {
		budget = actor.MovementRange
	}
	if budget < 1 {
		return Plan{}, false
	}

	opts := pathOpts(s, actor.ID, budget)
	var (
		bestTile   grid.Position
		bestDist   int
		bestCost   int
		bestCanHit bool
		found      bool
	)
	for _, rt := range g.ReachableTiles(actor.Position, budget, opts) {
		dist := nearestEnemyDistance(s, actor, rt.Position)
		if dist <= 1 {
			continue // not strictly farther than melee contact
		}
		canHit := canAttackFrom(rt.Position, actor, target, g)
		better := false
		switch {
		case !found:
			better = true
		case canHit != bestCanHit:
			better = canHit
		case dist != bestDist:
			better = dist > bestDist
		case rt.Cost != bestCost:
			better = rt.Cost < bestCost
		}
		if better {
			bestTile, bestDist, bestCost, bestCanHit, found = rt.Position, dist, rt.Cost, canHit, true
		}
	}
	if !found {
		return Plan{}, false
	}

	path := g.FindPath(actor.Position, bestTile, opts)
	if !path.Reachable {
		return Plan{}, false
	}
	actions := []combat.Action{combat.Move(actor.ID, path.Tiles)}
	if bestCanHit && actor.APRemaining-path.Cost >= tuning.AttackCost {
		actions = append(actions, combat.Attack(actor.ID, target.ID))
	}
	return Plan{Actions: actions, Branch: BranchKite}, true
}

// advanceAttackPlan moves the actor onto a tile from which the target is
// attackable this turn, then attacks. Melee candidates are the tiles
// adjacent to the target; ranged candidates are tiles within range with
// LOS, preferring maximum standoff distance over minimum movement cost.
func advanceAttackPlan(s *combat.State, actor, target *combat.Combatant, g *grid.Grid, tuning combat.Tuning) (Plan, bool) {
	budget := actor.APRemaining - tuning.AttackCost
	if budget > actor.MovementRange {
		budget = actor.MovementRange
	}
	if budget < 1 {
		return Plan{}, false
	}

	opts := pathOpts(s, actor.ID, budget)
	ranged := actor.AttackRange > 1
	var (
		bestTile grid.Position
		bestDist int
		bestCost int
		found    bool
	)
	for _, rt := range g.ReachableTiles(actor.Position, budget, opts) {
		if !canAttackFrom(rt.Position, actor, target, g) {
			continue
		}
		dist := rt.Position.Chebyshev(target.Position)
		better := false
		switch {
		case !found:
			better = true
		case ranged && dist != bestDist:
			better = dist > bestDist
		case rt.Cost != bestCost:
			better = rt.Cost < bestCost
		}
		if better {
			bestTile, bestDist, bestCost, found = rt.Position, dist, rt.Cost, true
		}
	}
	if !found {
		return Plan{}, false
	}

	path := g.FindPath(actor.Position, bestTile, opts)
	if !path.Reachable {
		return Plan{}, false
	}
	return Plan{
		Actions: []combat.Action{
			combat.Move(actor.ID, path.Tiles),
			combat.Attack(actor.ID, target.ID),
		},
		Branch: BranchAdvanceAttack,
	}, true
}

// advancePlan closes distance toward the target as far as this turn's AP
// and movement range allow. Returns false when no reachable tile is
// strictly closer than the current position.
func advancePlan(s *combat.State, actor, target *combat.Combatant, g *grid.Grid) (Plan, bool) {
	budget := actor.APRemaining
	if budget > actor.MovementRange {
		budget = actor.MovementRange
	}
	if budget < 1 {
		return Plan{}, false
	}

	opts := pathOpts(s, actor.ID, budget)
	curDist := actor.Position.Chebyshev(target.Position)
	var (
		bestTile grid.Position
		bestDist int
		bestCost int
		found    bool
	)
	for _, rt := range g.ReachableTiles(actor.Position, budget, opts) {
		dist := rt.Position.Chebyshev(target.Position)
		if dist >= curDist {
			continue
		}
		better := false
		switch {
		case !found:
			better = true
		case dist != bestDist:
			better = dist < bestDist
		case rt.Cost != bestCost:
			better = rt.Cost < bestCost
		}
		if better {
			bestTile, bestDist, bestCost, found = rt.Position, dist, rt.Cost, true
		}
	}
	if !found {
		return Plan{}, false
	}

	path := g.FindPath(actor.Position, bestTile, opts)
	if !path.Reachable {
		return Plan{}, false
	}
	return Plan{
		Actions: []combat.Action{combat.Move(actor.ID, path.Tiles)},
		Branch:  BranchAdvance,
	}, true
}
