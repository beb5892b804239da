package balance

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// Outcome classifies one finished combat. Stalls are tracked apart from
// wins and losses so a turn-cap bailout cannot distort win-rate statistics.
type Outcome string

const (
	OutcomeWin     Outcome = "win"
	OutcomeLoss    Outcome = "loss"
	OutcomeStalled Outcome = "stalled"
)

// CombatStats is everything one combat contributes to the aggregate,
// derived from the final state and its log.
type CombatStats struct {
	Outcome Outcome
	// Turns is the number of rounds elapsed when combat ended.
	Turns int
	// FinalPlayerHPPercent averages remaining HP over the player side,
	// counting the knocked out at zero.
	FinalPlayerHPPercent float64

	PlayerHits   int
	PlayerMisses int
	EnemyHits    int
	EnemyMisses  int

	// ArmorMitigated is the total damage soaked by armor on both sides.
	ArmorMitigated int
	// QualityCounts tallies every attack by hit quality, misses included.
	QualityCounts map[combat.HitQuality]int
	// DamageByActor attributes dealt damage per combatant ID.
	DamageByActor map[string]int
	// PlayerDamageDealt and EnemyDamageDealt split the same totals by side.
	PlayerDamageDealt int
	EnemyDamageDealt  int
}

// RunCombat plays one complete combat for the scenario with a dedicated
// seeded source and returns its statistics. The player side runs a trivial
// heuristic (attack the lowest-HP valid target, else defend); enemies run
// the real AI. Identical scenario, seed, and tuning reproduce the combat
// exactly.
//
// Precondition: sc passed Validate; turnCap >= 1.
func RunCombat(sc Scenario, seed int64, tuning combat.Tuning, turnCap int) (CombatStats, error) {
	engine, state, err := combat.Initialize(initDataFor(sc), dice.NewSeededSource(seed), tuning)
	if err != nil {
		return CombatStats{}, fmt.Errorf("balance.RunCombat: scenario %q: %w", sc.Name, err)
	}
	g := engine.Grid()

	stalled := false
	for state.Phase == combat.PhaseActive {
		if state.Round() > turnCap {
			stalled = true
			break
		}
		actor := state.CurrentActor()
		if actor == nil {
			break
		}

		var actions []combat.Action
		if actor.IsPlayerControlled {
			actions = []combat.Action{playerAction(state, actor, g, tuning)}
		} else {
			actions = ai.DecideActions(state, actor.ID, g, tuning)
		}

		progressed := false
		for _, a := range actions {
			step := engine.Apply(state, a)
			if step.Rejected {
				break
			}
			state = step.State
			progressed = true
			if state.Phase != combat.PhaseActive {
				break
			}
			if cur := state.CurrentActor(); cur == nil || cur.ID != actor.ID {
				break
			}
		}
		if !progressed {
			// A wholly rejected plan must not wedge the loop; force the
			// turn forward.
			step := engine.Apply(state, combat.EndTurn(actor.ID))
			if step.Rejected {
				return CombatStats{}, fmt.Errorf("balance.RunCombat: scenario %q: turn %d cannot progress: %s",
					sc.Name, state.Turn, step.Reason)
			}
			state = step.State
		}
	}

	return deriveStats(state, turnCap, stalled), nil
}

// initDataFor builds the engine roster for a scenario: stable IDs, default
// arena, melee player side, scenario-selected enemy archetype.
func initDataFor(sc Scenario) combat.InitData {
	data := combat.InitData{
		Player: combat.ParticipantData{
			ID:    "player",
			Name:  "Player",
			Level: sc.PlayerLevel,
		},
		Arena: combat.DefaultArena(),
	}
	for i, level := range sc.AllyLevels {
		data.Allies = append(data.Allies, combat.ParticipantData{
			ID:    fmt.Sprintf("ally-%d", i+1),
			Name:  fmt.Sprintf("Ally %d", i+1),
			Level: level,
		})
	}
	for i, level := range sc.EnemyLevels {
		data.Enemies = append(data.Enemies, combat.ParticipantData{
			ID:        fmt.Sprintf("enemy-%d", i+1),
			Name:      fmt.Sprintf("Enemy %d", i+1),
			Level:     level,
			Archetype: sc.EnemyArchetype,
		})
	}
	return data
}

// playerAction is the scripted player-side policy: attack the valid target
// with the lowest current HP, close distance toward the nearest enemy when
// no target is attackable, otherwise raise a guard, otherwise yield the
// turn. It emits one action; the runner re-plans from the resulting state.
func playerAction(s *combat.State, actor *combat.Combatant, g *grid.Grid, tuning combat.Tuning) combat.Action {
	if actor.APRemaining >= tuning.AttackCost {
		targets := combat.ValidAttackTargets(s, actor.ID, g)
		if len(targets) > 0 {
			lowest := targets[0]
			for _, t := range targets[1:] {
				if t.CurrentHP < lowest.CurrentHP {
					lowest = t
				}
			}
			return combat.Attack(actor.ID, lowest.ID)
		}
		if move, ok := closeDistance(s, actor, g); ok {
			return move
		}
	}
	if !actor.IsDefending && actor.APRemaining >= tuning.DefendCost {
		return combat.Defend(actor.ID)
	}
	return combat.EndTurn(actor.ID)
}

// closeDistance builds a move toward the nearest living enemy, strictly
// reducing distance. Returns false when no closer tile is reachable this
// turn.
func closeDistance(s *combat.State, actor *combat.Combatant, g *grid.Grid) (combat.Action, bool) {
	budget := actor.APRemaining
	if budget > actor.MovementRange {
		budget = actor.MovementRange
	}
	if budget < 1 {
		return combat.Action{}, false
	}
	enemies := combat.LivingEnemiesOf(s, actor.ID)
	if len(enemies) == 0 {
		return combat.Action{}, false
	}
	nearest := enemies[0]
	for _, e := range enemies[1:] {
		if actor.Position.Chebyshev(e.Position) < actor.Position.Chebyshev(nearest.Position) {
			nearest = e
		}
	}

	opts := grid.PathOptions{
		MaxCost:        budget,
		AllowDiagonals: true,
		Occupied:       combat.OccupiedBlocker(s, actor.ID),
	}
	curDist := actor.Position.Chebyshev(nearest.Position)
	var (
		bestTile grid.Position
		bestDist int
		bestCost int
		found    bool
	)
	for _, rt := range g.ReachableTiles(actor.Position, budget, opts) {
		dist := rt.Position.Chebyshev(nearest.Position)
		if dist >= curDist {
			continue
		}
		if !found || dist < bestDist || (dist == bestDist && rt.Cost < bestCost) {
			bestTile, bestDist, bestCost, found = rt.Position, dist, rt.Cost, true
		}
	}
	if !found {
		return combat.Action{}, false
	}
	path := g.FindPath(actor.Position, bestTile, opts)
	if !path.Reachable {
		return combat.Action{}, false
	}
	return combat.Move(actor.ID, path.Tiles), true
}

// deriveStats reduces a finished combat to its statistics. Everything is
// read off the final state and the log; the runner keeps no side channel.
func deriveStats(s *combat.State, turnCap int, stalled bool) CombatStats {
	stats := CombatStats{
		QualityCounts: make(map[combat.HitQuality]int),
		DamageByActor: make(map[string]int),
	}

	switch {
	case stalled:
		stats.Outcome = OutcomeStalled
		stats.Turns = turnCap
	case s.Phase == combat.PhaseVictory:
		stats.Outcome = OutcomeWin
		stats.Turns = s.Round()
	default:
		stats.Outcome = OutcomeLoss
		stats.Turns = s.Round()
	}

	var hpSum float64
	var playerSide int
	for _, c := range s.Combatants {
		if !c.IsPlayerControlled {
			continue
		}
		playerSide++
		hpSum += c.HPPercent()
	}
	if playerSide > 0 {
		stats.FinalPlayerHPPercent = hpSum / float64(playerSide)
	}

	for _, entry := range s.Log {
		if entry.Action != combat.ActionAttack {
			continue
		}
		attacker := s.Combatants[entry.ActorID]
		if attacker == nil {
			continue
		}
		stats.QualityCounts[entry.Result.Quality]++
		stats.ArmorMitigated += entry.Result.Mitigated
		stats.DamageByActor[entry.ActorID] += entry.Result.Damage
		if attacker.IsPlayerControlled {
			stats.PlayerDamageDealt += entry.Result.Damage
		} else {
			stats.EnemyDamageDealt += entry.Result.Damage
		}
		if entry.Result.Hit {
			if attacker.IsPlayerControlled {
				stats.PlayerHits++
			} else {
				stats.EnemyHits++
			}
		} else {
			if attacker.IsPlayerControlled {
				stats.PlayerMisses++
			} else {
				stats.EnemyMisses++
			}
		}
	}
	return stats
}
