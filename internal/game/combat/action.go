package combat

import "github.com/cory-johannsen/skirmish/internal/game/grid"

// ActionType identifies what a combatant intends to do on their turn.
// The zero value is intentionally invalid.
type ActionType string

const (
	ActionAttack  ActionType = "attack"
	ActionMove    ActionType = "move"
	ActionDefend  ActionType = "defend"
	ActionEndTurn ActionType = "end_turn"
)

// Action is the tagged variant fed to the reducer. Each variant carries only
// what the reducer needs to validate and apply it.
type Action struct {
	Type    ActionType
	ActorID string
	// TargetID is set for attack actions only.
	TargetID string
	// Path is set for move actions only: the pre-computed step sequence,
	// excluding the origin, ending at the destination. The reducer never
	// re-runs pathfinding; it validates the supplied path.
	Path []grid.Position
}

// Attack builds an attack action.
func Attack(actorID, targetID string) Action {
	return Action{Type: ActionAttack, ActorID: actorID, TargetID: targetID}
}

// Move builds a move action along path.
func Move(actorID string, path []grid.Position) Action {
	return Action{Type: ActionMove, ActorID: actorID, Path: path}
}

// Defend builds a defend action.
func Defend(actorID string) Action {
	return Action{Type: ActionDefend, ActorID: actorID}
}

// EndTurn builds an end-turn action.
func EndTurn(actorID string) Action {
	return Action{Type: ActionEndTurn, ActorID: actorID}
}
