// Package combat implements the deterministic, grid-positioned tactical
// combat engine: the combatant and state model, the pure action reducer,
// and the queries collaborators use to drive a combat loop.
package combat

import "github.com/cory-johannsen/skirmish/internal/game/grid"

// Archetype selects the stat profile a combatant is derived from.
type Archetype string

const (
	// ArchetypeMelee fights at range 1 and never needs line of sight.
	ArchetypeMelee Archetype = "melee"
	// ArchetypeRanged trades damage for reach and must have line of sight.
	ArchetypeRanged Archetype = "ranged"
)

// StatBlock is the full stat bundle derived from a level.
type StatBlock struct {
	MaxHP         int
	Damage        int
	Defense       int
	Speed         int
	Armor         int
	AttackRange   int
	MovementRange int
	APPerTurn     int
}

// DeriveStats maps a level to a StatBlock. It is a pure function: the same
// level always yields the same stats, so it seeds combatants and computes
// level-up deltas (DeriveStats(l+1) minus DeriveStats(l)) with no hidden
// randomness. Levels below 1 are clamped to 1.
//
// Postcondition: every field of the result is >= 1.
func DeriveStats(level int, arch Archetype) StatBlock {
	if level < 1 {
		level = 1
	}
	s := StatBlock{
		MaxHP:         50 + 12*level,
		Damage:        8 + 3*level,
		Defense:       10 + 2*level,
		Speed:         5 + level,
		Armor:         2 + level,
		AttackRange:   1,
		MovementRange: 4,
		APPerTurn:     6,
	}
	if arch == ArchetypeRanged {
		s.Damage = 6 + 3*level
		s.AttackRange = 4
	}
	return s
}

// Combatant represents one participant in a combat encounter.
//
// Invariant: 0 <= CurrentHP <= MaxHP; APRemaining >= 0;
// IsKnockedOut is true iff CurrentHP == 0.
type Combatant struct {
	// ID is unique within a State.
	ID   string
	Name string
	// IsPlayer marks the literal player character.
	IsPlayer bool
	// IsPlayerControlled marks the player's side: the player and allies.
	IsPlayerControlled bool
	Position           grid.Position
	CurrentHP          int
	MaxHP              int
	Damage             int
	Defense            int
	// Speed is the initiative stat: higher acts earlier each round.
	Speed         int
	Armor         int
	AttackRange   int
	MovementRange int
	// APPerTurn is the AP budget refreshed at the start of each turn.
	APPerTurn    int
	APRemaining  int
	IsKnockedOut bool
	// IsDefending grants a defense bonus until this combatant's next
	// turn starts.
	IsDefending bool
}

// Alive reports whether the combatant can still act and be targeted.
//
// Postcondition: returns true iff IsKnockedOut is false.
func (c *Combatant) Alive() bool { return !c.IsKnockedOut }

// SameSide reports whether c and o fight on the same side.
func (c *Combatant) SameSide(o *Combatant) bool {
	return c.IsPlayerControlled == o.IsPlayerControlled
}

// HPPercent returns current HP as a fraction of max in [0, 1].
// Returns 0 when MaxHP is not positive.
func (c *Combatant) HPPercent() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.CurrentHP) / float64(c.MaxHP)
}

// applyDamage reduces CurrentHP by amount, flooring at zero, and knocks the
// combatant out on reaching zero. Knocked-out combatants are never removed
// from the state so AI threat tracking and log references stay valid.
//
// Precondition: amount >= 0.
// Postcondition: CurrentHP >= 0; IsKnockedOut iff CurrentHP == 0.
func (c *Combatant) applyDamage(amount int) {
	c.CurrentHP -= amount
	if c.CurrentHP <= 0 {
		c.CurrentHP = 0
		c.IsKnockedOut = true
	}
}
