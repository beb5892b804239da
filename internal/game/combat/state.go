package combat

// Phase is the combat state machine phase.
type Phase string

const (
	// PhaseSetup exists only during initialization; Initialize never
	// returns a state in this phase.
	PhaseSetup Phase = "setup"
	// PhaseActive means both sides still have at least one combatant up.
	PhaseActive Phase = "active"
	// PhaseVictory is terminal: only the player side remains.
	PhaseVictory Phase = "victory"
	// PhaseDefeat is terminal: only the enemy side remains.
	PhaseDefeat Phase = "defeat"
)

// Terminal reports whether the phase ends the encounter.
func (p Phase) Terminal() bool { return p == PhaseVictory || p == PhaseDefeat }

// HitQuality is the categorical tier of a resolved attack.
type HitQuality string

const (
	QualityMiss     HitQuality = "miss"
	QualityMarginal HitQuality = "marginal"
	QualityNormal   HitQuality = "normal"
	QualityCrushing HitQuality = "crushing"
)

// Result is the outcome payload of one resolved action. Only attack entries
// populate the roll and damage fields.
type Result struct {
	Hit     bool
	Quality HitQuality
	// Roll is the raw hit die before modifiers.
	Roll int
	// AttackTotal is the full effective attack value: roll + accuracy.
	AttackTotal int
	// RawDamage is damage before armor mitigation.
	RawDamage int
	// Mitigated is how much the defender's armor soaked.
	Mitigated int
	// Damage is what was actually dealt: RawDamage - Mitigated, >= 0.
	Damage int
	// ArmorSoak marks that armor reduced the raw damage. Orthogonal to
	// Quality.
	ArmorSoak bool
	// TargetKnockedOut marks a killing blow.
	TargetKnockedOut bool
}

// LogEntry is the immutable record of one resolved action. The log is the
// sole channel for AI threat tracking and simulator statistics; neither is
// ever recomputed from state deltas.
type LogEntry struct {
	// Turn is the value of State.Turn when the action resolved.
	Turn    int
	ActorID string
	// TargetID is empty for actions without a target.
	TargetID string
	Action   ActionType
	// APSpent is the action's AP cost (path cost for moves).
	APSpent int
	Result  Result
}

// State is the full combat state. It is immutable by convention: callers
// never mutate a State; the reducer returns a fresh value and the caller
// decides whether to commit it.
type State struct {
	// Combatants maps id to combatant. Insertion order is irrelevant;
	// Order carries the roster sequence.
	Combatants map[string]*Combatant
	// Order is the turn order: ids sorted by speed descending, ties
	// broken by stable roster insertion order (player, allies, enemies).
	Order []string
	// Turn is a monotonic actor-turn counter. The current actor is
	// derived from it; see CurrentActor.
	Turn  int
	Phase Phase
	Log   []LogEntry
	// RoomName and RoomImagePath are display metadata passed through
	// untouched for the rendering collaborator.
	RoomName      string
	RoomImagePath string
}

// clone returns a deep copy of s. Log and Order backing arrays are copied so
// appends on the child never alias the parent.
func (s *State) clone() *State {
	cs := make(map[string]*Combatant, len(s.Combatants))
	for id, c := range s.Combatants {
		cc := *c
		cs[id] = &cc
	}
	order := make([]string, len(s.Order))
	copy(order, s.Order)
	log := make([]LogEntry, len(s.Log), len(s.Log)+1)
	copy(log, s.Log)
	return &State{
		Combatants:    cs,
		Order:         order,
		Turn:          s.Turn,
		Phase:         s.Phase,
		Log:           log,
		RoomName:      s.RoomName,
		RoomImagePath: s.RoomImagePath,
	}
}

// Round returns the 1-based round number derived from the turn counter.
func (s *State) Round() int {
	if len(s.Order) == 0 {
		return 0
	}
	return s.Turn/len(s.Order) + 1
}

// CurrentActor returns the combatant whose turn it is: the first living
// combatant in Order at or after the turn cursor. It is a pure query — the
// actor is derived from Turn and the ordering rule, never stored.
//
// Postcondition: nil iff the phase is not active or no one is alive;
// calling twice on the same state returns the same combatant.
func (s *State) CurrentActor() *Combatant {
	if s.Phase != PhaseActive || len(s.Order) == 0 {
		return nil
	}
	n := len(s.Order)
	for i := 0; i < n; i++ {
		c := s.Combatants[s.Order[(s.Turn+i)%n]]
		if c != nil && c.Alive() {
			return c
		}
	}
	return nil
}

// livingOnSide counts living combatants on one side.
func (s *State) livingOnSide(playerControlled bool) int {
	n := 0
	for _, c := range s.Combatants {
		if c.IsPlayerControlled == playerControlled && c.Alive() {
			n++
		}
	}
	return n
}

// evaluateOutcome sets a terminal phase when exactly one side remains.
// Called after every accepted action so a killing blow ends combat
// immediately, mid-round.
func (s *State) evaluateOutcome() {
	if s.Phase != PhaseActive {
		return
	}
	players := s.livingOnSide(true)
	enemies := s.livingOnSide(false)
	switch {
	case enemies == 0 && players > 0:
		s.Phase = PhaseVictory
	case players == 0 && enemies > 0:
		s.Phase = PhaseDefeat
	case players == 0 && enemies == 0:
		// Simultaneous wipe cannot happen with single-target attacks,
		// but the rule must still terminate: the acting side died last.
		s.Phase = PhaseDefeat
	}
}

// sortOrderBySpeed stably sorts ids by combatant speed descending. Ties keep
// roster insertion order, which is the documented tiebreak.
func sortOrderBySpeed(ids []string, combatants map[string]*Combatant) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && combatants[ids[j]].Speed > combatants[ids[j-1]].Speed; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}
