package combat

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// ParticipantData describes one combatant in the initialization input.
type ParticipantData struct {
	// ID may be empty; Initialize then mints a UUID.
	ID   string
	Name string
	// Level seeds the stat block through DeriveStats.
	Level int
	// Archetype defaults to melee when empty.
	Archetype Archetype
	// Portrait is a display reference passed through untouched.
	Portrait string
}

// ArenaSpec describes the combat arena.
type ArenaSpec struct {
	Width        int
	Height       int
	BlockedTiles []grid.Position
}

// Grid builds the tile grid for the arena.
//
// Postcondition: returns a grid with every BlockedTiles entry impassable,
// or an error for degenerate dimensions.
func (a ArenaSpec) Grid() (*grid.Grid, error) {
	g, err := grid.New(a.Width, a.Height)
	if err != nil {
		return nil, fmt.Errorf("combat: building arena: %w", err)
	}
	for _, p := range a.BlockedTiles {
		g.SetBlocked(p, true)
	}
	return g, nil
}

// DefaultArena is the standard encounter arena: a 12x8 field with a small
// central obstruction so line of sight matters.
func DefaultArena() ArenaSpec {
	return ArenaSpec{
		Width:  12,
		Height: 8,
		BlockedTiles: []grid.Position{
			{X: 5, Y: 3}, {X: 6, Y: 3},
			{X: 5, Y: 4}, {X: 6, Y: 4},
		},
	}
}

// InitData is the initialization input for one encounter. RoomName and
// RoomImagePath are display metadata for the rendering collaborator; the
// core passes them through untouched.
type InitData struct {
	Player  ParticipantData
	Allies  []ParticipantData
	Enemies []ParticipantData
	Arena   ArenaSpec
	// PlayerAdvantage biases initiative toward the player side.
	PlayerAdvantage bool
	RoomName        string
	RoomImagePath   string
}

// Step is the reducer result: the (possibly new) state, the log entries the
// action appended, and the rejection signal for invalid actions.
//
// Invariant: when Rejected, State is the input state unchanged and Entries
// is empty — a rejected action must never mutate anything.
type Step struct {
	State    *State
	Entries  []LogEntry
	Rejected bool
	Reason   string
}

// Engine owns the arena grid, the randomness source, and the tuning, and
// applies actions to combat states. It holds no per-combat state: every
// Apply is a pure function of the input state.
type Engine struct {
	grid   *grid.Grid
	src    dice.Source
	tuning Tuning
}

// playerAdvantageSpeedBonus is the flat initiative bonus the player side
// receives when InitData.PlayerAdvantage is set.
const playerAdvantageSpeedBonus = 2

// Initialize validates data, builds the arena engine, and produces the
// starting state. An empty side is a fatal configuration error: no turn
// order could be established.
//
// Postcondition: on success the returned state has Phase == PhaseActive,
// every combatant placed on a distinct traversable tile with full AP, and
// Order sorted by speed descending with stable roster ties.
func Initialize(data InitData, src dice.Source, tuning Tuning) (*Engine, *State, error) {
	if src == nil {
		return nil, nil, fmt.Errorf("combat.Initialize: src must not be nil")
	}
	if err := tuning.Validate(); err != nil {
		return nil, nil, fmt.Errorf("combat.Initialize: %w", err)
	}
	if len(data.Enemies) == 0 {
		return nil, nil, fmt.Errorf("combat.Initialize: enemy roster must not be empty")
	}

	arena := data.Arena
	if arena.Width == 0 && arena.Height == 0 {
		arena = DefaultArena()
	}
	g, err := arena.Grid()
	if err != nil {
		return nil, nil, err
	}

	s := &State{
		Combatants:    make(map[string]*Combatant),
		Phase:         PhaseSetup,
		RoomName:      data.RoomName,
		RoomImagePath: data.RoomImagePath,
	}

	place := newPlacer(g)
	addParticipant := func(p ParticipantData, isPlayer, playerControlled bool, column int) error {
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, dup := s.Combatants[id]; dup {
			return fmt.Errorf("combat.Initialize: duplicate combatant id %q", id)
		}
		stats := DeriveStats(p.Level, p.Archetype)
		pos, ok := place.next(column)
		if !ok {
			return fmt.Errorf("combat.Initialize: no free spawn tile for %q", id)
		}
		speed := stats.Speed
		if playerControlled && data.PlayerAdvantage {
			speed += playerAdvantageSpeedBonus
		}
		s.Combatants[id] = &Combatant{
			ID:                 id,
			Name:               p.Name,
			IsPlayer:           isPlayer,
			IsPlayerControlled: playerControlled,
			Position:           pos,
			CurrentHP:          stats.MaxHP,
			MaxHP:              stats.MaxHP,
			Damage:             stats.Damage,
			Defense:            stats.Defense,
			Speed:              speed,
			Armor:              stats.Armor,
			AttackRange:        stats.AttackRange,
			MovementRange:      stats.MovementRange,
			APPerTurn:          stats.APPerTurn,
			APRemaining:        stats.APPerTurn,
		}
		s.Order = append(s.Order, id)
		return nil
	}

	leftCol := 1
	rightCol := g.Width() - 2
	if err := addParticipant(data.Player, true, true, leftCol); err != nil {
		return nil, nil, err
	}
	for _, ally := range data.Allies {
		if err := addParticipant(ally, false, true, leftCol); err != nil {
			return nil, nil, err
		}
	}
	for _, enemy := range data.Enemies {
		if err := addParticipant(enemy, false, false, rightCol); err != nil {
			return nil, nil, err
		}
	}

	sortOrderBySpeed(s.Order, s.Combatants)
	s.Phase = PhaseActive
	return &Engine{grid: g, src: src, tuning: tuning}, s, nil
}

// placer hands out spawn tiles near the vertical center of a column,
// fanning outward, skipping blocked tiles.
type placer struct {
	g     *grid.Grid
	used  map[grid.Position]bool
	index map[int]int
}

func newPlacer(g *grid.Grid) *placer {
	return &placer{g: g, used: make(map[grid.Position]bool), index: make(map[int]int)}
}

func (p *placer) next(column int) (grid.Position, bool) {
	center := p.g.Height() / 2
	for ; p.index[column] < p.g.Height(); p.index[column]++ {
		i := p.index[column]
		// 0, -1, +1, -2, +2, ... around the center row.
		offset := (i + 1) / 2
		if i%2 == 1 {
			offset = -offset
		}
		pos := grid.Position{X: column, Y: center + offset}
		if !p.g.Traversable(pos) || p.used[pos] {
			continue
		}
		p.used[pos] = true
		p.index[column]++
		return pos, true
	}
	return grid.Position{}, false
}

// Grid returns the arena grid. The AI and rendering layers query it; they
// never mutate it.
func (e *Engine) Grid() *grid.Grid { return e.grid }

// Tuning returns the active tuning coefficients.
func (e *Engine) Tuning() Tuning { return e.tuning }

// Apply validates action against s and returns the resulting Step. It never
// mutates s: accepted actions come back as a fresh state, rejected actions
// come back as s itself with Rejected set. Rejection is an expected outcome
// — the AI or a remote player may legitimately act on a stale snapshot —
// so it is never an error.
//
// Postcondition: exactly one of the following holds: Rejected with Reason
// set and State == s, or !Rejected with State != s and len(Entries) >= 1.
// Victory/defeat is re-evaluated after every accepted action.
func (e *Engine) Apply(s *State, action Action) Step {
	reject := func(reason string) Step {
		return Step{State: s, Rejected: true, Reason: reason}
	}

	if s == nil {
		return reject("no combat state")
	}
	if s.Phase != PhaseActive {
		return reject("combat is not active")
	}
	actor, ok := s.Combatants[action.ActorID]
	if !ok {
		return reject(fmt.Sprintf("unknown actor %q", action.ActorID))
	}
	if !actor.Alive() {
		return reject("actor is knocked out")
	}
	if cur := s.CurrentActor(); cur == nil || cur.ID != action.ActorID {
		return reject("not this actor's turn")
	}

	switch action.Type {
	case ActionAttack:
		return e.applyAttack(s, actor, action)
	case ActionMove:
		return e.applyMove(s, actor, action)
	case ActionDefend:
		return e.applyDefend(s, actor)
	case ActionEndTurn:
		return e.applyEndTurn(s, actor)
	default:
		return reject(fmt.Sprintf("unknown action type %q", action.Type))
	}
}

// occupiedExcept marks tiles of living combatants other than excludeID.
func occupiedExcept(s *State, excludeID string) grid.Blocker {
	return func(p grid.Position) bool {
		for _, c := range s.Combatants {
			if c.ID != excludeID && c.Alive() && c.Position == p {
				return true
			}
		}
		return false
	}
}

// InRange reports whether target is within actor's attack range, using the
// same Chebyshev metric movement uses.
func InRange(actor, target *Combatant) bool {
	return actor.Position.Chebyshev(target.Position) <= actor.AttackRange
}

func (e *Engine) applyAttack(s *State, actor *Combatant, action Action) Step {
	reject := func(reason string) Step {
		return Step{State: s, Rejected: true, Reason: reason}
	}

	if actor.APRemaining < e.tuning.AttackCost {
		return reject("insufficient AP to attack")
	}
	target, ok := s.Combatants[action.TargetID]
	if !ok {
		return reject(fmt.Sprintf("unknown target %q", action.TargetID))
	}
	if target.ID == actor.ID {
		return reject("cannot attack self")
	}
	if !target.Alive() {
		return reject("target is knocked out")
	}
	if actor.SameSide(target) {
		return reject("target is on the same side")
	}
	if !InRange(actor, target) {
		return reject("target out of range")
	}
	// Melee (range 1) never needs line of sight.
	if actor.AttackRange > 1 && !e.grid.HasLineOfSight(actor.Position, target.Position) {
		return reject("no line of sight to target")
	}

	next := s.clone()
	nextActor := next.Combatants[actor.ID]
	nextTarget := next.Combatants[target.ID]

	result := resolveAttack(nextActor, nextTarget, e.src, e.tuning)
	if result.Damage > 0 {
		nextTarget.applyDamage(result.Damage)
		result.TargetKnockedOut = nextTarget.IsKnockedOut
	}
	nextActor.APRemaining -= e.tuning.AttackCost

	// Exactly one entry per resolved attack, misses included.
	entry := LogEntry{
		Turn:     next.Turn,
		ActorID:  nextActor.ID,
		TargetID: nextTarget.ID,
		Action:   ActionAttack,
		APSpent:  e.tuning.AttackCost,
		Result:   result,
	}
	next.Log = append(next.Log, entry)
	next.evaluateOutcome()
	return Step{State: next, Entries: []LogEntry{entry}}
}

func (e *Engine) applyMove(s *State, actor *Combatant, action Action) Step {
	reject := func(reason string) Step {
		return Step{State: s, Rejected: true, Reason: reason}
	}

	if len(action.Path) == 0 {
		return reject("empty move path")
	}
	cost := len(action.Path)
	if cost > actor.MovementRange {
		return reject("path exceeds movement range")
	}
	if cost > actor.APRemaining {
		return reject("insufficient AP for path")
	}

	// The path was pre-computed; re-validate traversability and adjacency
	// against the current snapshot, since the world may have moved on. An
	// unreachable destination is rejected whole — never partially applied.
	occupied := occupiedExcept(s, actor.ID)
	prev := actor.Position
	for _, tile := range action.Path {
		if !prev.Adjacent(tile) {
			return reject("path steps are not adjacent")
		}
		if !e.grid.Traversable(tile) || occupied(tile) {
			return reject("path is blocked")
		}
		prev = tile
	}

	next := s.clone()
	nextActor := next.Combatants[actor.ID]
	// Only the final tile matters for position.
	nextActor.Position = action.Path[len(action.Path)-1]
	nextActor.APRemaining -= cost

	entry := LogEntry{
		Turn:    next.Turn,
		ActorID: nextActor.ID,
		Action:  ActionMove,
		APSpent: cost,
	}
	next.Log = append(next.Log, entry)
	next.evaluateOutcome()
	return Step{State: next, Entries: []LogEntry{entry}}
}

func (e *Engine) applyDefend(s *State, actor *Combatant) Step {
	reject := func(reason string) Step {
		return Step{State: s, Rejected: true, Reason: reason}
	}

	if actor.IsDefending {
		return reject("already defending")
	}
	if actor.APRemaining < e.tuning.DefendCost {
		return reject("insufficient AP to defend")
	}

	next := s.clone()
	nextActor := next.Combatants[actor.ID]
	nextActor.IsDefending = true
	nextActor.APRemaining -= e.tuning.DefendCost

	entry := LogEntry{
		Turn:    next.Turn,
		ActorID: nextActor.ID,
		Action:  ActionDefend,
		APSpent: e.tuning.DefendCost,
	}
	next.Log = append(next.Log, entry)
	next.evaluateOutcome()
	return Step{State: next, Entries: []LogEntry{entry}}
}

func (e *Engine) applyEndTurn(s *State, actor *Combatant) Step {
	next := s.clone()
	nextActor := next.Combatants[actor.ID]
	// Remaining AP does not carry over.
	nextActor.APRemaining = 0

	entry := LogEntry{
		Turn:    next.Turn,
		ActorID: nextActor.ID,
		Action:  ActionEndTurn,
	}
	next.Log = append(next.Log, entry)

	// Advance the cursor past knocked-out combatants, then refresh the
	// incoming actor: full AP, defense bonus expires as their turn starts.
	n := len(next.Order)
	for i := 0; i < n; i++ {
		next.Turn++
		c := next.Combatants[next.Order[next.Turn%n]]
		if c != nil && c.Alive() {
			c.APRemaining = c.APPerTurn
			c.IsDefending = false
			break
		}
	}
	next.evaluateOutcome()
	return Step{State: next, Entries: []LogEntry{entry}}
}
