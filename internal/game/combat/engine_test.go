package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// script replays fixed Intn values, wrapping around. Scripting v makes a
// d20 roll come up v+1.
type script struct {
	vals []int
	i    int
}

func (s *script) Intn(n int) int {
	v := s.vals[s.i%len(s.vals)] % n
	s.i++
	return v
}

func participant(id string, level int, arch combat.Archetype) combat.ParticipantData {
	return combat.ParticipantData{ID: id, Name: id, Level: level, Archetype: arch}
}

func mustInit(t *testing.T, data combat.InitData, src dice.Source) (*combat.Engine, *combat.State) {
	t.Helper()
	engine, state, err := combat.Initialize(data, src, combat.DefaultTuning())
	require.NoError(t, err)
	return engine, state
}

// corridor is a 1-tile-high arena: the player spawns at (1,0), the first
// enemy at (width-2, 0).
func corridor(width int) combat.ArenaSpec {
	return combat.ArenaSpec{Width: width, Height: 1}
}

func TestInitializeValidation(t *testing.T) {
	valid := combat.InitData{
		Player:  participant("p", 1, combat.ArchetypeMelee),
		Enemies: []combat.ParticipantData{participant("e1", 1, combat.ArchetypeMelee)},
	}

	t.Run("nil source", func(t *testing.T) {
		_, _, err := combat.Initialize(valid, nil, combat.DefaultTuning())
		assert.Error(t, err)
	})
	t.Run("invalid tuning", func(t *testing.T) {
		bad := combat.DefaultTuning()
		bad.HitDie = 0
		_, _, err := combat.Initialize(valid, &script{vals: []int{0}}, bad)
		assert.Error(t, err)
	})
	t.Run("no enemies", func(t *testing.T) {
		data := valid
		data.Enemies = nil
		_, _, err := combat.Initialize(data, &script{vals: []int{0}}, combat.DefaultTuning())
		assert.Error(t, err)
	})
	t.Run("duplicate id", func(t *testing.T) {
		data := valid
		data.Enemies = []combat.ParticipantData{participant("p", 1, combat.ArchetypeMelee)}
		_, _, err := combat.Initialize(data, &script{vals: []int{0}}, combat.DefaultTuning())
		assert.Error(t, err)
	})
	t.Run("no spawn tile", func(t *testing.T) {
		// Width 3 leaves a single shared spawn column; the player takes
		// its only tile.
		data := valid
		data.Arena = corridor(3)
		_, _, err := combat.Initialize(data, &script{vals: []int{0}}, combat.DefaultTuning())
		assert.Error(t, err)
	})
	t.Run("degenerate arena", func(t *testing.T) {
		data := valid
		data.Arena = combat.ArenaSpec{Width: 0, Height: 5}
		_, _, err := combat.Initialize(data, &script{vals: []int{0}}, combat.DefaultTuning())
		assert.Error(t, err)
	})
}

func TestInitializeOrderAndPlacement(t *testing.T) {
	data := combat.InitData{
		Player: participant("p", 5, combat.ArchetypeMelee),
		Allies: []combat.ParticipantData{participant("a1", 5, combat.ArchetypeMelee)},
		Enemies: []combat.ParticipantData{
			participant("e1", 5, combat.ArchetypeMelee),
			participant("e2", 3, combat.ArchetypeMelee),
		},
		RoomName: "the pit",
	}
	_, state, err := combat.Initialize(data, &script{vals: []int{0}}, combat.DefaultTuning())
	require.NoError(t, err)

	assert.Equal(t, combat.PhaseActive, state.Phase)
	assert.Equal(t, "the pit", state.RoomName)
	// Speed ties keep roster order; the slower e2 goes last.
	assert.Equal(t, []string{"p", "a1", "e1", "e2"}, state.Order)

	// Default 12x8 arena: sides fan out from the center row of their column.
	assert.Equal(t, grid.Position{X: 1, Y: 4}, state.Combatants["p"].Position)
	assert.Equal(t, grid.Position{X: 1, Y: 3}, state.Combatants["a1"].Position)
	assert.Equal(t, grid.Position{X: 10, Y: 4}, state.Combatants["e1"].Position)
	assert.Equal(t, grid.Position{X: 10, Y: 3}, state.Combatants["e2"].Position)

	for _, c := range state.Combatants {
		assert.Equal(t, c.MaxHP, c.CurrentHP)
		assert.Equal(t, c.APPerTurn, c.APRemaining)
		assert.False(t, c.IsKnockedOut)
	}
	require.NotNil(t, state.CurrentActor())
	assert.Equal(t, "p", state.CurrentActor().ID)
	assert.Equal(t, 1, state.Round())
}

func TestInitializePlayerAdvantage(t *testing.T) {
	data := combat.InitData{
		Player:  participant("p", 5, combat.ArchetypeMelee),
		Enemies: []combat.ParticipantData{participant("e1", 6, combat.ArchetypeMelee)},
	}

	_, state, err := combat.Initialize(data, &script{vals: []int{0}}, combat.DefaultTuning())
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "p"}, state.Order, "faster enemy acts first without advantage")

	data.PlayerAdvantage = true
	_, state, err = combat.Initialize(data, &script{vals: []int{0}}, combat.DefaultTuning())
	require.NoError(t, err)
	assert.Equal(t, []string{"p", "e1"}, state.Order, "advantage bonus flips the initiative tie")
}

func TestApplyRejectionNeverMutates(t *testing.T) {
	data := combat.InitData{
		Player:  participant("p", 1, combat.ArchetypeMelee),
		Enemies: []combat.ParticipantData{participant("e1", 1, combat.ArchetypeMelee)},
		Arena:   corridor(4),
	}
	engine, state := mustInit(t, data, &script{vals: []int{9}})

	cases := []struct {
		name   string
		action combat.Action
	}{
		{"unknown actor", combat.Attack("ghost", "e1")},
		{"not this actor's turn", combat.Attack("e1", "p")},
		{"attack self", combat.Attack("p", "p")},
		{"unknown target", combat.Attack("p", "ghost")},
		{"unknown action type", combat.Action{Type: "dance", ActorID: "p"}},
		{"empty move path", combat.Move("p", nil)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			step := engine.Apply(state, tc.action)

			assert.True(t, step.Rejected)
			assert.NotEmpty(t, step.Reason)
			assert.Same(t, state, step.State)
			assert.Empty(t, step.Entries)
			assert.Empty(t, state.Log)
			assert.Equal(t, 6, state.Combatants["p"].APRemaining)
		})
	}
}

func TestAttackHitResolution(t *testing.T) {
	data := combat.InitData{
		Player:  participant("p", 1, combat.ArchetypeMelee),
		Enemies: []combat.ParticipantData{participant("e1", 1, combat.ArchetypeMelee)},
		Arena:   corridor(4),
	}
	engine, state := mustInit(t, data, &script{vals: []int{9}}) // roll 10: normal hit

	step := engine.Apply(state, combat.Attack("p", "e1"))

	require.False(t, step.Rejected, step.Reason)
	require.NotSame(t, state, step.State)
	next := step.State

	// Level 1 vs level 1: roll 10 + accuracy 7 vs defense 12, normal hit,
	// 11 raw minus 3 armor.
	require.Len(t, step.Entries, 1)
	entry := step.Entries[0]
	assert.Equal(t, combat.ActionAttack, entry.Action)
	assert.Equal(t, "p", entry.ActorID)
	assert.Equal(t, "e1", entry.TargetID)
	assert.Equal(t, 3, entry.APSpent)
	assert.Equal(t, 10, entry.Result.Roll)
	assert.Equal(t, 17, entry.Result.AttackTotal)
	assert.Equal(t, combat.QualityNormal, entry.Result.Quality)
	assert.Equal(t, 11, entry.Result.RawDamage)
	assert.Equal(t, 3, entry.Result.Mitigated)
	assert.Equal(t, 8, entry.Result.Damage)
	assert.True(t, entry.Result.ArmorSoak)
	assert.False(t, entry.Result.TargetKnockedOut)

	assert.Equal(t, 54, next.Combatants["e1"].CurrentHP)
	assert.Equal(t, 3, next.Combatants["p"].APRemaining)
	assert.Equal(t, []combat.LogEntry{entry}, next.Log)

	// The input snapshot is untouched.
	assert.Equal(t, 62, state.Combatants["e1"].CurrentHP)
	assert.Equal(t, 6, state.Combatants["p"].APRemaining)
	assert.Empty(t, state.Log)
}

func TestAttackMissIsStillLogged(t *testing.T) {
	data := combat.InitData{
		Player:  participant("p", 1, combat.ArchetypeMelee),
		Enemies: []combat.ParticipantData{participant("e1", 1, combat.ArchetypeMelee)},
		Arena:   corridor(4),
	}
	engine, state := mustInit(t, data, &script{vals: []int{0}}) // roll 1: miss

	step := engine.Apply(state, combat.Attack("p", "e1"))

	require.False(t, step.Rejected, step.Reason)
	require.Len(t, step.Entries, 1)
	entry := step.Entries[0]
	assert.False(t, entry.Result.Hit)
	assert.Equal(t, combat.QualityMiss, entry.Result.Quality)
	assert.Zero(t, entry.Result.Damage)
	assert.Equal(t, 3, entry.APSpent, "a miss still costs the attack AP")
	assert.Equal(t, 62, step.State.Combatants["e1"].CurrentHP)
}

func TestAttackRejectsSameSideAndOutOfRange(t *testing.T) {
	data := combat.InitData{
		Player:  participant("p", 1, combat.ArchetypeMelee),
		Allies:  []combat.ParticipantData{participant("a1", 1, combat.ArchetypeMelee)},
		Enemies: []combat.ParticipantData{participant("e1", 1, combat.ArchetypeMelee)},
	}
	engine, state := mustInit(t, data, &script{vals: []int{9}})

	step := engine.Apply(state, combat.Attack("p", "a1"))
	assert.True(t, step.Rejected)

	// Default arena spawns the sides 9 columns apart.
	step = engine.Apply(state, combat.Attack("p", "e1"))
	assert.True(t, step.Rejected)
}

func TestRangedAttackNeedsLineOfSight(t *testing.T) {
	data := combat.InitData{
		Player:  participant("p", 1, combat.ArchetypeRanged),
		Enemies: []combat.ParticipantData{participant("e1", 1, combat.ArchetypeMelee)},
		Arena:   corridor(7),
	}
	data.Arena.BlockedTiles = []grid.Position{{X: 3, Y: 0}}
	engine, state := mustInit(t, data, &script{vals: []int{9}})

	// Distance 4 is exactly in range, but the wall blocks sight.
	step := engine.Apply(state, combat.Attack("p", "e1"))
	assert.True(t, step.Rejected)

	open := data
	open.Arena.BlockedTiles = nil
	engine, state = mustInit(t, open, &script{vals: []int{9}})
	step = engine.Apply(state, combat.Attack("p", "e1"))
	assert.False(t, step.Rejected, step.Reason)
}

func TestMoveSemantics(t *testing.T) {
	data := combat.InitData{
		Player:  participant("p", 1, combat.ArchetypeMelee),
		Enemies: []combat.ParticipantData{participant("e1", 1, combat.ArchetypeMelee)},
		Arena:   corridor(6),
	}
	engine, state := mustInit(t, data, &script{vals: []int{9}})
	pos := func(x int) grid.Position { return grid.Position{X: x, Y: 0} }

	t.Run("rejects path beyond movement range", func(t *testing.T) {
		step := engine.Apply(state, combat.Move("p", []grid.Position{
			pos(2), pos(3), pos(2), pos(3), pos(2),
		}))
		assert.True(t, step.Rejected)
	})
	t.Run("rejects non-adjacent steps", func(t *testing.T) {
		step := engine.Apply(state, combat.Move("p", []grid.Position{pos(3)}))
		assert.True(t, step.Rejected)
	})
	t.Run("rejects occupied destination", func(t *testing.T) {
		step := engine.Apply(state, combat.Move("p", []grid.Position{pos(2), pos(3), pos(4)}))
		assert.True(t, step.Rejected, "enemy holds (4,0)")
	})

	t.Run("applies final tile and AP cost", func(t *testing.T) {
		step := engine.Apply(state, combat.Move("p", []grid.Position{pos(2), pos(3)}))
		require.False(t, step.Rejected, step.Reason)
		moved := step.State.Combatants["p"]
		assert.Equal(t, pos(3), moved.Position)
		assert.Equal(t, 4, moved.APRemaining)
		require.Len(t, step.Entries, 1)
		assert.Equal(t, combat.ActionMove, step.Entries[0].Action)
		assert.Equal(t, 2, step.Entries[0].APSpent)
		// Snapshot untouched.
		assert.Equal(t, pos(1), state.Combatants["p"].Position)
	})

	t.Run("rejects path exceeding remaining AP", func(t *testing.T) {
		// Burn AP down to 3, then ask for a 4-tile path: range allows it,
		// AP does not.
		s := engine.Apply(state, combat.Move("p", []grid.Position{pos(2), pos(3)})).State
		s = engine.Apply(s, combat.Move("p", []grid.Position{pos(2)})).State
		require.Equal(t, 3, s.Combatants["p"].APRemaining)

		step := engine.Apply(s, combat.Move("p", []grid.Position{pos(1), pos(2), pos(1), pos(2)}))
		assert.True(t, step.Rejected)
	})
}

func TestDefendLifecycle(t *testing.T) {
	data := combat.InitData{
		Player:  participant("p", 1, combat.ArchetypeMelee),
		Enemies: []combat.ParticipantData{participant("e1", 1, combat.ArchetypeMelee)},
		Arena:   corridor(4),
	}
	// Enemy rolls 8: a hit against a passive defense of 12, a miss against
	// a defending 16.
	engine, state := mustInit(t, data, &script{vals: []int{7}})

	step := engine.Apply(state, combat.Defend("p"))
	require.False(t, step.Rejected, step.Reason)
	state = step.State
	assert.True(t, state.Combatants["p"].IsDefending)
	assert.Equal(t, 4, state.Combatants["p"].APRemaining)

	step = engine.Apply(state, combat.Defend("p"))
	assert.True(t, step.Rejected, "defending twice in one turn")
	state = step.State

	state = engine.Apply(state, combat.EndTurn("p")).State
	require.Equal(t, "e1", state.CurrentActor().ID)

	step = engine.Apply(state, combat.Attack("e1", "p"))
	require.False(t, step.Rejected, step.Reason)
	state = step.State
	assert.False(t, step.Entries[0].Result.Hit, "defend bonus turns the hit into a miss")

	// The bonus expires when the defender's next turn starts.
	state = engine.Apply(state, combat.EndTurn("e1")).State
	p := state.Combatants["p"]
	assert.False(t, p.IsDefending)
	assert.Equal(t, 6, p.APRemaining)
	assert.Equal(t, 2, state.Round())
}

func TestEndTurnSkipsKnockedOut(t *testing.T) {
	data := combat.InitData{
		// Level 11 ranged one-shots a level 1: crushing 68 raw, 65 dealt.
		Player: participant("p", 11, combat.ArchetypeRanged),
		Enemies: []combat.ParticipantData{
			participant("e1", 1, combat.ArchetypeMelee),
			participant("e2", 1, combat.ArchetypeMelee),
		},
		Arena: combat.ArenaSpec{Width: 5, Height: 3},
	}
	engine, state := mustInit(t, data, &script{vals: []int{9}})
	require.Equal(t, []string{"p", "e1", "e2"}, state.Order)

	step := engine.Apply(state, combat.Attack("p", "e1"))
	require.False(t, step.Rejected, step.Reason)
	state = step.State
	require.True(t, step.Entries[0].Result.TargetKnockedOut)
	assert.Equal(t, combat.PhaseActive, state.Phase, "e2 still stands")
	assert.True(t, state.Combatants["e1"].IsKnockedOut)
	assert.Contains(t, state.Combatants, "e1", "knocked out combatants stay in the state")

	step = engine.Apply(state, combat.Attack("p", "e1"))
	assert.True(t, step.Rejected, "knocked-out targets are invalid")

	state = engine.Apply(state, combat.EndTurn("p")).State
	require.NotNil(t, state.CurrentActor())
	assert.Equal(t, "e2", state.CurrentActor().ID, "cursor skips the knocked-out e1")
	assert.Equal(t, 6, state.Combatants["e2"].APRemaining)
}

func TestKillingBlowEndsCombatImmediately(t *testing.T) {
	t.Run("victory", func(t *testing.T) {
		data := combat.InitData{
			Player:  participant("p", 11, combat.ArchetypeRanged),
			Enemies: []combat.ParticipantData{participant("e1", 1, combat.ArchetypeMelee)},
			Arena:   corridor(4),
		}
		engine, state := mustInit(t, data, &script{vals: []int{9}})

		step := engine.Apply(state, combat.Attack("p", "e1"))
		require.False(t, step.Rejected, step.Reason)
		state = step.State
		assert.Equal(t, combat.PhaseVictory, state.Phase)
		assert.True(t, state.Phase.Terminal())
		assert.Nil(t, state.CurrentActor())

		step = engine.Apply(state, combat.EndTurn("p"))
		assert.True(t, step.Rejected, "terminal states accept no actions")
	})
	t.Run("defeat", func(t *testing.T) {
		data := combat.InitData{
			Player:  participant("p", 1, combat.ArchetypeMelee),
			Enemies: []combat.ParticipantData{participant("e1", 11, combat.ArchetypeMelee)},
			Arena:   corridor(4),
		}
		engine, state := mustInit(t, data, &script{vals: []int{9}})
		require.Equal(t, "e1", state.CurrentActor().ID, "the level 11 enemy wins initiative")

		step := engine.Apply(state, combat.Attack("e1", "p"))
		require.False(t, step.Rejected, step.Reason)
		assert.Equal(t, combat.PhaseDefeat, step.State.Phase)
	})
}
