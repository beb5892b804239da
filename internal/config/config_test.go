package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/balance"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

func validConfig() Config {
	cfg, err := Default()
	if err != nil {
		panic(err)
	}
	return cfg
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestDefaultsMatchPackageDefaults(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, combat.DefaultTuning(), cfg.Combat.Tuning())
	assert.Equal(t, balance.DefaultThresholds(), cfg.Balance.Thresholds())

	settings := balance.DefaultSettings()
	assert.Equal(t, settings.DefaultIterations, cfg.Simulator.Iterations)
	assert.Equal(t, settings.TurnCap, cfg.Simulator.TurnCap)
	assert.Equal(t, int64(1), cfg.Simulator.Seed)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
logging:
  level: debug
  format: console
simulator:
  iterations: 1000
  turn_cap: 80
  seed: 42
balance:
  max_avg_turns: 30
combat:
  defend_bonus: 6
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 1000, cfg.Simulator.Iterations)
	assert.Equal(t, 80, cfg.Simulator.TurnCap)
	assert.Equal(t, int64(42), cfg.Simulator.Seed)
	assert.Equal(t, 30.0, cfg.Balance.MaxAvgTurns)
	assert.Equal(t, 6, cfg.Combat.DefendBonus)
	// Unset sections keep their defaults.
	assert.Equal(t, combat.DefaultTuning().HitDie, cfg.Combat.HitDie)
	assert.Equal(t, balance.DefaultThresholds().TooEasyWinRate, cfg.Balance.TooEasyWinRate)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	err := os.WriteFile(path, []byte(`
combat:
  hit_die: 1
`), 0644)
	require.NoError(t, err)

	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateSimulator(t *testing.T) {
	cfg := validConfig()
	cfg.Simulator.Iterations = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Simulator.TurnCap = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Simulator.Parallelism = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateDelegatesToThresholds(t *testing.T) {
	cfg := validConfig()
	cfg.Balance.TooEasyWinRate = 1.5
	assert.Error(t, cfg.Validate())
}

func TestValidateDelegatesToTuning(t *testing.T) {
	cfg := validConfig()
	cfg.Combat.MitigationDen = 0
	assert.Error(t, cfg.Validate())
}

// Property-based tests

func TestPropertyValidSimulatorEnvelope(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := validConfig()
		cfg.Simulator.Iterations = rapid.IntRange(1, 100000).Draw(t, "iterations")
		cfg.Simulator.TurnCap = rapid.IntRange(1, 1000).Draw(t, "turn_cap")
		cfg.Simulator.Parallelism = rapid.IntRange(0, 128).Draw(t, "parallelism")
		if err := cfg.Validate(); err != nil {
			t.Fatalf("valid envelope rejected: %v", err)
		}
	})
}

func TestPropertyTuningRoundTrips(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cc := CombatConfig{
			HitDie:         rapid.IntRange(2, 100).Draw(t, "hit_die"),
			AccuracyNum:    rapid.IntRange(0, 10).Draw(t, "accuracy_num"),
			AccuracyDen:    rapid.IntRange(1, 10).Draw(t, "accuracy_den"),
			DefendBonus:    rapid.IntRange(0, 20).Draw(t, "defend_bonus"),
			CrushingMargin: rapid.IntRange(0, 30).Draw(t, "crushing_margin"),
			MarginalMargin: rapid.IntRange(0, 10).Draw(t, "marginal_margin"),
			MarginalNum:    rapid.IntRange(0, 10).Draw(t, "marginal_num"),
			MarginalDen:    rapid.IntRange(1, 10).Draw(t, "marginal_den"),
			CrushingNum:    rapid.IntRange(0, 10).Draw(t, "crushing_num"),
			CrushingDen:    rapid.IntRange(1, 10).Draw(t, "crushing_den"),
			MitigationNum:  rapid.IntRange(0, 10).Draw(t, "mitigation_num"),
			MitigationDen:  rapid.IntRange(1, 10).Draw(t, "mitigation_den"),
			AttackCost:     rapid.IntRange(0, 10).Draw(t, "attack_cost"),
			DefendCost:     rapid.IntRange(0, 10).Draw(t, "defend_cost"),
		}

		tuning := cc.Tuning()
		if err := tuning.Validate(); err != nil {
			t.Fatalf("conversion broke a valid tuning: %v", err)
		}
		if tuning.HitDie != cc.HitDie || tuning.AttackCost != cc.AttackCost {
			t.Fatalf("conversion dropped fields: %+v vs %+v", cc, tuning)
		}
	})
}
