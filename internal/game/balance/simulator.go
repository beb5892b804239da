package balance

import (
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// Settings control the simulator's execution envelope, not the game rules.
type Settings struct {
	// DefaultIterations applies to scenarios that do not set their own.
	DefaultIterations int
	// TurnCap bounds each combat; a combat still active past it counts as
	// stalled.
	TurnCap int
	// Parallelism caps concurrent combats; zero means GOMAXPROCS.
	Parallelism int
}

// DefaultSettings returns the stock execution envelope.
func DefaultSettings() Settings {
	return Settings{
		DefaultIterations: 500,
		TurnCap:           50,
	}
}

// Simulator runs scenarios through the real engine and AI and reduces them
// to a Summary.
type Simulator struct {
	settings   Settings
	tuning     combat.Tuning
	thresholds Thresholds
	logger     *zap.Logger
}

// NewSimulator validates the rule set and thresholds and fills in settings
// defaults. A nil logger is replaced with a no-op one.
func NewSimulator(settings Settings, tuning combat.Tuning, th Thresholds, logger *zap.Logger) (*Simulator, error) {
	if err := tuning.Validate(); err != nil {
		return nil, fmt.Errorf("balance.NewSimulator: %w", err)
	}
	if err := th.Validate(); err != nil {
		return nil, fmt.Errorf("balance.NewSimulator: %w", err)
	}
	if settings.DefaultIterations < 1 {
		settings.DefaultIterations = DefaultSettings().DefaultIterations
	}
	if settings.TurnCap < 1 {
		settings.TurnCap = DefaultSettings().TurnCap
	}
	if settings.Parallelism < 1 {
		settings.Parallelism = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		settings:   settings,
		tuning:     tuning,
		thresholds: th,
		logger:     logger,
	}, nil
}

// RunScenario runs every iteration of one scenario in parallel and
// aggregates the results. Iteration i uses seed + i, so a fixed base seed
// reproduces the whole scenario regardless of parallelism.
func (sim *Simulator) RunScenario(sc Scenario, seed int64) (ScenarioResult, error) {
	if err := sc.Validate(); err != nil {
		return ScenarioResult{}, err
	}
	iterations := sc.Iterations
	if iterations == 0 {
		iterations = sim.settings.DefaultIterations
	}

	stats := make([]CombatStats, iterations)
	var group errgroup.Group
	group.SetLimit(sim.settings.Parallelism)
	for i := 0; i < iterations; i++ {
		i := i
		group.Go(func() error {
			cs, err := RunCombat(sc, seed+int64(i), sim.tuning, sim.settings.TurnCap)
			if err != nil {
				return err
			}
			stats[i] = cs
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return ScenarioResult{}, err
	}
	return Aggregate(sc, stats), nil
}

// Run executes every scenario in order and summarizes the results,
// including warning evaluation and the progression markers.
func (sim *Simulator) Run(scenarios []Scenario, seed int64) (Summary, error) {
	if len(scenarios) == 0 {
		return Summary{}, fmt.Errorf("balance: no scenarios to run")
	}
	results := make([]ScenarioResult, 0, len(scenarios))
	for _, sc := range scenarios {
		started := time.Now()
		r, err := sim.RunScenario(sc, seed)
		if err != nil {
			return Summary{}, err
		}
		sim.logger.Info("scenario complete",
			zap.String("scenario", sc.Name),
			zap.Int("iterations", r.Iterations),
			zap.Float64("win_rate", r.WinRate),
			zap.Float64("avg_turns", r.AvgTurns),
			zap.Int("stalls", r.Stalls),
			zap.Duration("elapsed", time.Since(started)),
		)
		results = append(results, r)
	}
	return Summarize(results, sim.thresholds), nil
}
