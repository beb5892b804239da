// Package balance implements the Monte Carlo balance-testing harness: it
// drives the real engine and enemy AI through many complete combats,
// aggregates statistics from the combat logs, and flags imbalance against
// tunable thresholds.
package balance

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// Scenario describes one balance experiment: a party composition and how
// many independent combats to run.
type Scenario struct {
	Name        string `yaml:"name"`
	PlayerLevel int    `yaml:"player_level"`
	AllyLevels  []int  `yaml:"ally_levels"`
	EnemyLevels []int  `yaml:"enemy_levels"`
	// EnemyArchetype applies to every enemy; empty means melee.
	EnemyArchetype combat.Archetype `yaml:"enemy_archetype"`
	// Iterations may be zero; the simulator then applies its default.
	Iterations int `yaml:"iterations"`
}

// Validate checks the scenario invariants.
//
// Postcondition: nil return guarantees a non-empty enemy roster, positive
// levels, and a recognized archetype.
func (s Scenario) Validate() error {
	if s.PlayerLevel < 1 {
		return fmt.Errorf("balance: scenario %q: player_level must be >= 1, got %d", s.Name, s.PlayerLevel)
	}
	if len(s.EnemyLevels) == 0 {
		return fmt.Errorf("balance: scenario %q: enemy_levels must not be empty", s.Name)
	}
	for _, l := range s.AllyLevels {
		if l < 1 {
			return fmt.Errorf("balance: scenario %q: ally level must be >= 1, got %d", s.Name, l)
		}
	}
	for _, l := range s.EnemyLevels {
		if l < 1 {
			return fmt.Errorf("balance: scenario %q: enemy level must be >= 1, got %d", s.Name, l)
		}
	}
	switch s.EnemyArchetype {
	case "", combat.ArchetypeMelee, combat.ArchetypeRanged:
	default:
		return fmt.Errorf("balance: scenario %q: unknown enemy_archetype %q", s.Name, s.EnemyArchetype)
	}
	if s.Iterations < 0 {
		return fmt.Errorf("balance: scenario %q: iterations must be >= 0, got %d", s.Name, s.Iterations)
	}
	return nil
}

// duel reports whether s is an equal-level one-on-one fight, the shape the
// progression summary sweeps.
func (s Scenario) duel() bool {
	return len(s.AllyLevels) == 0 &&
		len(s.EnemyLevels) == 1 &&
		s.EnemyLevels[0] == s.PlayerLevel
}

// QuickScenarios is the small smoke set: a handful of representative fights
// at low, mid, and high level.
func QuickScenarios() []Scenario {
	return []Scenario{
		{Name: "duel-l5", PlayerLevel: 5, EnemyLevels: []int{5}},
		{Name: "duel-l15", PlayerLevel: 15, EnemyLevels: []int{15}},
		{Name: "duel-l30", PlayerLevel: 30, EnemyLevels: []int{30}},
		{Name: "outnumbered-l10", PlayerLevel: 10, EnemyLevels: []int{10, 10, 10}},
		{Name: "party-l10", PlayerLevel: 10, AllyLevels: []int{10}, EnemyLevels: []int{10, 10}},
	}
}

// FullScenarios is the exhaustive set: an equal-level duel sweep (feeding
// the progression summary), outnumbering cases, uphill and downhill fights,
// and ranged opposition.
func FullScenarios() []Scenario {
	var out []Scenario
	for level := 5; level <= 50; level += 5 {
		out = append(out, Scenario{
			Name:        fmt.Sprintf("duel-l%d", level),
			PlayerLevel: level,
			EnemyLevels: []int{level},
		})
	}
	out = append(out,
		Scenario{Name: "outnumbered-l10", PlayerLevel: 10, EnemyLevels: []int{10, 10, 10}},
		Scenario{Name: "outnumbered-l25", PlayerLevel: 25, EnemyLevels: []int{25, 25}},
		Scenario{Name: "uphill-l10", PlayerLevel: 10, EnemyLevels: []int{13}},
		Scenario{Name: "downhill-l10", PlayerLevel: 10, EnemyLevels: []int{7}},
		Scenario{Name: "party-vs-ranged-l20", PlayerLevel: 20, AllyLevels: []int{20},
			EnemyLevels: []int{20, 20}, EnemyArchetype: combat.ArchetypeRanged},
		Scenario{Name: "ranged-duel-l15", PlayerLevel: 15, EnemyLevels: []int{15},
			EnemyArchetype: combat.ArchetypeRanged},
	)
	return out
}

// scenarioFile is the YAML shape of a custom scenario set.
type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// LoadScenarios reads a custom scenario set from a YAML file.
//
// Precondition: path must name a readable YAML file.
// Postcondition: every returned scenario passed Validate.
func LoadScenarios(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("balance.LoadScenarios: reading %q: %w", path, err)
	}
	var f scenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("balance.LoadScenarios: parsing %q: %w", path, err)
	}
	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("balance.LoadScenarios: %q contains no scenarios", path)
	}
	for _, s := range f.Scenarios {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Scenarios, nil
}
