// Package config provides Viper-based configuration loading for the
// simulator: logging, the execution envelope, warning thresholds, and the
// combat tuning overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/skirmish/internal/game/balance"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// SimulatorConfig holds the execution envelope for balance runs.
type SimulatorConfig struct {
	// Iterations applies to scenarios that do not set their own.
	Iterations int `mapstructure:"iterations"`
	// TurnCap bounds each combat; past it the combat counts as stalled.
	TurnCap int `mapstructure:"turn_cap"`
	// Parallelism caps concurrent combats; 0 means GOMAXPROCS.
	Parallelism int `mapstructure:"parallelism"`
	// Seed is the base random seed; iteration i runs on seed + i.
	Seed int64 `mapstructure:"seed"`
}

// Settings converts to the balance package's settings type.
func (s SimulatorConfig) Settings() balance.Settings {
	return balance.Settings{
		DefaultIterations: s.Iterations,
		TurnCap:           s.TurnCap,
		Parallelism:       s.Parallelism,
	}
}

// ThresholdsConfig holds the warning-rule boundaries.
type ThresholdsConfig struct {
	TooEasyWinRate      float64 `mapstructure:"too_easy_win_rate"`
	TooHardWinRate      float64 `mapstructure:"too_hard_win_rate"`
	NoRiskMissRate      float64 `mapstructure:"no_risk_miss_rate"`
	HighLevelFloor      int     `mapstructure:"high_level_floor"`
	FrustratingMissRate float64 `mapstructure:"frustrating_miss_rate"`
	MinAvgTurns         float64 `mapstructure:"min_avg_turns"`
	MaxAvgTurns         float64 `mapstructure:"max_avg_turns"`
}

// Thresholds converts to the balance package's thresholds type.
func (t ThresholdsConfig) Thresholds() balance.Thresholds {
	return balance.Thresholds{
		TooEasyWinRate:      t.TooEasyWinRate,
		TooHardWinRate:      t.TooHardWinRate,
		NoRiskMissRate:      t.NoRiskMissRate,
		HighLevelFloor:      t.HighLevelFloor,
		FrustratingMissRate: t.FrustratingMissRate,
		MinAvgTurns:         t.MinAvgTurns,
		MaxAvgTurns:         t.MaxAvgTurns,
	}
}

// CombatConfig holds the resolution-formula coefficients. Every field maps
// onto combat.Tuning; the defaults are the shipped tuning.
type CombatConfig struct {
	HitDie         int `mapstructure:"hit_die"`
	AccuracyNum    int `mapstructure:"accuracy_num"`
	AccuracyDen    int `mapstructure:"accuracy_den"`
	DefendBonus    int `mapstructure:"defend_bonus"`
	CrushingMargin int `mapstructure:"crushing_margin"`
	MarginalMargin int `mapstructure:"marginal_margin"`
	MarginalNum    int `mapstructure:"marginal_num"`
	MarginalDen    int `mapstructure:"marginal_den"`
	CrushingNum    int `mapstructure:"crushing_num"`
	CrushingDen    int `mapstructure:"crushing_den"`
	MitigationNum  int `mapstructure:"mitigation_num"`
	MitigationDen  int `mapstructure:"mitigation_den"`
	AttackCost     int `mapstructure:"attack_cost"`
	DefendCost     int `mapstructure:"defend_cost"`
}

// Tuning converts to the combat package's tuning type.
func (c CombatConfig) Tuning() combat.Tuning {
	return combat.Tuning{
		HitDie:         c.HitDie,
		AccuracyNum:    c.AccuracyNum,
		AccuracyDen:    c.AccuracyDen,
		DefendBonus:    c.DefendBonus,
		CrushingMargin: c.CrushingMargin,
		MarginalMargin: c.MarginalMargin,
		MarginalNum:    c.MarginalNum,
		MarginalDen:    c.MarginalDen,
		CrushingNum:    c.CrushingNum,
		CrushingDen:    c.CrushingDen,
		MitigationNum:  c.MitigationNum,
		MitigationDen:  c.MitigationDen,
		AttackCost:     c.AttackCost,
		DefendCost:     c.DefendCost,
	}
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig    `mapstructure:"logging"`
	Simulator SimulatorConfig  `mapstructure:"simulator"`
	Balance   ThresholdsConfig `mapstructure:"balance"`
	Combat    CombatConfig     `mapstructure:"combat"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulator(c.Simulator); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Balance.Thresholds().Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Combat.Tuning().Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateSimulator(s SimulatorConfig) error {
	var errs []string
	if s.Iterations < 1 {
		errs = append(errs, fmt.Sprintf("simulator.iterations must be >= 1, got %d", s.Iterations))
	}
	if s.TurnCap < 1 {
		errs = append(errs, fmt.Sprintf("simulator.turn_cap must be >= 1, got %d", s.TurnCap))
	}
	if s.Parallelism < 0 {
		errs = append(errs, fmt.Sprintf("simulator.parallelism must be >= 0, got %d", s.Parallelism))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// Default returns the built-in configuration: defaults plus environment
// variable overrides, with no file involved.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Default() (Config, error) {
	return LoadFromViper(newViper())
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	// Environment variable overrides with SKIRMISH_ prefix
	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	settings := balance.DefaultSettings()
	v.SetDefault("simulator.iterations", settings.DefaultIterations)
	v.SetDefault("simulator.turn_cap", settings.TurnCap)
	v.SetDefault("simulator.parallelism", 0)
	v.SetDefault("simulator.seed", 1)

	th := balance.DefaultThresholds()
	v.SetDefault("balance.too_easy_win_rate", th.TooEasyWinRate)
	v.SetDefault("balance.too_hard_win_rate", th.TooHardWinRate)
	v.SetDefault("balance.no_risk_miss_rate", th.NoRiskMissRate)
	v.SetDefault("balance.high_level_floor", th.HighLevelFloor)
	v.SetDefault("balance.frustrating_miss_rate", th.FrustratingMissRate)
	v.SetDefault("balance.min_avg_turns", th.MinAvgTurns)
	v.SetDefault("balance.max_avg_turns", th.MaxAvgTurns)

	tuning := combat.DefaultTuning()
	v.SetDefault("combat.hit_die", tuning.HitDie)
	v.SetDefault("combat.accuracy_num", tuning.AccuracyNum)
	v.SetDefault("combat.accuracy_den", tuning.AccuracyDen)
	v.SetDefault("combat.defend_bonus", tuning.DefendBonus)
	v.SetDefault("combat.crushing_margin", tuning.CrushingMargin)
	v.SetDefault("combat.marginal_margin", tuning.MarginalMargin)
	v.SetDefault("combat.marginal_num", tuning.MarginalNum)
	v.SetDefault("combat.marginal_den", tuning.MarginalDen)
	v.SetDefault("combat.crushing_num", tuning.CrushingNum)
	v.SetDefault("combat.crushing_den", tuning.CrushingDen)
	v.SetDefault("combat.mitigation_num", tuning.MitigationNum)
	v.SetDefault("combat.mitigation_den", tuning.MitigationDen)
	v.SetDefault("combat.attack_cost", tuning.AttackCost)
	v.SetDefault("combat.defend_cost", tuning.DefendCost)
}
