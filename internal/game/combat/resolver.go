package combat

import "github.com/cory-johannsen/skirmish/internal/game/dice"

// Tuning holds every numeric coefficient of the resolution formulas. The
// exact constants are policy, not contract: the balance simulator exists to
// pressure-test them, and they can be overridden through configuration.
//
// Hit model: effective attack = d(HitDie) + damage*AccuracyNum/AccuracyDen,
// compared against defense (+DefendBonus while defending). A non-negative
// margin hits; margin >= CrushingMargin is crushing, margin <=
// MarginalMargin is marginal. Raw damage is the damage stat scaled by the
// quality multiplier; armor mitigation is armor*MitigationNum/MitigationDen.
type Tuning struct {
	HitDie         int
	AccuracyNum    int
	AccuracyDen    int
	DefendBonus    int
	CrushingMargin int
	MarginalMargin int
	MarginalNum    int
	MarginalDen    int
	CrushingNum    int
	CrushingDen    int
	MitigationNum  int
	MitigationDen  int
	AttackCost     int
	DefendCost     int
}

// DefaultTuning returns the shipped coefficients. At equal level they give
// an 80% hit chance, a 20% crushing rate, and a 15% marginal rate.
func DefaultTuning() Tuning {
	return Tuning{
		HitDie:         20,
		AccuracyNum:    2,
		AccuracyDen:    3,
		DefendBonus:    4,
		CrushingMargin: 12,
		MarginalMargin: 2,
		MarginalNum:    1,
		MarginalDen:    2,
		CrushingNum:    7,
		CrushingDen:    4,
		MitigationNum:  1,
		MitigationDen:  1,
		AttackCost:     3,
		DefendCost:     2,
	}
}

// Validate checks that the tuning cannot divide by zero or produce negative
// costs.
//
// Postcondition: nil return guarantees all denominators are >= 1, HitDie >=
// 2, and AP costs are >= 0.
func (t Tuning) Validate() error {
	switch {
	case t.HitDie < 2:
		return errTuning("hit_die must be >= 2")
	case t.AccuracyDen < 1, t.MarginalDen < 1, t.CrushingDen < 1, t.MitigationDen < 1:
		return errTuning("denominators must be >= 1")
	case t.AttackCost < 0, t.DefendCost < 0:
		return errTuning("action costs must be >= 0")
	}
	return nil
}

type tuningError string

func errTuning(msg string) error    { return tuningError(msg) }
func (e tuningError) Error() string { return "combat: invalid tuning: " + string(e) }

// accuracy returns the attacker's flat hit bonus, derived from its damage
// stat so accuracy and defense grow at the same per-level rate.
func (t Tuning) accuracy(attacker *Combatant) int {
	return attacker.Damage * t.AccuracyNum / t.AccuracyDen
}

// mitigation returns how much raw damage the defender's armor can soak.
// Monotonic in armor: more armor never soaks less.
func (t Tuning) mitigation(defender *Combatant) int {
	m := defender.Armor * t.MitigationNum / t.MitigationDen
	if m < 0 {
		return 0
	}
	return m
}

// qualityFor derives the hit quality from the attack margin. Quality is a
// function of the roll and the stat delta — never re-rolled.
func (t Tuning) qualityFor(margin int) HitQuality {
	switch {
	case margin < 0:
		return QualityMiss
	case margin >= t.CrushingMargin:
		return QualityCrushing
	case margin <= t.MarginalMargin:
		return QualityMarginal
	default:
		return QualityNormal
	}
}

// resolveAttack rolls one attack of attacker against defender and returns
// the fully populated result. It mutates nothing; the reducer applies the
// damage.
//
// Precondition: attacker, defender, and src must be non-nil.
// Postcondition: on a hit, 0 <= Damage <= RawDamage; on a miss, all damage
// fields are zero.
func resolveAttack(attacker, defender *Combatant, src dice.Source, t Tuning) Result {
	roll := src.Intn(t.HitDie) + 1
	total := roll + t.accuracy(attacker)
	defense := defender.Defense
	if defender.IsDefending {
		defense += t.DefendBonus
	}
	margin := total - defense
	quality := t.qualityFor(margin)

	r := Result{
		Roll:        roll,
		AttackTotal: total,
		Quality:     quality,
	}
	if quality == QualityMiss {
		return r
	}
	r.Hit = true

	raw := attacker.Damage
	switch quality {
	case QualityMarginal:
		raw = raw * t.MarginalNum / t.MarginalDen
	case QualityCrushing:
		raw = raw * t.CrushingNum / t.CrushingDen
	}
	mitigated := t.mitigation(defender)
	if mitigated > raw {
		mitigated = raw
	}
	r.RawDamage = raw
	r.Mitigated = mitigated
	r.Damage = raw - mitigated
	r.ArmorSoak = mitigated > 0
	return r
}
