package model

import (
	"math"

	"github.com/rotisserie/eris"
)

const (
	DefaultPeriodLen    = 5
	DefaultRebasePerDay = 3
	DefaultFee          = 0.2

	// MaxSteps caps PeriodLen*RebasePerDay; every step is a ledger row held in memory.
	MaxSteps = 1 << 20
	// MaxEpochs caps the number of protocol epochs driven in one run.
	MaxEpochs = 100_000
)

// StakingParams defines a pure compounding run (no bonding).
// Units:
// - Principal: $ invested at the start
// - Price: $ per token, held constant unless a price series is supplied
// - RebaseRate: percent growth per rebase (0.9695 means +0.9695%)
// - PeriodLen: days simulated
// - RebasePerDay: rebases per day
type StakingParams struct {
	Principal    float64
	Price        float64
	RebaseRate   float64
	PeriodLen    int
	RebasePerDay int
}

// NewStakingParams returns params with the default 5 day horizon and 3 rebases per day.
func NewStakingParams(principal, price, rebaseRate float64) StakingParams {
	return StakingParams{
		Principal:    principal,
		Price:        price,
		RebaseRate:   rebaseRate,
		PeriodLen:    DefaultPeriodLen,
		RebasePerDay: DefaultRebasePerDay,
	}
}

// Periods is the total number of rebase steps in the horizon.
func (p StakingParams) Periods() int { return p.PeriodLen * p.RebasePerDay }

// Multiple is the growth factor applied by a single rebase.
func (p StakingParams) Multiple() float64 { return RebaseMultiple(p.RebaseRate) }

func (p StakingParams) Validate() error {
	if err := Positive("principal", p.Principal); err != nil {
		return err
	}
	if err := Positive("price", p.Price); err != nil {
		return err
	}
	if err := finiteInput("rebase rate", p.RebaseRate); err != nil {
		return err
	}
	return ValidateHorizon(p.PeriodLen, p.RebasePerDay)
}

// BondingParams defines a bond-then-vest run with an optional restake schedule.
// BondDiscount is the percent discount of the bond price off the market price.
// Fee is a flat $ amount charged once per step.
// A nil RestakeSchedule means "restake on every step".
type BondingParams struct {
	Principal       float64
	Price           float64
	RebaseRate      float64
	BondDiscount    float64
	RestakeSchedule []bool
	PeriodLen       int
	RebasePerDay    int
	Fee             float64
}

// NewBondingParams returns params with the default horizon, fee and an all-restake schedule.
func NewBondingParams(principal, price, rebaseRate, bondDiscount float64) BondingParams {
	return BondingParams{
		Principal:    principal,
		Price:        price,
		RebaseRate:   rebaseRate,
		BondDiscount: bondDiscount,
		PeriodLen:    DefaultPeriodLen,
		RebasePerDay: DefaultRebasePerDay,
		Fee:          DefaultFee,
	}
}

func (p BondingParams) Periods() int { return p.PeriodLen * p.RebasePerDay }

func (p BondingParams) Multiple() float64 { return RebaseMultiple(p.RebaseRate) }

// BondPrice is the discounted price paid per bonded token.
func (p BondingParams) BondPrice() float64 { return p.Price / (1 + p.BondDiscount/100) }

// BondedTokens is the number of tokens obtained for Principal at BondPrice.
func (p BondingParams) BondedTokens() float64 { return p.Principal / p.BondPrice() }

// Schedule returns the restake schedule, expanding nil into all-true.
func (p BondingParams) Schedule() []bool {
	if p.RestakeSchedule != nil {
		return p.RestakeSchedule
	}
	out := make([]bool, p.Periods())
	for i := range out {
		out[i] = true
	}
	return out
}

func (p BondingParams) Validate() error {
	if err := Positive("principal", p.Principal); err != nil {
		return err
	}
	if err := Positive("price", p.Price); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		v    float64
	}{{"rebase rate", p.RebaseRate}, {"bond discount", p.BondDiscount}, {"fee", p.Fee}} {
		if err := finiteInput(f.name, f.v); err != nil {
			return err
		}
	}
	if p.BondDiscount <= -100 {
		return eris.Wrapf(ErrConfiguration, "bond discount must be > -100%%, got %v", p.BondDiscount)
	}
	if err := ValidateHorizon(p.PeriodLen, p.RebasePerDay); err != nil {
		return err
	}
	if p.RestakeSchedule != nil && len(p.RestakeSchedule) != p.Periods() {
		return eris.Wrapf(ErrConfiguration,
			"restake schedule must match period length: got %d entries, want %d",
			len(p.RestakeSchedule), p.Periods())
	}
	return nil
}

// ValidateHorizon rejects negative horizons and horizons longer than MaxSteps.
// It must pass before Periods is used to size anything.
func ValidateHorizon(periodLen, rebasePerDay int) error {
	if periodLen < 0 {
		return eris.Wrapf(ErrConfiguration, "period length must be >= 0, got %d", periodLen)
	}
	if rebasePerDay < 0 {
		return eris.Wrapf(ErrConfiguration, "rebases per day must be >= 0, got %d", rebasePerDay)
	}
	// division form so the product itself can never overflow
	if periodLen > 0 && rebasePerDay > MaxSteps/periodLen {
		return eris.Wrapf(ErrConfiguration,
			"horizon of %d days x %d rebases exceeds %d steps", periodLen, rebasePerDay, MaxSteps)
	}
	return nil
}

// Positive rejects x unless it is a finite number > 0. NaN fails too.
func Positive(name string, x float64) error {
	if !(x > 0) || math.IsInf(x, 0) {
		return eris.Wrapf(ErrConfiguration, "%s must be > 0, got %v", name, x)
	}
	return nil
}

func finiteInput(name string, x float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return eris.Wrapf(ErrConfiguration, "%s must be finite, got %v", name, x)
	}
	return nil
}
