package strategy

import (
	"github.com/rotisserie/eris"

	"rebase-sim/internal/backtest"
	"rebase-sim/internal/model"
)

// StakingModel is the per-rebase transition of a pure compounding position.
type StakingModel struct {
	Multiple float64
}

// Step compounds the balance by one rebase and marks it to price.
func (m StakingModel) Step(begin backtest.StakingRow, price float64) backtest.StakingRow {
	balance := begin.Balance * m.Multiple
	return backtest.StakingRow{Balance: balance, Value: balance * price}
}

// Staking compounds principal/price tokens over the horizon at a constant price.
func Staking(p model.StakingParams) (*backtest.Result[backtest.StakingRow], error) {
	return StakingWithPrices(p, nil)
}

// StakingWithPrices is Staking with one caller supplied price per rebase step.
// A nil series holds p.Price constant. Price only affects Value, so ROI stays the
// closed-form compounding return either way.
func StakingWithPrices(p model.StakingParams, prices []float64) (*backtest.Result[backtest.StakingRow], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	n := p.Periods()
	if prices == nil {
		prices = backtest.Repeat(p.Price, n)
	}
	if err := validatePrices(prices, n); err != nil {
		return nil, err
	}

	m := StakingModel{Multiple: p.Multiple()}
	ledger := backtest.Fold(
		backtest.StakingRow{Balance: p.Principal / p.Price, Value: p.Principal},
		prices,
		m.Step,
	)

	roi, err := model.Finite("roi", model.CompoundROI(m.Multiple, n))
	if err != nil {
		return nil, err
	}
	apy, err := model.Annualize(roi, float64(p.PeriodLen))
	if err != nil {
		return nil, err
	}
	return &backtest.Result[backtest.StakingRow]{ROI: roi, APY: apy, Ledger: ledger}, nil
}

type StakingStrategy struct {
	Params model.StakingParams
}

func (s *StakingStrategy) Name() string { return "staking" }

func (s *StakingStrategy) Evaluate() (Outcome, error) {
	res, err := Staking(s.Params)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Strategy:   s.Name(),
		ROI:        res.ROI,
		APY:        res.APY,
		Periods:    res.Periods(),
		FinalValue: res.Final().Value,
	}, nil
}

func validatePrices(prices []float64, n int) error {
	if len(prices) != n {
		return eris.Wrapf(model.ErrConfiguration, "price series must have %d entries, got %d", n, len(prices))
	}
	for i, px := range prices {
		if err := model.Positive("price", px); err != nil {
			return eris.Wrapf(err, "step %d", i)
		}
	}
	return nil
}
