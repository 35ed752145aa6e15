package strategy

import (
	"rebase-sim/internal/backtest"
	"rebase-sim/internal/model"
)

// BondingInput is what a single bonding step consumes.
type BondingInput struct {
	Price   float64
	Vest    float64 // tokens moving from Bonded to NotStaked this step
	Restake bool
}

// BondingModel is the per-rebase transition of a vesting bond whose claims are
// optionally restaked.
type BondingModel struct {
	Multiple float64
	Fee      float64
}

// Step vests, claims, optionally restakes, rebases and re-marks the position.
//
// The fee is charged twice on purpose: once in tokens before the rebase (so the fee
// earns no yield that step) and once in $ on Value.
func (m BondingModel) Step(begin backtest.BondingRow, in BondingInput) backtest.BondingRow {
	end := backtest.BondingRow{
		Bonded:    begin.Bonded - in.Vest,
		NotStaked: begin.NotStaked + in.Vest,
		Staked:    begin.Staked,
	}
	if in.Restake {
		end.Staked += end.NotStaked
		end.NotStaked = 0
	}
	end.Staked = (end.Staked - m.Fee/in.Price) * m.Multiple
	end.Value = end.Balance()*in.Price - m.Fee
	return end
}

// BondingWithRestake bonds principal at the discounted bond price, vests it linearly
// over the horizon and restakes claims according to p.RestakeSchedule.
//
// The result is path dependent, so ROI is read off the final ledger row. A negative
// Staked bucket (fee larger than the position) is returned as computed.
func BondingWithRestake(p model.BondingParams) (*backtest.Result[backtest.BondingRow], error) {
	return BondingWithPrices(p, nil)
}

// BondingWithPrices is BondingWithRestake with one caller supplied price per step.
// The bond itself is always bought at p.Price.
func BondingWithPrices(p model.BondingParams, prices []float64) (*backtest.Result[backtest.BondingRow], error) {
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

	bonded := p.BondedTokens()
	var vest float64
	if n > 0 {
		vest = bonded / float64(n)
	}
	schedule := p.Schedule()
	inputs := make([]BondingInput, n)
	for i := range inputs {
		inputs[i] = BondingInput{Price: prices[i], Vest: vest, Restake: schedule[i]}
	}

	m := BondingModel{Multiple: p.Multiple(), Fee: p.Fee}
	ledger := backtest.Fold(
		backtest.BondingRow{Bonded: bonded, Value: bonded * p.Price},
		inputs,
		m.Step,
	)

	roi, err := model.Finite("roi", ledger[len(ledger)-1].Value/p.Principal-1)
	if err != nil {
		return nil, err
	}
	// A zero-step horizon only reports the bond discount; there is no holding period to annualize.
	var apy float64
	if n > 0 {
		if apy, err = model.Annualize(roi, float64(p.PeriodLen)); err != nil {
			return nil, err
		}
	}
	return &backtest.Result[backtest.BondingRow]{ROI: roi, APY: apy, Ledger: ledger}, nil
}

type BondingStrategy struct {
	Params model.BondingParams
}

func (s *BondingStrategy) Name() string { return "bonding" }

func (s *BondingStrategy) Evaluate() (Outcome, error) {
	res, err := BondingWithRestake(s.Params)
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
