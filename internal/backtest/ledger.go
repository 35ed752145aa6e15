package backtest

// StakingRow is one row of a pure compounding ledger.
type StakingRow struct {
	Balance float64 // tokens held
	Value   float64 // $ mark-to-market
}

// BondingRow is one row of a bond-with-restake ledger.
type BondingRow struct {
	Bonded    float64 // unvested tokens
	NotStaked float64 // vested, claimable, not compounding
	Staked    float64 // compounding
	Value     float64 // $ mark-to-market, net of the step fee
}

// Balance is the total token position across all buckets.
func (r BondingRow) Balance() float64 { return r.Bonded + r.NotStaked + r.Staked }

// Result bundles a strategy ledger with its summary metrics.
// ROI is the total return over the horizon relative to principal; APY annualizes it.
type Result[R any] struct {
	ROI    float64
	APY    float64
	Ledger []R
}

// Final returns the last ledger row.
func (r *Result[R]) Final() R {
	return r.Ledger[len(r.Ledger)-1]
}

// Periods is the number of steps simulated (one less than the ledger length).
func (r *Result[R]) Periods() int {
	return len(r.Ledger) - 1
}
