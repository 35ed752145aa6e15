package protocol

import (
	"github.com/rotisserie/eris"

	"rebase-sim/internal/data"
	"rebase-sim/internal/model"
)

// BondPolicy decides how much value is bonded in an epoch.
type BondPolicy interface {
	Amount(e *Epoch) float64
}

// MarketCapFraction bonds a fixed share of the pre-settlement market cap.
type MarketCapFraction float64

func (f MarketCapFraction) Amount(e *Epoch) float64 { return e.MarketCap() * float64(f) }

// TreasuryFraction bonds a fixed share of the treasury.
type TreasuryFraction float64

func (f TreasuryFraction) Amount(e *Epoch) float64 { return e.Treasury() * float64(f) }

// FixedBond bonds the same $ amount every epoch.
type FixedBond float64

func (f FixedBond) Amount(*Epoch) float64 { return float64(f) }

// Run drives epochs 1..n: each epoch takes its price from prices, bonds the amount
// chosen by policy (nil bonds nothing), and settles. On error the returned slice holds
// every epoch that settled, including one whose bond was rejected.
func Run(s *State, prices data.PriceSource, policy BondPolicy, n int) ([]Settlement, error) {
	if n < 0 || n > model.MaxEpochs {
		return nil, eris.Wrapf(model.ErrConfiguration, "epoch count must be in [0, %d], got %d", model.MaxEpochs, n)
	}
	if prices == nil {
		return nil, eris.Wrap(model.ErrConfiguration, "price source is nil")
	}

	out := make([]Settlement, 0, n)
	for i := 0; i < n; i++ {
		price, err := prices.PriceAt(i)
		if err != nil {
			return out, eris.Wrapf(err, "epoch %d", i+1)
		}
		st, err := WithEpoch(s, i+1, price, func(e *Epoch) error {
			if policy == nil {
				return nil
			}
			return e.Bond(policy.Amount(e))
		})
		if err != nil {
			// a failed bond still settles the epoch; report it with the error
			if st.Epoch != 0 {
				out = append(out, st)
			}
			return out, err
		}
		out = append(out, st)
	}
	return out, nil
}
