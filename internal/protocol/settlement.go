package protocol

import (
	"math"

	"github.com/rotisserie/eris"

	"rebase-sim/internal/model"
)

// Settlement is what End reports for one epoch. Treasury and MarketCap are the
// pre-settlement figures the metrics were computed from; Dashboard carries the
// post-settlement totals.
type Settlement struct {
	Epoch     int       `json:"epoch"`
	Price     float64   `json:"price"`
	ROI       float64   `json:"roi"`
	APY       float64   `json:"apy"`
	Rewards   float64   `json:"rewards"`
	Treasury  float64   `json:"treasury"`
	MarketCap float64   `json:"market_cap"`
	Pending   Pending   `json:"pending"`
	Dashboard Dashboard `json:"dashboard"`
}

// Runway is the number of epochs the treasury can keep paying the current rebase:
// ln(treasury/marketCap + 1) / ln(1 + roi).
//
// It is undefined when the epoch paid no rebase (roi == 0), so that case is an
// ErrNumericDegeneracy error rather than +Inf.
func (s Settlement) Runway() (float64, error) {
	if s.MarketCap <= 0 {
		return 0, eris.Wrapf(model.ErrNumericDegeneracy, "epoch %d: market cap %v is not positive", s.Epoch, s.MarketCap)
	}
	num := s.Treasury/s.MarketCap + 1
	if num <= 0 {
		return 0, eris.Wrapf(model.ErrNumericDegeneracy, "epoch %d: runway log argument %v is not positive", s.Epoch, num)
	}
	den := math.Log1p(s.ROI)
	if den == 0 || math.IsNaN(den) {
		return 0, eris.Wrapf(model.ErrNumericDegeneracy, "epoch %d: runway undefined for roi %v", s.Epoch, s.ROI)
	}
	return model.Finite("runway", math.Log(num)/den)
}
