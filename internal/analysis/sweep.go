package analysis

import (
	"fmt"

	"rebase-sim/internal/model"
	"rebase-sim/internal/strategy"
)

// SweepPoint is the staking outcome at one rebase rate.
type SweepPoint struct {
	RebaseRate float64
	ROI        float64
	APY        float64
}

// SweepRebaseRate re-runs base at each rate, in the order given.
func SweepRebaseRate(base model.StakingParams, rates []float64) ([]SweepPoint, error) {
	out := make([]SweepPoint, 0, len(rates))
	for _, r := range rates {
		p := base
		p.RebaseRate = r
		res, err := strategy.Staking(p)
		if err != nil {
			return nil, err
		}
		out = append(out, SweepPoint{RebaseRate: r, ROI: res.ROI, APY: res.APY})
	}
	return out, nil
}

// RestakeCandidates builds the standard restake policies for base: always, never,
// and restaking every k steps for k in [2, maxInterval].
func RestakeCandidates(base model.BondingParams, maxInterval int) ([]Candidate, error) {
	if err := model.ValidateHorizon(base.PeriodLen, base.RebasePerDay); err != nil {
		return nil, err
	}
	n := base.Periods()
	withSchedule := func(s []bool) *strategy.BondingStrategy {
		p := base
		p.RestakeSchedule = s
		return &strategy.BondingStrategy{Params: p}
	}

	out := []Candidate{
		{Name: "always", Strategy: withSchedule(strategy.AlwaysRestake(n))},
		{Name: "never", Strategy: withSchedule(strategy.NeverRestake(n))},
	}
	for k := 2; k <= maxInterval && k <= n; k++ {
		s, err := strategy.RestakeEvery(n, k)
		if err != nil {
			return nil, err
		}
		out = append(out, Candidate{Name: fmt.Sprintf("every_%d", k), Strategy: withSchedule(s)})
	}
	return out, nil
}

// BestRestakePolicy ranks the standard restake policies for base and returns the
// winner followed by the full ranking.
func BestRestakePolicy(base model.BondingParams, maxInterval int) (Ranked, []Ranked, error) {
	candidates, err := RestakeCandidates(base, maxInterval)
	if err != nil {
		return Ranked{}, nil, err
	}
	ranked, err := RankByROI(candidates)
	if err != nil {
		return Ranked{}, nil, err
	}
	return ranked[0], ranked, nil
}
