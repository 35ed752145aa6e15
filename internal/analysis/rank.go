package analysis

import (
	"sort"

	"github.com/rotisserie/eris"

	"rebase-sim/internal/strategy"
)

// Candidate is a named strategy entered into a comparison.
type Candidate struct {
	Name     string
	Strategy strategy.Strategy
}

type Ranked struct {
	Name string
	strategy.Outcome
}

// RankByROI evaluates every candidate and sorts descending by ROI. Ties keep input order.
// The first failing candidate aborts the comparison.
func RankByROI(candidates []Candidate) ([]Ranked, error) {
	out := make([]Ranked, 0, len(candidates))
	for _, c := range candidates {
		if c.Strategy == nil {
			return nil, eris.Errorf("candidate %q has no strategy", c.Name)
		}
		o, err := c.Strategy.Evaluate()
		if err != nil {
			return nil, eris.Wrapf(err, "candidate %q", c.Name)
		}
		out = append(out, Ranked{Name: c.Name, Outcome: o})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ROI > out[j].ROI
	})
	return out, nil
}
