package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rebase-sim/internal/model"
	"rebase-sim/internal/strategy"
)

type fixedOutcome struct {
	roi float64
	err error
}

func (f fixedOutcome) Name() string { return "fixed" }

func (f fixedOutcome) Evaluate() (strategy.Outcome, error) {
	return strategy.Outcome{Strategy: "fixed", ROI: f.roi}, f.err
}

func TestRankByROI_OrderAndTies(t *testing.T) {
	ranked, err := RankByROI([]Candidate{
		{Name: "low", Strategy: fixedOutcome{roi: 0.01}},
		{Name: "tie-a", Strategy: fixedOutcome{roi: 0.05}},
		{Name: "high", Strategy: fixedOutcome{roi: 0.2}},
		{Name: "tie-b", Strategy: fixedOutcome{roi: 0.05}},
	})
	require.NoError(t, err)

	names := make([]string, 0, len(ranked))
	for _, r := range ranked {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"high", "tie-a", "tie-b", "low"}, names)
}

func TestRankByROI_Failures(t *testing.T) {
	_, err := RankByROI([]Candidate{{Name: "empty"}})
	assert.Error(t, err)

	boom := errors.New("boom")
	_, err = RankByROI([]Candidate{{Name: "bad", Strategy: fixedOutcome{err: boom}}})
	assert.ErrorIs(t, err, boom)
}

func TestRankByROI_StakingVsBonding(t *testing.T) {
	ranked, err := RankByROI([]Candidate{
		{Name: "stake", Strategy: &strategy.StakingStrategy{Params: model.NewStakingParams(10000, 8700, 0.9695)}},
		{Name: "bond", Strategy: &strategy.BondingStrategy{Params: model.NewBondingParams(10000, 8700, 0.9695, 6)}},
	})
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "stake", ranked[0].Name)
	assert.Greater(t, ranked[0].ROI, ranked[1].ROI)
}

func TestSweepRebaseRate(t *testing.T) {
	points, err := SweepRebaseRate(model.NewStakingParams(100, 1, 0), []float64{0, 0.5, 1})
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, 0.0, points[0].ROI)
	assert.Less(t, points[1].ROI, points[2].ROI)

	_, err = SweepRebaseRate(model.NewStakingParams(0, 1, 0), []float64{1})
	assert.True(t, model.IsConfiguration(err))
}

func TestBestRestakePolicy(t *testing.T) {
	best, ranked, err := BestRestakePolicy(model.NewBondingParams(10000, 8700, 0.9695, 6), 5)
	require.NoError(t, err)

	// always, never, every_2..every_5
	assert.Len(t, ranked, 6)
	assert.Equal(t, "always", best.Name)
	assert.Equal(t, "never", ranked[len(ranked)-1].Name)
}

func TestRestakeCandidates_CapsAtHorizon(t *testing.T) {
	p := model.NewBondingParams(100, 1, 1, 0)
	p.PeriodLen, p.RebasePerDay = 1, 3
	c, err := RestakeCandidates(p, 10)
	require.NoError(t, err)
	assert.Len(t, c, 4)
}
