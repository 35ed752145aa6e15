package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rebase-sim/internal/data"
	"rebase-sim/internal/model"
)

func TestWithEpoch_Settles(t *testing.T) {
	s := newState(t, 1000, nil)
	st, err := WithEpoch(s, 1, 2, func(e *Epoch) error {
		assert.Equal(t, 1, e.Number())
		assert.Equal(t, 2.0, e.Price())
		assert.Equal(t, 2000.0, e.MarketCap())
		assert.Equal(t, 1000.0, e.Treasury())
		return e.Bond(100)
	})
	require.NoError(t, err)
	assert.False(t, s.IsOpen())
	assert.InDelta(t, 100, st.Pending.Bonded, 1e-12)
	assert.InDelta(t, 1100, s.Treasury(), 1e-12)
}

func TestWithEpoch_CallbackErrorStillSettles(t *testing.T) {
	s := newState(t, 1000, nil)
	boom := errors.New("boom")
	st, err := WithEpoch(s, 1, 2, func(e *Epoch) error {
		require.NoError(t, e.Bond(100))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, s.IsOpen())
	assert.Equal(t, 1, st.Epoch)
	assert.InDelta(t, 1100, s.Treasury(), 1e-12)
}

func TestWithEpoch_PanicAborts(t *testing.T) {
	s := newState(t, 1000, nil)
	before := s.Snapshot()
	assert.Panics(t, func() {
		_, _ = WithEpoch(s, 1, 2, func(e *Epoch) error {
			_ = e.Bond(100)
			panic("callback failed")
		})
	})
	assert.False(t, s.IsOpen())
	assert.Equal(t, before, s.Snapshot())
}

func TestWithEpoch_BeginFails(t *testing.T) {
	s := newState(t, 1000, nil)
	called := false
	_, err := WithEpoch(s, 1, 0, func(*Epoch) error {
		called = true
		return nil
	})
	assert.True(t, model.IsConfiguration(err))
	assert.False(t, called)
}

func TestRun_ReferenceLoop(t *testing.T) {
	var dash []Dashboard
	s := newState(t, 1_000_000, &dash)
	settlements, err := Run(s, data.ConstantPrice(500), MarketCapFraction(0.1), 30)
	require.NoError(t, err)
	require.Len(t, settlements, 30)
	require.Len(t, dash, 30)

	for i, st := range settlements {
		assert.Equal(t, i+1, st.Epoch)
		// bonding a fixed share of market cap at a constant price gives a constant roi
		assert.InDelta(t, 0.0998, st.ROI, 1e-9)
	}
	assert.Equal(t, s.Snapshot().Index, dash[29].Index)
}

func TestRun_Policies(t *testing.T) {
	s := newState(t, 1000, nil)
	settlements, err := Run(s, data.ConstantPrice(2), FixedBond(10), 3)
	require.NoError(t, err)
	for _, st := range settlements {
		assert.InDelta(t, 10, st.Pending.Bonded, 1e-12)
	}

	s = newState(t, 1000, nil)
	settlements, err = Run(s, data.ConstantPrice(2), nil, 2)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, s.Supply())
	assert.Len(t, settlements, 2)
}

func TestRun_Errors(t *testing.T) {
	s := newState(t, 1000, nil)
	_, err := Run(s, data.ConstantPrice(2), nil, -1)
	assert.True(t, model.IsConfiguration(err))

	_, err = Run(s, nil, nil, 1)
	assert.True(t, model.IsConfiguration(err))

	settlements, err := Run(s, data.PriceSeries{2, 3}, nil, 3)
	assert.True(t, model.IsConfiguration(err))
	assert.Len(t, settlements, 2, "epochs settled before the failure are returned")
	assert.False(t, s.IsOpen())
}

// bondOnEpoch bonds amount in epoch `on` and nothing otherwise.
type bondOnEpoch struct {
	on     int
	amount float64
}

func (b bondOnEpoch) Amount(e *Epoch) float64 {
	if e.Number() == b.on {
		return b.amount
	}
	return 0
}

func TestRun_RejectedBondStillReportsSettledEpoch(t *testing.T) {
	s := newState(t, 1000, nil)
	settlements, err := Run(s, data.ConstantPrice(2), bondOnEpoch{on: 2, amount: -1}, 3)
	assert.True(t, model.IsConfiguration(err))
	require.Len(t, settlements, 2, "epoch 2 settled and must be reported")
	assert.Equal(t, 2, settlements[1].Epoch)
	assert.Equal(t, 2, s.Epoch())
	assert.False(t, s.IsOpen())
}

func TestRun_TooManyEpochs(t *testing.T) {
	s := newState(t, 1000, nil)
	_, err := Run(s, data.ConstantPrice(2), nil, model.MaxEpochs+1)
	assert.True(t, model.IsConfiguration(err))
	assert.Zero(t, s.Epoch())
}

func TestEpochHandle_StaleAfterEnd(t *testing.T) {
	s := newState(t, 1000, nil)
	var kept *Epoch
	_, err := WithEpoch(s, 1, 2, func(e *Epoch) error {
		kept = e
		p, err := e.Pending()
		require.NoError(t, err)
		assert.Equal(t, Pending{}, p)
		return e.Bond(10)
	})
	require.NoError(t, err)

	_, err = kept.Pending()
	assert.True(t, model.IsSequencing(err))
	assert.True(t, model.IsSequencing(kept.Bond(1)))

	// a later epoch is not reachable through the old handle
	require.NoError(t, s.Begin(2, 2))
	_, err = kept.Pending()
	assert.True(t, model.IsSequencing(err))
	assert.True(t, model.IsSequencing(kept.Bond(1)))
	p, err := s.Pending()
	require.NoError(t, err)
	assert.Equal(t, Pending{}, p)
}
