// Package protocol models the treasury, supply and index of a rebase protocol across
// successive epochs. Each epoch is opened with Begin, accumulates bonds, and is settled
// by End in a single step.
package protocol

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"rebase-sim/internal/model"
)

type phase int

const (
	settled phase = iota
	open
)

func (p phase) String() string {
	if p == open {
		return "open"
	}
	return "settled"
}

// Snapshot is a read-only copy of the persistent protocol totals.
type Snapshot struct {
	Index    float64 `json:"index"`
	Treasury float64 `json:"treasury"`
	Supply   float64 `json:"supply"`
}

// Pending holds the accumulators of the currently open epoch.
type Pending struct {
	Bonded  float64 `json:"bonded"`
	Minted  float64 `json:"minted"`
	Profit  float64 `json:"profit"`
	Rebased float64 `json:"rebased"`
}

// State owns the protocol totals. It is not safe for concurrent use.
type State struct {
	index    float64
	treasury float64
	supply   float64

	phase   phase
	epoch   int
	opened  uint64 // count of Begin calls; identifies the open epoch for Epoch handles
	price   float64
	pending Pending

	sink   Sink
	logger zerolog.Logger
}

type Option func(*State)

// WithSink sets where dashboards are emitted on settlement. nil disables emission.
func WithSink(sink Sink) Option {
	return func(s *State) { s.sink = sink }
}

// WithLogger sets the logger used for per-bond and per-rebase debug events.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *State) { s.logger = logger }
}

// New creates a protocol whose treasury starts fully backing initialSupply at $1 par.
func New(initialSupply float64, opts ...Option) (*State, error) {
	if !(initialSupply > 0) || math.IsInf(initialSupply, 0) {
		return nil, eris.Wrapf(model.ErrConfiguration, "initial supply must be > 0, got %v", initialSupply)
	}
	s := &State{
		index:    1.0,
		treasury: initialSupply,
		supply:   initialSupply,
		sink:     LogSink,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *State) Index() float64    { return s.index }
func (s *State) Treasury() float64 { return s.treasury }
func (s *State) Supply() float64   { return s.supply }

// IsOpen reports whether an epoch is between Begin and End.
func (s *State) IsOpen() bool { return s.phase == open }

// Epoch returns the number of the open epoch, or of the last settled one.
func (s *State) Epoch() int { return s.epoch }

// MarketCap values the current supply at price.
func (s *State) MarketCap(price float64) float64 { return s.supply * price }

func (s *State) Snapshot() Snapshot {
	return Snapshot{Index: s.index, Treasury: s.treasury, Supply: s.supply}
}

// Pending returns the open epoch's accumulators. Outside an open epoch they are
// meaningless and an ErrSequencing error is returned instead.
func (s *State) Pending() (Pending, error) {
	if s.phase != open {
		return Pending{}, eris.Wrap(model.ErrSequencing, "no open epoch")
	}
	return s.pending, nil
}

// Begin opens epoch number at price and zeroes the accumulators.
func (s *State) Begin(epoch int, price float64) error {
	if s.phase == open {
		return eris.Wrapf(model.ErrSequencing, "epoch %d is still open, cannot begin epoch %d", s.epoch, epoch)
	}
	if !(price > 0) || math.IsInf(price, 0) {
		return eris.Wrapf(model.ErrConfiguration, "epoch price must be > 0, got %v", price)
	}
	s.phase = open
	s.opened++
	s.epoch = epoch
	s.price = price
	s.pending = Pending{}
	return nil
}

// Bond deposits assetValue ($) into the open epoch. The bonder receives
// assetValue/price tokens; the remainder is profit, which is immediately
// re-expressed as tokens for this epoch's rebase.
func (s *State) Bond(assetValue float64) error {
	if s.phase != open {
		return eris.Wrap(model.ErrSequencing, "bond called outside an open epoch")
	}
	if !(assetValue >= 0) || math.IsInf(assetValue, 0) {
		return eris.Wrapf(model.ErrConfiguration, "bond value must be >= 0, got %v", assetValue)
	}
	minted := assetValue / s.price
	profit := assetValue - minted

	s.pending.Bonded += assetValue
	s.pending.Minted += minted
	s.pending.Profit += profit
	s.pending.Rebased += profit / s.price

	s.logger.Debug().
		Int("epoch", s.epoch).
		Float64("assets", assetValue).
		Float64("minted", minted).
		Float64("profit", s.pending.Profit).
		Msg("bond")
	return nil
}

// Abort closes the open epoch without settling anything.
func (s *State) Abort() error {
	if s.phase != open {
		return eris.Wrap(model.ErrSequencing, "abort called without an open epoch")
	}
	s.phase = settled
	s.pending = Pending{}
	return nil
}

// End computes the epoch's rebase metrics and then settles treasury, supply and index
// together. If any settled figure would be undefined the epoch stays open and nothing
// is mutated.
func (s *State) End() (Settlement, error) {
	if s.phase != open {
		return Settlement{}, eris.Wrap(model.ErrSequencing, "end called without an open epoch")
	}

	p := s.pending
	roi := p.Rebased / s.supply
	growth := 1 + roi
	if !(growth > 0) {
		return Settlement{}, eris.Wrapf(model.ErrNumericDegeneracy, "epoch %d: rebase growth %v is not positive", s.epoch, growth)
	}
	apy, err := model.Finite("apy", math.Pow(growth, model.DaysPerYear)-1)
	if err != nil {
		return Settlement{}, eris.Wrapf(err, "epoch %d", s.epoch)
	}

	st := Settlement{
		Epoch:     s.epoch,
		Price:     s.price,
		ROI:       roi,
		APY:       apy,
		Rewards:   p.Rebased,
		Treasury:  s.treasury,
		MarketCap: s.MarketCap(s.price),
		Pending:   p,
	}
	treasury := s.treasury + p.Bonded
	supply := s.supply + p.Minted + p.Rebased
	index := s.index * growth
	for _, f := range []struct {
		name string
		v    float64
	}{{"treasury", treasury}, {"supply", supply}, {"index", index}} {
		if _, err := model.Finite(f.name, f.v); err != nil {
			return Settlement{}, eris.Wrapf(err, "epoch %d", s.epoch)
		}
	}

	s.treasury, s.supply, s.index = treasury, supply, index
	s.phase = settled
	s.pending = Pending{}

	st.Dashboard = Dashboard{
		Epoch:     st.Epoch,
		Treasury:  treasury,
		Supply:    supply,
		Price:     st.Price,
		Index:     index,
		MarketCap: supply * st.Price,
	}
	s.logger.Debug().
		Int("epoch", st.Epoch).
		Float64("rewards", st.Rewards).
		Float64("roi", roi).
		Float64("apy", apy).
		Msg("rebase")
	if s.sink != nil {
		s.sink(st.Dashboard)
	}
	return st, nil
}
