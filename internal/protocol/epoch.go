package protocol

import (
	"github.com/rotisserie/eris"

	"rebase-sim/internal/model"
)

// Epoch is the handle passed to a WithEpoch callback. It only exposes what is
// valid while the epoch is open.
type Epoch struct {
	s      *State
	opened uint64
}

// live fails once the epoch this handle was issued for is no longer the open one.
func (e *Epoch) live() error {
	if !e.s.IsOpen() || e.s.opened != e.opened {
		return eris.Wrap(model.ErrSequencing, "epoch handle used after its epoch ended")
	}
	return nil
}

func (e *Epoch) Number() int    { return e.s.epoch }
func (e *Epoch) Price() float64 { return e.s.price }

// MarketCap is the pre-settlement supply valued at the epoch price.
func (e *Epoch) MarketCap() float64 { return e.s.MarketCap(e.s.price) }

// Treasury is the pre-settlement treasury; bonds made this epoch are not included.
func (e *Epoch) Treasury() float64 { return e.s.treasury }

func (e *Epoch) Bond(assetValue float64) error {
	if err := e.live(); err != nil {
		return err
	}
	return e.s.Bond(assetValue)
}

// Pending returns the accumulators so far. A handle kept past the end of its epoch
// gets ErrSequencing, like State.Pending.
func (e *Epoch) Pending() (Pending, error) {
	if err := e.live(); err != nil {
		return Pending{}, err
	}
	return e.s.Pending()
}

// WithEpoch opens an epoch, runs fn, and always closes it again.
//
// When fn returns (with or without an error) the epoch is settled with End, so
// bonds that succeeded before a failure are still accounted for; fn's error is
// returned alongside the settlement. If fn panics, or End itself fails, the epoch
// is aborted so the state is never left open.
func WithEpoch(s *State, number int, price float64, fn func(*Epoch) error) (st Settlement, err error) {
	if err := s.Begin(number, price); err != nil {
		return Settlement{}, err
	}
	defer func() {
		if s.IsOpen() {
			_ = s.Abort()
		}
	}()

	fnErr := fn(&Epoch{s: s, opened: s.opened})
	st, err = s.End()
	if err != nil {
		return Settlement{}, err
	}
	return st, fnErr
}
