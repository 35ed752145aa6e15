package data

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"rebase-sim/internal/model"
)

// PriceSource supplies the token price for a step (rebase or epoch), counted from 0.
type PriceSource interface {
	PriceAt(step int) (float64, error)
}

// ConstantPrice quotes the same price at every step.
type ConstantPrice float64

func (p ConstantPrice) PriceAt(int) (float64, error) {
	if err := model.Positive("price", float64(p)); err != nil {
		return 0, err
	}
	return float64(p), nil
}

// PriceSeries quotes prices from an explicit schedule.
type PriceSeries []float64

func (s PriceSeries) PriceAt(step int) (float64, error) {
	if step < 0 || step >= len(s) {
		return 0, eris.Wrapf(model.ErrConfiguration, "price series has %d entries, step %d out of range", len(s), step)
	}
	if err := model.Positive("price", s[step]); err != nil {
		return 0, eris.Wrapf(err, "step %d", step)
	}
	return s[step], nil
}

// Take materializes the first n prices of src.
func Take(src PriceSource, n int) ([]float64, error) {
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		px, err := src.PriceAt(i)
		if err != nil {
			return nil, err
		}
		out = append(out, px)
	}
	return out, nil
}

// priceFile matches a JSON price schedule:
//
//	{"symbol": "OHM", "prices": [500, 480.5, ...]}
type priceFile struct {
	Symbol string    `json:"symbol"`
	Prices []float64 `json:"prices"`
}

func LoadPriceSeriesJSON(path string) (PriceSeries, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f priceFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, eris.Wrapf(err, "parse price file %s", path)
	}
	if len(f.Prices) == 0 {
		return nil, eris.Wrapf(model.ErrConfiguration, "price file %s has no prices", path)
	}
	return PriceSeries(f.Prices), nil
}
