package model

import (
	"math"

	"github.com/rotisserie/eris"
)

const DaysPerYear = 365

// RebaseMultiple converts a percent-per-rebase rate into a growth factor.
func RebaseMultiple(ratePct float64) float64 { return 1 + ratePct/100 }

// CompoundROI is the closed-form return of compounding multiple over n steps.
func CompoundROI(multiple float64, n int) float64 {
	return math.Pow(multiple, float64(n)) - 1
}

// Annualize scales a return realized over periodDays to a yearly figure:
// (1+roi)^(365/periodDays) - 1.
//
// A zero roi annualizes to zero for any horizon, including a zero-day one.
func Annualize(roi, periodDays float64) (float64, error) {
	if roi == 0 {
		return 0, nil
	}
	if periodDays <= 0 {
		return 0, eris.Wrapf(ErrNumericDegeneracy, "cannot annualize roi %v over %v days", roi, periodDays)
	}
	return Finite("apy", math.Pow(1+roi, DaysPerYear/periodDays)-1)
}

// Finite returns x, or an ErrNumericDegeneracy error naming the quantity if x is NaN or ±Inf.
func Finite(name string, x float64) (float64, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, eris.Wrapf(ErrNumericDegeneracy, "%s is not finite (%v)", name, x)
	}
	return x, nil
}
