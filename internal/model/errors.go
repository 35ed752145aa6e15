package model

import (
	"errors"

	"github.com/rotisserie/eris"
)

// Error kinds. Every error returned by the simulation core wraps exactly one of these;
// match with errors.Is on eris.Cause(err).
var (
	// ErrConfiguration reports invalid inputs: non-positive price/principal/supply,
	// restake schedule length mismatch and similar.
	ErrConfiguration = errors.New("configuration error")
	// ErrSequencing reports epoch calls made in the wrong order.
	ErrSequencing = errors.New("sequencing error")
	// ErrNumericDegeneracy reports a result that is undefined (division by zero,
	// log of a non-positive value, non-finite outputs).
	ErrNumericDegeneracy = errors.New("numeric degeneracy")
)

// IsConfiguration reports whether err is (or wraps) ErrConfiguration.
func IsConfiguration(err error) bool { return isKind(err, ErrConfiguration) }

// IsSequencing reports whether err is (or wraps) ErrSequencing.
func IsSequencing(err error) bool { return isKind(err, ErrSequencing) }

// IsNumericDegeneracy reports whether err is (or wraps) ErrNumericDegeneracy.
func IsNumericDegeneracy(err error) bool { return isKind(err, ErrNumericDegeneracy) }

func isKind(err, kind error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, kind) || errors.Is(eris.Cause(err), kind)
}
