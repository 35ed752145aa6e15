package strategy

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"rebase-sim/internal/model"
)

// AlwaysRestake restakes every claim as soon as it vests.
func AlwaysRestake(n int) []bool { return fill(n, true) }

// NeverRestake leaves every claim unstaked.
func NeverRestake(n int) []bool { return fill(n, false) }

// RestakeEvery restakes on every k-th step (steps k, 2k, ...), letting claims pile up
// in between. k == 1 is AlwaysRestake.
func RestakeEvery(n, k int) ([]bool, error) {
	if k <= 0 {
		return nil, eris.Wrapf(model.ErrConfiguration, "restake interval must be > 0, got %d", k)
	}
	out := fill(n, false)
	for i := k - 1; i < n; i += k {
		out[i] = true
	}
	return out, nil
}

// ParseRestakePattern reads a compact schedule such as "TTFT" or "1,1,0,1".
// Accepted symbols: T/Y/1 for restake, F/N/0 for hold; spaces and commas are ignored.
func ParseRestakePattern(s string) ([]bool, error) {
	out := make([]bool, 0, len(s))
	for i, r := range strings.ToUpper(s) {
		switch r {
		case 'T', 'Y', '1':
			out = append(out, true)
		case 'F', 'N', '0':
			out = append(out, false)
		case ' ', ',', '\t':
		default:
			return nil, eris.Wrap(model.ErrConfiguration,
				fmt.Sprintf("invalid restake symbol %q at offset %d in %q", r, i, s))
		}
	}
	return out, nil
}

// FormatRestakePattern is the inverse of ParseRestakePattern using T/F.
func FormatRestakePattern(schedule []bool) string {
	var b strings.Builder
	b.Grow(len(schedule))
	for _, v := range schedule {
		if v {
			b.WriteByte('T')
		} else {
			b.WriteByte('F')
		}
	}
	return b.String()
}

func fill(n int, v bool) []bool {
	if n < 0 {
		n = 0
	}
	out := make([]bool, n)
	for i := range out {
		out[i] = v
	}
	return out
}
