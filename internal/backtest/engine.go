package backtest

// Fold runs a ledger: it applies transition to each input in order and returns every
// state along the way. The first element is initial, element i is
// transition(result[i-1], inputs[i-1]), so the result always has len(inputs)+1 rows.
//
// transition must be pure; Fold may be replayed any number of times with the same outcome.
func Fold[S, I any](initial S, inputs []I, transition func(S, I) S) []S {
	ledger := make([]S, 0, len(inputs)+1)
	ledger = append(ledger, initial)

	cur := initial
	for _, in := range inputs {
		cur = transition(cur, in)
		ledger = append(ledger, cur)
	}
	return ledger
}

// Repeat returns n copies of v, the constant input series used when price is held flat.
func Repeat[I any](v I, n int) []I {
	if n <= 0 {
		return []I{}
	}
	out := make([]I, n)
	for i := range out {
		out[i] = v
	}
	return out
}
