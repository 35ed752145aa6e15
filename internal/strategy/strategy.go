package strategy

// Outcome is the strategy-agnostic summary used for comparison and ranking.
type Outcome struct {
	Strategy   string
	ROI        float64
	APY        float64
	Periods    int
	FinalValue float64
}

// Strategy is a fully parameterized run that can be evaluated on demand.
type Strategy interface {
	Name() string
	Evaluate() (Outcome, error)
}
