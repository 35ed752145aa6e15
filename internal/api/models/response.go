package models

// SimulationResponse represents the response from a strategy run
type SimulationResponse struct {
	ID       string            `json:"id,omitempty"`
	Status   string            `json:"status"`
	Strategy string            `json:"strategy"`
	Summary  SimulationSummary `json:"summary"`
	Ledger   any               `json:"ledger,omitempty"`
}

// SimulationSummary contains the strategy metrics
type SimulationSummary struct {
	ROI          float64 `json:"roi"`
	APY          float64 `json:"apy"`
	Periods      int     `json:"periods"`
	FinalBalance float64 `json:"final_balance"`
	FinalValue   float64 `json:"final_value"`
}

// StakingLedgerRow represents one step in a staking ledger
type StakingLedgerRow struct {
	Index   int     `json:"index"`
	Balance float64 `json:"balance"`
	Value   float64 `json:"value"`
}

// BondingLedgerRow represents one step in a bonding ledger
type BondingLedgerRow struct {
	Index     int     `json:"index"`
	Bonded    float64 `json:"bonded"`
	NotStaked float64 `json:"notstaked"`
	Staked    float64 `json:"staked"`
	Balance   float64 `json:"balance"`
	Value     float64 `json:"value"`
}

// EpochsResponse represents the response from an epoch driver run
type EpochsResponse struct {
	ID     string     `json:"id,omitempty"`
	Status string     `json:"status"`
	Epochs []EpochRow `json:"epochs"`
	Final  Protocol   `json:"final"`
}

// EpochRow is one settled epoch. Runway is null when it is undefined (no rebase paid).
type EpochRow struct {
	Epoch     int      `json:"epoch"`
	Price     float64  `json:"price"`
	ROI       float64  `json:"roi"`
	APY       float64  `json:"apy"`
	Runway    *float64 `json:"runway"`
	Rewards   float64  `json:"rewards"`
	Treasury  float64  `json:"treasury"`
	Supply    float64  `json:"supply"`
	Index     float64  `json:"index"`
	MarketCap float64  `json:"market_cap"`
	Dashboard string   `json:"dashboard"`
}

// Protocol is a snapshot of the protocol totals
type Protocol struct {
	Index    float64 `json:"index"`
	Treasury float64 `json:"treasury"`
	Supply   float64 `json:"supply"`
}

// CompareResponse represents the response from a comparison
type CompareResponse struct {
	Rankings []Ranking `json:"rankings"`
}

// Ranking represents one ranked variation
type Ranking struct {
	Rank       int     `json:"rank"`
	Name       string  `json:"name"`
	Strategy   string  `json:"strategy"`
	ROI        float64 `json:"roi"`
	APY        float64 `json:"apy"`
	Periods    int     `json:"periods"`
	FinalValue float64 `json:"final_value"`
}

// StrategyInfo represents information about a strategy
type StrategyInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes a strategy parameter
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "float", "int", "string", "bool[]"
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// ScenarioInfo represents information about a scenario preset
type ScenarioInfo struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	File     string   `json:"file"`
	Sections []string `json:"sections"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
