package models

// StakingRequest is the request body for POST /api/v1/simulate/staking.
// Omitted horizon fields take the model defaults (5 days, 3 rebases per day).
type StakingRequest struct {
	Principal    float64   `json:"principal" binding:"required"`
	Price        float64   `json:"price" binding:"required"`
	RebaseRate   float64   `json:"rebase_rate"`
	PeriodLen    *int      `json:"period_len,omitempty"`
	RebasePerDay *int      `json:"rebase_per_day,omitempty"`
	Prices       []float64 `json:"prices,omitempty"` // optional per-step price series
	Options      Options   `json:"options,omitempty"`
}

// BondingRequest is the request body for POST /api/v1/simulate/bonding.
// RestakeSchedule wins over Restake (a "TTF..." pattern); both empty means always restake.
type BondingRequest struct {
	Principal       float64   `json:"principal" binding:"required"`
	Price           float64   `json:"price" binding:"required"`
	RebaseRate      float64   `json:"rebase_rate"`
	BondDiscount    float64   `json:"bond_discount"`
	RestakeSchedule []bool    `json:"restake_schedule,omitempty"`
	Restake         string    `json:"restake,omitempty"`
	PeriodLen       *int      `json:"period_len,omitempty"`
	RebasePerDay    *int      `json:"rebase_per_day,omitempty"`
	Fee             *float64  `json:"fee,omitempty"`
	Prices          []float64 `json:"prices,omitempty"`
	Options         Options   `json:"options,omitempty"`
}

// EpochsRequest is the request body for POST /api/v1/simulate/epochs.
// Either Price (constant) or Prices (one per epoch) must be given.
type EpochsRequest struct {
	InitialSupply float64    `json:"initial_supply" binding:"required"`
	Epochs        int        `json:"epochs" binding:"required"`
	Price         float64    `json:"price,omitempty"`
	Prices        []float64  `json:"prices,omitempty"`
	BondPolicy    BondPolicy `json:"bond_policy,omitempty"`
}

// BondPolicy mirrors the bond_policy section of a scenario file.
type BondPolicy struct {
	Kind     string  `json:"kind"` // market_cap_fraction, treasury_fraction, fixed, none
	Fraction float64 `json:"fraction,omitempty"`
	Amount   float64 `json:"amount,omitempty"`
}

// Options contains optional simulation output settings
type Options struct {
	IncludeLedger bool `json:"include_ledger,omitempty"` // default: false
}

// CompareRequest represents a request to rank several strategy variations.
// Each variation is merged onto the base section of the same kind.
type CompareRequest struct {
	Staking    *StakingRequest `json:"staking,omitempty"`
	Bonding    *BondingRequest `json:"bonding,omitempty"`
	Variations []Variation     `json:"variations" binding:"required"`
}

// Variation defines a variation to test
type Variation struct {
	Name    string          `json:"name" binding:"required"`
	Staking *StakingRequest `json:"staking,omitempty"`
	Bonding *BondingRequest `json:"bonding,omitempty"`
}

// RestakeRequest asks for the best restake policy of a bonding run.
type RestakeRequest struct {
	Bonding     BondingRequest `json:"bonding" binding:"required"`
	MaxInterval int            `json:"max_interval,omitempty"` // default: 5
}
