package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"rebase-sim/internal/data"
	"rebase-sim/internal/model"
	"rebase-sim/internal/protocol"
	"rebase-sim/internal/strategy"
)

// Config is the on-disk scenario shape (YAML).
type Config struct {
	Name string `yaml:"name"`
	// Optional: load sections from another scenario file (e.g. examples/scenarios/*.yaml).
	// Sections set in this file override the ones loaded from BaseFile field by field.
	BaseFile string          `yaml:"base_file"`
	Staking  *StakingConfig  `yaml:"staking"`
	Bonding  *BondingConfig  `yaml:"bonding"`
	Protocol *ProtocolConfig `yaml:"protocol"`
	// Compare lists strategy variations; each one is merged onto the matching
	// top-level section before it runs.
	Compare []VariationConfig `yaml:"compare"`
}

type StakingConfig struct {
	Principal    float64 `yaml:"principal"`
	Price        float64 `yaml:"price"`
	RebaseRate   float64 `yaml:"rebase_rate"`
	PeriodLen    int     `yaml:"period_len"`
	RebasePerDay int     `yaml:"rebase_per_day"`
}

type BondingConfig struct {
	Principal    float64 `yaml:"principal"`
	Price        float64 `yaml:"price"`
	RebaseRate   float64 `yaml:"rebase_rate"`
	BondDiscount float64 `yaml:"bond_discount"`
	PeriodLen    int     `yaml:"period_len"`
	RebasePerDay int     `yaml:"rebase_per_day"`
	// Fee is a pointer so an explicit 0 can be told apart from "use the default".
	Fee *float64 `yaml:"fee"`
	// Restake is a T/F pattern ("TTF..."). Empty means restake every step.
	Restake string `yaml:"restake"`
	// RestakeEvery restakes every k-th step; ignored when Restake is set.
	RestakeEvery int `yaml:"restake_every"`
}

type ProtocolConfig struct {
	InitialSupply float64          `yaml:"initial_supply"`
	Epochs        int              `yaml:"epochs"`
	Price         float64          `yaml:"price"`
	PricesFile    string           `yaml:"prices_file"`
	BondPolicy    BondPolicyConfig `yaml:"bond_policy"`
}

type BondPolicyConfig struct {
	// Kind is one of: market_cap_fraction, treasury_fraction, fixed, none.
	Kind     string  `yaml:"kind"`
	Fraction float64 `yaml:"fraction"`
	Amount   float64 `yaml:"amount"`
}

type VariationConfig struct {
	Name    string         `yaml:"name"`
	Staking *StakingConfig `yaml:"staking"`
	Bonding *BondingConfig `yaml:"bonding"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not default or validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	return loadChain(path, map[string]bool{})
}

// loadChain follows base_file links; seen holds every file already on the chain.
func loadChain(path string, seen map[string]bool) (*Config, error) {
	key := filepath.Clean(path)
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}
	if seen[key] {
		return nil, eris.Wrapf(model.ErrConfiguration, "base_file cycle: %s is already being loaded", path)
	}
	seen[key] = true

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, eris.Wrapf(err, "parse %s", path)
	}
	if c.Protocol != nil && c.Protocol.PricesFile != "" {
		c.Protocol.PricesFile = resolvePath(path, c.Protocol.PricesFile)
	}
	if c.BaseFile == "" {
		return c, nil
	}

	basePath := resolvePath(path, c.BaseFile)
	base, err := loadChain(basePath, seen)
	if err != nil {
		return nil, eris.Wrapf(err, "load base_file %s", basePath)
	}
	return Merge(base, c), nil
}

// resolvePath prefers interpreting rel as relative to the config file directory,
// but falls back to the provided path (relative to cwd) if that doesn't exist.
func resolvePath(configPath, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	cand := filepath.Join(filepath.Dir(configPath), rel)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return rel
}

// Parse decodes a scenario document without touching the filesystem.
func Parse(raw []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ApplyDefaults fills zero horizon and fee fields with the model defaults.
// Zero-length horizons are only reachable through the Go API and CLI flags.
// Compare variations are defaulted by Strategy, after they are merged.
func (c *Config) ApplyDefaults() {
	if c.Staking != nil {
		c.Staking.applyDefaults()
	}
	if c.Bonding != nil {
		c.Bonding.applyDefaults()
	}
	if c.Protocol != nil && c.Protocol.BondPolicy.Kind == "" {
		c.Protocol.BondPolicy.Kind = "none"
	}
}

func (s *StakingConfig) applyDefaults() {
	if s.PeriodLen == 0 {
		s.PeriodLen = model.DefaultPeriodLen
	}
	if s.RebasePerDay == 0 {
		s.RebasePerDay = model.DefaultRebasePerDay
	}
}

func (b *BondingConfig) applyDefaults() {
	if b.PeriodLen == 0 {
		b.PeriodLen = model.DefaultPeriodLen
	}
	if b.RebasePerDay == 0 {
		b.RebasePerDay = model.DefaultRebasePerDay
	}
	if b.Fee == nil {
		fee := model.DefaultFee
		b.Fee = &fee
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Staking == nil && c.Bonding == nil && c.Protocol == nil && len(c.Compare) == 0 {
		return eris.Wrap(model.ErrConfiguration, "config has no staking, bonding, protocol or compare section")
	}
	if c.Staking != nil {
		if err := c.Staking.ToModelParams().Validate(); err != nil {
			return eris.Wrap(err, "staking config invalid")
		}
	}
	if c.Bonding != nil {
		p, err := c.Bonding.ToModelParams()
		if err != nil {
			return eris.Wrap(err, "bonding config invalid")
		}
		if err := p.Validate(); err != nil {
			return eris.Wrap(err, "bonding config invalid")
		}
	}
	if c.Protocol != nil {
		if err := c.Protocol.Validate(); err != nil {
			return eris.Wrap(err, "protocol config invalid")
		}
	}
	for _, v := range c.Compare {
		if _, err := c.Strategy(v); err != nil {
			return err
		}
	}
	return nil
}

func (s StakingConfig) ToModelParams() model.StakingParams {
	return model.StakingParams{
		Principal:    s.Principal,
		Price:        s.Price,
		RebaseRate:   s.RebaseRate,
		PeriodLen:    s.PeriodLen,
		RebasePerDay: s.RebasePerDay,
	}
}

func (b BondingConfig) ToModelParams() (model.BondingParams, error) {
	p := model.BondingParams{
		Principal:    b.Principal,
		Price:        b.Price,
		RebaseRate:   b.RebaseRate,
		BondDiscount: b.BondDiscount,
		PeriodLen:    b.PeriodLen,
		RebasePerDay: b.RebasePerDay,
		Fee:          model.DefaultFee,
	}
	if b.Fee != nil {
		p.Fee = *b.Fee
	}
	// the schedule below is sized by Periods
	if err := model.ValidateHorizon(p.PeriodLen, p.RebasePerDay); err != nil {
		return model.BondingParams{}, err
	}
	switch {
	case b.Restake != "":
		s, err := strategy.ParseRestakePattern(b.Restake)
		if err != nil {
			return model.BondingParams{}, err
		}
		p.RestakeSchedule = s
	case b.RestakeEvery > 0:
		s, err := strategy.RestakeEvery(p.Periods(), b.RestakeEvery)
		if err != nil {
			return model.BondingParams{}, err
		}
		p.RestakeSchedule = s
	}
	return p, nil
}

func (p ProtocolConfig) Validate() error {
	if p.InitialSupply <= 0 {
		return eris.Wrapf(model.ErrConfiguration, "initial_supply must be > 0, got %v", p.InitialSupply)
	}
	if p.Epochs < 0 || p.Epochs > model.MaxEpochs {
		return eris.Wrapf(model.ErrConfiguration, "epochs must be in [0, %d], got %d", model.MaxEpochs, p.Epochs)
	}
	if p.PricesFile == "" && p.Price <= 0 {
		return eris.Wrapf(model.ErrConfiguration, "price must be > 0 when prices_file is not set, got %v", p.Price)
	}
	_, err := p.BondPolicy.ToPolicy()
	return err
}

// PriceSource returns the constant price, or the schedule in PricesFile when set.
func (p ProtocolConfig) PriceSource() (data.PriceSource, error) {
	if p.PricesFile == "" {
		return data.ConstantPrice(p.Price), nil
	}
	series, err := data.LoadPriceSeriesJSON(p.PricesFile)
	if err != nil {
		return nil, err
	}
	if len(series) < p.Epochs {
		return nil, eris.Wrapf(model.ErrConfiguration, "prices_file has %d prices, need %d", len(series), p.Epochs)
	}
	return series, nil
}

func (b BondPolicyConfig) ToPolicy() (protocol.BondPolicy, error) {
	switch b.Kind {
	case "", "none":
		return nil, nil
	case "market_cap_fraction":
		if b.Fraction < 0 {
			return nil, eris.Wrapf(model.ErrConfiguration, "bond_policy.fraction must be >= 0, got %v", b.Fraction)
		}
		return protocol.MarketCapFraction(b.Fraction), nil
	case "treasury_fraction":
		if b.Fraction < 0 {
			return nil, eris.Wrapf(model.ErrConfiguration, "bond_policy.fraction must be >= 0, got %v", b.Fraction)
		}
		return protocol.TreasuryFraction(b.Fraction), nil
	case "fixed":
		if b.Amount < 0 {
			return nil, eris.Wrapf(model.ErrConfiguration, "bond_policy.amount must be >= 0, got %v", b.Amount)
		}
		return protocol.FixedBond(b.Amount), nil
	default:
		return nil, eris.Wrapf(model.ErrConfiguration, "unsupported bond_policy.kind: %q", b.Kind)
	}
}

// Strategy builds the strategy for a compare variation, merged onto the top-level
// section of the same kind.
func (c *Config) Strategy(v VariationConfig) (strategy.Strategy, error) {
	switch {
	case v.Staking != nil && v.Bonding != nil:
		return nil, eris.Wrapf(model.ErrConfiguration, "variation %q sets both staking and bonding", v.Name)
	case v.Staking != nil:
		s := *v.Staking
		if c.Staking != nil {
			s = MergeStaking(*c.Staking, s)
		}
		s.applyDefaults()
		p := s.ToModelParams()
		if err := p.Validate(); err != nil {
			return nil, eris.Wrapf(err, "variation %q", v.Name)
		}
		return &strategy.StakingStrategy{Params: p}, nil
	case v.Bonding != nil:
		b := *v.Bonding
		if c.Bonding != nil {
			b = MergeBonding(*c.Bonding, b)
		}
		b.applyDefaults()
		p, err := b.ToModelParams()
		if err == nil {
			err = p.Validate()
		}
		if err != nil {
			return nil, eris.Wrapf(err, "variation %q", v.Name)
		}
		return &strategy.BondingStrategy{Params: p}, nil
	default:
		return nil, eris.Wrapf(model.ErrConfiguration, "variation %q sets neither staking nor bonding", v.Name)
	}
}

// Merge overlays the sections of override onto base.
func Merge(base, override *Config) *Config {
	out := *base
	out.BaseFile = ""
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.Staking != nil {
		s := *override.Staking
		if base.Staking != nil {
			s = MergeStaking(*base.Staking, s)
		}
		out.Staking = &s
	}
	if override.Bonding != nil {
		b := *override.Bonding
		if base.Bonding != nil {
			b = MergeBonding(*base.Bonding, b)
		}
		out.Bonding = &b
	}
	if override.Protocol != nil {
		p := *override.Protocol
		if base.Protocol != nil {
			p = MergeProtocol(*base.Protocol, p)
		}
		out.Protocol = &p
	}
	if len(override.Compare) > 0 {
		out.Compare = override.Compare
	}
	return &out
}

// MergeStaking overlays non-zero fields from override onto base.
func MergeStaking(base, override StakingConfig) StakingConfig {
	out := base
	if override.Principal != 0 {
		out.Principal = override.Principal
	}
	if override.Price != 0 {
		out.Price = override.Price
	}
	if override.RebaseRate != 0 {
		out.RebaseRate = override.RebaseRate
	}
	if override.PeriodLen != 0 {
		out.PeriodLen = override.PeriodLen
	}
	if override.RebasePerDay != 0 {
		out.RebasePerDay = override.RebasePerDay
	}
	return out
}

// MergeBonding overlays non-zero fields from override onto base.
func MergeBonding(base, override BondingConfig) BondingConfig {
	out := base
	if override.Principal != 0 {
		out.Principal = override.Principal
	}
	if override.Price != 0 {
		out.Price = override.Price
	}
	if override.RebaseRate != 0 {
		out.RebaseRate = override.RebaseRate
	}
	if override.BondDiscount != 0 {
		out.BondDiscount = override.BondDiscount
	}
	if override.PeriodLen != 0 {
		out.PeriodLen = override.PeriodLen
	}
	if override.RebasePerDay != 0 {
		out.RebasePerDay = override.RebasePerDay
	}
	if override.Fee != nil {
		out.Fee = override.Fee
	}
	// A schedule only makes sense for one horizon, so an override replaces both forms.
	if override.Restake != "" || override.RestakeEvery != 0 {
		out.Restake = override.Restake
		out.RestakeEvery = override.RestakeEvery
	}
	return out
}

func MergeProtocol(base, override ProtocolConfig) ProtocolConfig {
	out := base
	if override.InitialSupply != 0 {
		out.InitialSupply = override.InitialSupply
	}
	if override.Epochs != 0 {
		out.Epochs = override.Epochs
	}
	if override.Price != 0 {
		out.Price = override.Price
	}
	if override.PricesFile != "" {
		out.PricesFile = override.PricesFile
	}
	if override.BondPolicy.Kind != "" {
		out.BondPolicy = override.BondPolicy
	}
	return out
}

// Describe is a one-line summary used in CLI output and logs.
func (c *Config) Describe() string {
	return fmt.Sprintf("staking=%t bonding=%t protocol=%t variations=%d",
		c.Staking != nil, c.Bonding != nil, c.Protocol != nil, len(c.Compare))
}
