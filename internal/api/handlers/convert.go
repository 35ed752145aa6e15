package handlers

import (
	"rebase-sim/internal/api/models"
	"rebase-sim/internal/config"
	"rebase-sim/internal/model"
	"rebase-sim/internal/protocol"
	"rebase-sim/internal/strategy"
)

func stakingParams(req models.StakingRequest) model.StakingParams {
	p := model.NewStakingParams(req.Principal, req.Price, req.RebaseRate)
	if req.PeriodLen != nil {
		p.PeriodLen = *req.PeriodLen
	}
	if req.RebasePerDay != nil {
		p.RebasePerDay = *req.RebasePerDay
	}
	return p
}

func bondingParams(req models.BondingRequest) (model.BondingParams, error) {
	p := model.NewBondingParams(req.Principal, req.Price, req.RebaseRate, req.BondDiscount)
	if req.PeriodLen != nil {
		p.PeriodLen = *req.PeriodLen
	}
	if req.RebasePerDay != nil {
		p.RebasePerDay = *req.RebasePerDay
	}
	if req.Fee != nil {
		p.Fee = *req.Fee
	}
	switch {
	case req.RestakeSchedule != nil:
		p.RestakeSchedule = req.RestakeSchedule
	case req.Restake != "":
		s, err := strategy.ParseRestakePattern(req.Restake)
		if err != nil {
			return model.BondingParams{}, err
		}
		p.RestakeSchedule = s
	}
	return p, nil
}

// stakingConfig converts a request into the scenario shape so compare requests
// can reuse the scenario merge rules.
func stakingConfig(req *models.StakingRequest) *config.StakingConfig {
	if req == nil {
		return nil
	}
	out := &config.StakingConfig{
		Principal:  req.Principal,
		Price:      req.Price,
		RebaseRate: req.RebaseRate,
	}
	if req.PeriodLen != nil {
		out.PeriodLen = *req.PeriodLen
	}
	if req.RebasePerDay != nil {
		out.RebasePerDay = *req.RebasePerDay
	}
	return out
}

func bondingConfig(req *models.BondingRequest) *config.BondingConfig {
	if req == nil {
		return nil
	}
	out := &config.BondingConfig{
		Principal:    req.Principal,
		Price:        req.Price,
		RebaseRate:   req.RebaseRate,
		BondDiscount: req.BondDiscount,
		Fee:          req.Fee,
		Restake:      req.Restake,
	}
	if req.RestakeSchedule != nil {
		out.Restake = strategy.FormatRestakePattern(req.RestakeSchedule)
	}
	if req.PeriodLen != nil {
		out.PeriodLen = *req.PeriodLen
	}
	if req.RebasePerDay != nil {
		out.RebasePerDay = *req.RebasePerDay
	}
	return out
}

func bondPolicy(req models.BondPolicy) (protocol.BondPolicy, error) {
	return config.BondPolicyConfig{
		Kind:     req.Kind,
		Fraction: req.Fraction,
		Amount:   req.Amount,
	}.ToPolicy()
}
