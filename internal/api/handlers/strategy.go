package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"rebase-sim/internal/api/models"
	"rebase-sim/internal/model"
)

// StrategyHandler handles strategy-related requests
type StrategyHandler struct{}

// NewStrategyHandler creates a new strategy handler
func NewStrategyHandler() *StrategyHandler {
	return &StrategyHandler{}
}

var horizonParams = []models.ParameterInfo{
	{
		Name:        "period_len",
		Type:        "int",
		Description: "Simulated horizon in days",
		Default:     model.DefaultPeriodLen,
	},
	{
		Name:        "rebase_per_day",
		Type:        "int",
		Description: "Rebases per day",
		Default:     model.DefaultRebasePerDay,
	},
}

// ListStrategies handles GET /api/v1/strategies
func (h *StrategyHandler) ListStrategies(c *gin.Context) {
	strategies := []models.StrategyInfo{
		{
			Name:        "staking",
			Description: "Stake principal/price tokens and compound every rebase. ROI is the closed-form compounding return.",
			Parameters: append([]models.ParameterInfo{
				{Name: "principal", Type: "float", Description: "Amount invested ($)"},
				{Name: "price", Type: "float", Description: "Token price ($)"},
				{Name: "rebase_rate", Type: "float", Description: "Growth per rebase in percent (e.g. 0.9695)"},
			}, horizonParams...),
		},
		{
			Name:        "bonding",
			Description: "Bond principal at a discount, vest linearly, and optionally restake each claim. A flat fee is charged every step.",
			Parameters: append([]models.ParameterInfo{
				{Name: "principal", Type: "float", Description: "Amount bonded ($)"},
				{Name: "price", Type: "float", Description: "Token market price ($)"},
				{Name: "rebase_rate", Type: "float", Description: "Growth per rebase in percent"},
				{Name: "bond_discount", Type: "float", Description: "Bond discount off market price in percent"},
				{Name: "restake_schedule", Type: "bool[]", Description: "Restake decision per step; defaults to always"},
				{Name: "fee", Type: "float", Description: "Flat fee per step ($)", Default: model.DefaultFee},
			}, horizonParams...),
		},
		{
			Name:        "epochs",
			Description: "Drive the protocol treasury/supply/index through successive bond-and-rebase epochs.",
			Parameters: []models.ParameterInfo{
				{Name: "initial_supply", Type: "float", Description: "Initial token supply, fully backed by the treasury"},
				{Name: "epochs", Type: "int", Description: "Number of epochs to settle"},
				{Name: "price", Type: "float", Description: "Constant token price ($)"},
				{Name: "bond_policy.kind", Type: "string", Description: "market_cap_fraction, treasury_fraction, fixed or none", Default: "none"},
			},
		},
	}

	log.Debug().Int("count", len(strategies)).Msg("listing strategies")
	c.JSON(http.StatusOK, gin.H{"strategies": strategies})
}
