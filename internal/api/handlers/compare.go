package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"

	"rebase-sim/internal/analysis"
	"rebase-sim/internal/api/models"
	"rebase-sim/internal/config"
	"rebase-sim/internal/model"
)

const defaultRestakeInterval = 5

// CompareHandler handles strategy comparison requests
type CompareHandler struct{}

// NewCompareHandler creates a new compare handler
func NewCompareHandler() *CompareHandler {
	return &CompareHandler{}
}

// Compare handles POST /api/v1/compare
func (h *CompareHandler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}
	if len(req.Variations) == 0 {
		writeError(c, eris.Wrap(model.ErrConfiguration, "at least one variation is required"))
		return
	}

	cfg := &config.Config{
		Staking: stakingConfig(req.Staking),
		Bonding: bondingConfig(req.Bonding),
	}
	for _, v := range req.Variations {
		cfg.Compare = append(cfg.Compare, config.VariationConfig{
			Name:    v.Name,
			Staking: stakingConfig(v.Staking),
			Bonding: bondingConfig(v.Bonding),
		})
	}
	cfg.ApplyDefaults()

	candidates := make([]analysis.Candidate, 0, len(cfg.Compare))
	for _, v := range cfg.Compare {
		s, err := cfg.Strategy(v)
		if err != nil {
			writeError(c, err)
			return
		}
		candidates = append(candidates, analysis.Candidate{Name: v.Name, Strategy: s})
	}

	ranked, err := analysis.RankByROI(candidates)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CompareResponse{Rankings: rankings(ranked)})
}

// BestRestake handles POST /api/v1/compare/restake
func (h *CompareHandler) BestRestake(c *gin.Context) {
	var req models.RestakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}
	maxInterval := req.MaxInterval
	if maxInterval <= 0 {
		maxInterval = defaultRestakeInterval
	}

	// The candidates supply their own schedules.
	req.Bonding.RestakeSchedule = nil
	req.Bonding.Restake = ""
	p, err := bondingParams(req.Bonding)
	if err != nil {
		writeError(c, err)
		return
	}
	best, ranked, err := analysis.BestRestakePolicy(p, maxInterval)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"best":     best.Name,
		"rankings": rankings(ranked),
	})
}

func rankings(ranked []analysis.Ranked) []models.Ranking {
	out := make([]models.Ranking, 0, len(ranked))
	for i, r := range ranked {
		out = append(out, models.Ranking{
			Rank:       i + 1,
			Name:       r.Name,
			Strategy:   r.Strategy,
			ROI:        r.ROI,
			APY:        r.APY,
			Periods:    r.Periods,
			FinalValue: r.FinalValue,
		})
	}
	return out
}
