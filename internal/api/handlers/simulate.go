package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"rebase-sim/internal/api/models"
	"rebase-sim/internal/backtest"
	"rebase-sim/internal/data"
	"rebase-sim/internal/metrics"
	"rebase-sim/internal/protocol"
	"rebase-sim/internal/strategy"
)

const (
	kindStaking = "staking"
	kindBonding = "bonding"
	kindEpochs  = "epochs"
)

// SimulationHandler runs strategies and epoch drivers and keeps their results
// addressable by id.
type SimulationHandler struct {
	cache   *data.ResultCache
	metrics *metrics.Collectors
}

// NewSimulationHandler creates a new simulation handler. metrics may be nil.
func NewSimulationHandler(cache *data.ResultCache, m *metrics.Collectors) *SimulationHandler {
	if cache == nil {
		cache = data.NewResultCache(data.DefaultCacheTTL)
	}
	return &SimulationHandler{cache: cache, metrics: m}
}

// RunStaking handles POST /api/v1/simulate/staking
func (h *SimulationHandler) RunStaking(c *gin.Context) {
	var req models.StakingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	p := stakingParams(req)
	var prices []float64
	if len(req.Prices) > 0 {
		prices = req.Prices
	}
	res, err := strategy.StakingWithPrices(p, prices)
	if err != nil {
		h.fail(c, kindStaking, err)
		return
	}
	h.observe(kindStaking, res.ROI)

	id := h.cache.Put(kindStaking, res)
	final := res.Final()
	resp := models.SimulationResponse{
		ID:       id,
		Status:   "completed",
		Strategy: kindStaking,
		Summary: models.SimulationSummary{
			ROI:          res.ROI,
			APY:          res.APY,
			Periods:      res.Periods(),
			FinalBalance: final.Balance,
			FinalValue:   final.Value,
		},
	}
	if req.Options.IncludeLedger {
		resp.Ledger = stakingLedger(res.Ledger)
	}
	c.JSON(http.StatusOK, resp)
}

// RunBonding handles POST /api/v1/simulate/bonding
func (h *SimulationHandler) RunBonding(c *gin.Context) {
	var req models.BondingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	p, err := bondingParams(req)
	if err != nil {
		h.fail(c, kindBonding, err)
		return
	}
	var prices []float64
	if len(req.Prices) > 0 {
		prices = req.Prices
	}
	res, err := strategy.BondingWithPrices(p, prices)
	if err != nil {
		h.fail(c, kindBonding, err)
		return
	}
	h.observe(kindBonding, res.ROI)

	id := h.cache.Put(kindBonding, res)
	final := res.Final()
	resp := models.SimulationResponse{
		ID:       id,
		Status:   "completed",
		Strategy: kindBonding,
		Summary: models.SimulationSummary{
			ROI:          res.ROI,
			APY:          res.APY,
			Periods:      res.Periods(),
			FinalBalance: final.Balance(),
			FinalValue:   final.Value,
		},
	}
	if req.Options.IncludeLedger {
		resp.Ledger = bondingLedger(res.Ledger)
	}
	c.JSON(http.StatusOK, resp)
}

// RunEpochs handles POST /api/v1/simulate/epochs
func (h *SimulationHandler) RunEpochs(c *gin.Context) {
	var req models.EpochsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	var prices data.PriceSource = data.ConstantPrice(req.Price)
	if len(req.Prices) > 0 {
		prices = data.PriceSeries(req.Prices)
	}
	policy, err := bondPolicy(req.BondPolicy)
	if err != nil {
		h.fail(c, kindEpochs, err)
		return
	}

	var sink protocol.Sink
	if h.metrics != nil {
		sink = h.metrics.Sink()
	}
	state, err := protocol.New(req.InitialSupply,
		protocol.WithSink(sink),
		protocol.WithLogger(log.Logger),
	)
	if err != nil {
		h.fail(c, kindEpochs, err)
		return
	}
	settlements, err := protocol.Run(state, prices, policy, req.Epochs)
	if err != nil {
		h.fail(c, kindEpochs, err)
		return
	}
	if h.metrics != nil {
		h.metrics.Simulations.WithLabelValues(kindEpochs).Inc()
	}

	snap := state.Snapshot()
	resp := models.EpochsResponse{
		Status: "completed",
		Epochs: epochRows(settlements),
		Final: models.Protocol{
			Index:    snap.Index,
			Treasury: snap.Treasury,
			Supply:   snap.Supply,
		},
	}
	resp.ID = h.cache.Put(kindEpochs, resp)
	c.JSON(http.StatusOK, resp)
}

// GetLedger handles GET /api/v1/simulate/:id/ledger
// ?format=csv returns the ledger as CSV instead of JSON.
func (h *SimulationHandler) GetLedger(c *gin.Context) {
	entry, ok := h.cache.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "NOT_FOUND",
				Message: "no simulation result with this id (it may have expired)",
			},
		})
		return
	}
	csv := c.Query("format") == "csv"

	var (
		ledger any
		buf    bytes.Buffer
		err    error
	)
	switch res := entry.Result.(type) {
	case *backtest.Result[backtest.StakingRow]:
		ledger = stakingLedger(res.Ledger)
		if csv {
			err = backtest.EncodeLedgerCSV(&buf, res.Ledger)
		}
	case *backtest.Result[backtest.BondingRow]:
		ledger = bondingLedger(res.Ledger)
		if csv {
			err = backtest.EncodeLedgerCSV(&buf, res.Ledger)
		}
	case models.EpochsResponse:
		if csv {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "UNSUPPORTED_FORMAT",
					Message: "epoch runs are only available as JSON",
				},
			})
			return
		}
		res.ID = entry.ID
		c.JSON(http.StatusOK, res)
		return
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: "unexpected cached result type",
			},
		})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	if csv {
		c.Data(http.StatusOK, "text/csv", buf.Bytes())
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": entry.ID, "strategy": entry.Kind, "ledger": ledger})
}

// Helper methods

func (h *SimulationHandler) observe(kind string, roi float64) {
	if h.metrics != nil {
		h.metrics.ObserveRun(kind, roi)
	}
}

func (h *SimulationHandler) fail(c *gin.Context, kind string, err error) {
	_, code := errorKind(err)
	if h.metrics != nil {
		h.metrics.ObserveFailure(kind, code)
	}
	log.Warn().Err(err).Str("strategy", kind).Msg("simulation rejected")
	writeError(c, err)
}

func stakingLedger(rows []backtest.StakingRow) []models.StakingLedgerRow {
	out := make([]models.StakingLedgerRow, 0, len(rows))
	for i, r := range rows {
		out = append(out, models.StakingLedgerRow{Index: i, Balance: r.Balance, Value: r.Value})
	}
	return out
}

func bondingLedger(rows []backtest.BondingRow) []models.BondingLedgerRow {
	out := make([]models.BondingLedgerRow, 0, len(rows))
	for i, r := range rows {
		out = append(out, models.BondingLedgerRow{
			Index:     i,
			Bonded:    r.Bonded,
			NotStaked: r.NotStaked,
			Staked:    r.Staked,
			Balance:   r.Balance(),
			Value:     r.Value,
		})
	}
	return out
}

func epochRows(settlements []protocol.Settlement) []models.EpochRow {
	out := make([]models.EpochRow, 0, len(settlements))
	for _, st := range settlements {
		row := models.EpochRow{
			Epoch:     st.Epoch,
			Price:     st.Price,
			ROI:       st.ROI,
			APY:       st.APY,
			Rewards:   st.Rewards,
			Treasury:  st.Dashboard.Treasury,
			Supply:    st.Dashboard.Supply,
			Index:     st.Dashboard.Index,
			MarketCap: st.Dashboard.MarketCap,
			Dashboard: st.Dashboard.String(),
		}
		if runway, err := st.Runway(); err == nil {
			row.Runway = &runway
		}
		out = append(out, row)
	}
	return out
}
