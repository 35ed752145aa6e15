package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rebase-sim/internal/api/models"
	"rebase-sim/internal/data"
	"rebase-sim/internal/metrics"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)
	return NewRouter(Deps{
		Cache:       data.NewResultCache(data.DefaultCacheTTL),
		Metrics:     m,
		Gatherer:    reg,
		ScenarioDir: filepath.Join("..", "..", "examples", "scenarios"),
	})
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSimulateStaking(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodPost, "/api/v1/simulate/staking",
		`{"principal":10000,"price":8700,"rebase_rate":0.9695,"options":{"include_ledger":true}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[struct {
		models.SimulationResponse
		Ledger []models.StakingLedgerRow `json:"ledger"`
	}](t, w)
	assert.Equal(t, "staking", resp.Strategy)
	assert.Equal(t, 15, resp.Summary.Periods)
	assert.InDelta(t, 0.15572121277918693, resp.Summary.ROI, 1e-9)
	require.Len(t, resp.Ledger, 16)
	assert.InDelta(t, 10000.0/8700, resp.Ledger[0].Balance, 1e-12)
	assert.NotEmpty(t, resp.ID)

	// the cached ledger is served again as CSV
	w = do(t, r, http.MethodGet, "/api/v1/simulate/"+resp.ID+"/ledger?format=csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	records, err := csv.NewReader(bytes.NewReader(w.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 17)
	assert.Equal(t, []string{"index", "balance", "value"}, records[0])
}

func TestSimulateBonding(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodPost, "/api/v1/simulate/bonding",
		`{"principal":10000,"price":8700,"rebase_rate":0.9695,"bond_discount":6}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.SimulationResponse](t, w)
	assert.Equal(t, "bonding", resp.Strategy)
	assert.InDelta(t, 0.1457088392939636, resp.Summary.ROI, 1e-9)
	assert.Nil(t, resp.Ledger)

	w = do(t, r, http.MethodGet, "/api/v1/simulate/"+resp.ID+"/ledger", "")
	require.Equal(t, http.StatusOK, w.Code)
	ledger := decode[struct {
		Strategy string                    `json:"strategy"`
		Ledger   []models.BondingLedgerRow `json:"ledger"`
	}](t, w)
	assert.Equal(t, "bonding", ledger.Strategy)
	assert.Len(t, ledger.Ledger, 16)
}

func TestSimulateBonding_ScheduleMismatch(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodPost, "/api/v1/simulate/bonding",
		`{"principal":10000,"price":8700,"rebase_rate":0.9695,"bond_discount":6,"restake_schedule":[true,false]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[models.ErrorResponse](t, w)
	assert.Equal(t, "INVALID_CONFIG", resp.Error.Code)
}

func TestSimulate_MissingRequiredFields(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodPost, "/api/v1/simulate/staking", `{"rebase_rate":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[models.ErrorResponse](t, w)
	assert.Equal(t, "INVALID_REQUEST", resp.Error.Code)
}

func TestSimulateEpochs(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodPost, "/api/v1/simulate/epochs",
		`{"initial_supply":1000000,"epochs":3,"price":500,"bond_policy":{"kind":"market_cap_fraction","fraction":0.1}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.EpochsResponse](t, w)
	require.Len(t, resp.Epochs, 3)
	assert.InDelta(t, 0.0998, resp.Epochs[0].ROI, 1e-9)
	require.NotNil(t, resp.Epochs[0].Runway)
	assert.Contains(t, resp.Epochs[0].Dashboard, "Epoch  1")
	assert.InDelta(t, resp.Epochs[2].Index, resp.Final.Index, 1e-12)

	w = do(t, r, http.MethodGet, "/api/v1/simulate/"+resp.ID+"/ledger", "")
	require.Equal(t, http.StatusOK, w.Code)
	again := decode[models.EpochsResponse](t, w)
	assert.Equal(t, resp.ID, again.ID)

	w = do(t, r, http.MethodGet, "/api/v1/simulate/"+resp.ID+"/ledger?format=csv", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSimulateEpochs_NoBondingHasNoRunway(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodPost, "/api/v1/simulate/epochs",
		`{"initial_supply":1000,"epochs":2,"price":3}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.EpochsResponse](t, w)
	for _, e := range resp.Epochs {
		assert.Nil(t, e.Runway)
		assert.Equal(t, 1.0, e.Index)
	}
}

func TestSimulateEpochs_BadPolicy(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodPost, "/api/v1/simulate/epochs",
		`{"initial_supply":1000,"epochs":2,"price":3,"bond_policy":{"kind":"all"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetLedger_NotFound(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodGet, "/api/v1/simulate/nope/ledger", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompare(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodPost, "/api/v1/compare", `{
		"staking": {"principal":10000,"price":8700,"rebase_rate":0.9695},
		"bonding": {"principal":10000,"price":8700,"rebase_rate":0.9695,"bond_discount":6},
		"variations": [
			{"name":"bond_never","bonding":{"principal":0,"price":0,"restake":"FFFFFFFFFFFFFFF"}},
			{"name":"stake","staking":{"principal":0,"price":0}},
			{"name":"bond","bonding":{"principal":0,"price":0}}
		]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.CompareResponse](t, w)
	require.Len(t, resp.Rankings, 3)
	assert.Equal(t, []string{"stake", "bond", "bond_never"},
		[]string{resp.Rankings[0].Name, resp.Rankings[1].Name, resp.Rankings[2].Name})
	assert.Equal(t, 1, resp.Rankings[0].Rank)
}

func TestCompare_NoVariations(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodPost, "/api/v1/compare", `{"variations":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBestRestake(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodPost, "/api/v1/compare/restake",
		`{"bonding":{"principal":10000,"price":8700,"rebase_rate":0.9695,"bond_discount":6},"max_interval":3}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[struct {
		Best     string           `json:"best"`
		Rankings []models.Ranking `json:"rankings"`
	}](t, w)
	assert.Equal(t, "always", resp.Best)
	assert.Len(t, resp.Rankings, 4)
}

func TestStrategies(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodGet, "/api/v1/strategies", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		Strategies []models.StrategyInfo `json:"strategies"`
	}](t, w)
	require.Len(t, resp.Strategies, 3)
	assert.Equal(t, "staking", resp.Strategies[0].Name)
}

func TestScenarios(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/api/v1/scenarios", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Scenarios []models.ScenarioInfo `json:"scenarios"`
	}](t, w)
	ids := make([]string, 0, len(list.Scenarios))
	for _, s := range list.Scenarios {
		ids = append(ids, s.ID)
	}
	assert.Contains(t, ids, "reference")
	assert.Contains(t, ids, "olympus")

	w = do(t, r, http.MethodPost, "/api/v1/scenarios/reference/compare", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.CompareResponse](t, w)
	assert.Len(t, resp.Rankings, 4)

	w = do(t, r, http.MethodPost, "/api/v1/scenarios/missing/compare", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/scenarios/..hidden/compare", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/v1/simulate/staking", `{"principal":100,"price":1,"rebase_rate":1}`)

	w := do(t, r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `rebase_sim_simulations_total{strategy="staking"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/simulate/staking", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSimulate_HorizonAndEpochLimits(t *testing.T) {
	r := newTestRouter(t)
	for path, body := range map[string]string{
		"/api/v1/simulate/staking": `{"principal":100,"price":1,"rebase_rate":1,"period_len":4294967296,"rebase_per_day":4294967296}`,
		"/api/v1/simulate/bonding": `{"principal":100,"price":1,"rebase_rate":1,"period_len":2000000}`,
		"/api/v1/simulate/epochs":  `{"initial_supply":1000,"epochs":100001,"price":3}`,
	} {
		w := do(t, r, http.MethodPost, path, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		resp := decode[models.ErrorResponse](t, w)
		assert.Equal(t, "INVALID_CONFIG", resp.Error.Code, path)
	}
}
