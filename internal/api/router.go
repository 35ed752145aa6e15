// Package api wires the HTTP surface of the simulator.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rebase-sim/internal/api/handlers"
	"rebase-sim/internal/api/middleware"
	"rebase-sim/internal/data"
	"rebase-sim/internal/metrics"
)

// Deps are the collaborators shared by the handlers.
type Deps struct {
	Cache       *data.ResultCache
	Metrics     *metrics.Collectors
	Gatherer    prometheus.Gatherer // served on /metrics when set
	ScenarioDir string              // defaults to SCENARIO_DIR / ./examples/scenarios
}

func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()

	// Apply middleware
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	// Initialize handlers
	simHandler := handlers.NewSimulationHandler(deps.Cache, deps.Metrics)
	compareHandler := handlers.NewCompareHandler()
	strategyHandler := handlers.NewStrategyHandler()
	var scenarioHandler *handlers.ScenarioHandler
	if deps.ScenarioDir != "" {
		scenarioHandler = handlers.NewScenarioHandlerWithDir(deps.ScenarioDir)
	} else {
		scenarioHandler = handlers.NewScenarioHandler()
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// API routes
	api := router.Group("/api/v1")
	{
		api.GET("/strategies", strategyHandler.ListStrategies)

		api.POST("/simulate/staking", simHandler.RunStaking)
		api.POST("/simulate/bonding", simHandler.RunBonding)
		api.POST("/simulate/epochs", simHandler.RunEpochs)
		api.GET("/simulate/:id/ledger", simHandler.GetLedger)

		api.POST("/compare", compareHandler.Compare)
		api.POST("/compare/restake", compareHandler.BestRestake)

		api.GET("/scenarios", scenarioHandler.ListScenarios)
		api.POST("/scenarios/:id/compare", scenarioHandler.CompareScenario)
	}

	return router
}
