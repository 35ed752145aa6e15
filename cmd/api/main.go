package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"rebase-sim/internal/api"
	"rebase-sim/internal/data"
	"rebase-sim/internal/metrics"
)

func main() {
	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ttl := data.DefaultCacheTTL
	if ttlStr := os.Getenv("RESULT_CACHE_TTL"); ttlStr != "" {
		parsed, err := time.ParseDuration(ttlStr)
		if err != nil {
			log.Fatal().Err(err).Str("value", ttlStr).Msg("invalid RESULT_CACHE_TTL")
		}
		ttl = parsed
	}
	cache := data.NewResultCache(ttl)
	go cache.RunJanitor(context.Background(), 5*time.Minute)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}

	router := api.NewRouter(api.Deps{
		Cache:    cache,
		Metrics:  m,
		Gatherer: reg,
	})

	// Start server
	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("addr", addr).Dur("cache_ttl", ttl).Msg("starting API server")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
