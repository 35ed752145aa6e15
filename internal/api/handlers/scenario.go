package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"rebase-sim/internal/analysis"
	"rebase-sim/internal/api/models"
	"rebase-sim/internal/config"
)

// ScenarioHandler serves the scenario presets in a directory of YAML files.
type ScenarioHandler struct {
	scenarioDir string
}

// NewScenarioHandler resolves the preset directory from SCENARIO_DIR, falling back
// to ./examples/scenarios.
func NewScenarioHandler() *ScenarioHandler {
	dir := os.Getenv("SCENARIO_DIR")
	if dir == "" {
		dir = filepath.Join("examples", "scenarios")
	}
	return NewScenarioHandlerWithDir(dir)
}

func NewScenarioHandlerWithDir(dir string) *ScenarioHandler {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	log.Info().Str("dir", dir).Msg("using scenario directory")
	return &ScenarioHandler{scenarioDir: dir}
}

// ScenarioDir returns the preset directory path
func (h *ScenarioHandler) ScenarioDir() string {
	return h.scenarioDir
}

// ListScenarios handles GET /api/v1/scenarios
func (h *ScenarioHandler) ListScenarios(c *gin.Context) {
	scenarios := []models.ScenarioInfo{}

	entries, err := os.ReadDir(h.scenarioDir)
	if err != nil {
		log.Warn().Err(err).Str("dir", h.scenarioDir).Msg("failed to read scenario directory")
		c.JSON(http.StatusOK, gin.H{"scenarios": scenarios})
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(h.scenarioDir, entry.Name())
		info, err := loadScenarioInfo(path, entry.Name())
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("skipping invalid scenario")
			continue
		}
		scenarios = append(scenarios, *info)
	}

	c.JSON(http.StatusOK, gin.H{"scenarios": scenarios})
}

// CompareScenario handles POST /api/v1/scenarios/:id/compare
func (h *ScenarioHandler) CompareScenario(c *gin.Context) {
	cfg, ok := h.load(c)
	if !ok {
		return
	}
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

func (h *ScenarioHandler) load(c *gin.Context) (*config.Config, bool) {
	id := c.Param("id")
	// ids are bare file names; anything path-like is rejected.
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		writeBadRequest(c, errInvalidScenarioID)
		return nil, false
	}
	path := filepath.Join(h.scenarioDir, id+".yaml")
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "NOT_FOUND",
				Message: "scenario " + id + " not found",
			},
		})
		return nil, false
	}
	cfg, err := config.Load(path)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return cfg, true
}

func loadScenarioInfo(path, filename string) (*models.ScenarioInfo, error) {
	cfg, err := config.LoadUnchecked(path)
	if err != nil {
		return nil, err
	}

	// "reference.yaml" -> "reference"
	id := strings.TrimSuffix(filename, ".yaml")
	name := cfg.Name
	if name == "" {
		name = id
	}

	var sections []string
	if cfg.Staking != nil {
		sections = append(sections, "staking")
	}
	if cfg.Bonding != nil {
		sections = append(sections, "bonding")
	}
	if cfg.Protocol != nil {
		sections = append(sections, "protocol")
	}
	if len(cfg.Compare) > 0 {
		sections = append(sections, "compare")
	}

	return &models.ScenarioInfo{
		ID:       id,
		Name:     name,
		File:     path,
		Sections: sections,
	}, nil
}
