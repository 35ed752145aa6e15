package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"

	"rebase-sim/internal/api/models"
	"rebase-sim/internal/model"
)

// errorKind maps an error to its HTTP status and response code.
func errorKind(err error) (int, string) {
	switch {
	case model.IsConfiguration(err):
		return http.StatusBadRequest, "INVALID_CONFIG"
	case model.IsSequencing(err):
		return http.StatusConflict, "SEQUENCING_ERROR"
	case model.IsNumericDegeneracy(err):
		return http.StatusUnprocessableEntity, "NUMERIC_DEGENERACY"
	default:
		return http.StatusInternalServerError, "SIMULATION_ERROR"
	}
}

func writeError(c *gin.Context, err error) {
	status, code := errorKind(err)
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}

func writeBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		},
	})
}

var errInvalidScenarioID = eris.New("scenario id must be a bare file name")
