package routes

import (
	"net/http"

	"github.com/cozyai/kitchenette/backend/internal/server/middleware"
	"github.com/cozyai/kitchenette/backend/pkg/ai"

	"github.com/labstack/echo/v4"
)

type metricsResponse struct {
	Default ai.ModelMetrics  `json:"default"`
	Compare *ai.ModelMetrics `json:"compare,omitempty"`
}

// GetMetricsHandler answers the token usage accumulated since start or the
// last reset.
func GetMetricsHandler(c echo.Context) error {
	app := middleware.GetApp(c)
	resp := metricsResponse{Default: app.AiClient.GetMetrics()}
	if app.CompareClient != nil {
		m := app.CompareClient.GetMetrics()
		resp.Compare = &m
	}
	return c.JSON(http.StatusOK, resp)
}

func DeleteMetricsHandler(c echo.Context) error {
	app := middleware.GetApp(c)
	app.AiClient.ResetMetrics()
	if app.CompareClient != nil {
		app.CompareClient.ResetMetrics()
	}
	return c.NoContent(http.StatusNoContent)
}
