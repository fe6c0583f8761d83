package routes

import (
	"errors"
	"net/http"

	sutil "github.com/cozyai/kitchenette/backend/internal/server/util"
	"github.com/cozyai/kitchenette/backend/pkg/scenario"

	"github.com/labstack/echo/v4"
)

func GetScenariosHandler(c echo.Context) error {
	list, err := scenario.List()
	if err != nil {
		return sutil.UpstreamError(c, "Failed to load scenarios", err)
	}
	return c.JSON(http.StatusOK, list)
}

func GetScenarioHandler(c echo.Context) error {
	type getScenarioParams struct {
		Key string `param:"key" validate:"required"`
	}

	params := new(getScenarioParams)
	if err := c.Bind(params); err != nil {
		return sutil.BadRequest(c, "Invalid request params")
	}
	if err := c.Validate(params); err != nil {
		return sutil.BadRequest(c, "Invalid request params")
	}

	sc, err := scenario.Get(params.Key)
	if errors.Is(err, scenario.ErrNotFound) {
		return sutil.NotFound(c, scenario404)
	}
	if err != nil {
		return sutil.UpstreamError(c, "Failed to load scenario", err)
	}
	return c.JSON(http.StatusOK, sc)
}
