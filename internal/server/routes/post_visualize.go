package routes

import (
	"fmt"
	"net/http"

	"github.com/cozyai/kitchenette/backend/internal/server/middleware"
	sutil "github.com/cozyai/kitchenette/backend/internal/server/util"
	"github.com/cozyai/kitchenette/backend/internal/util"
	"github.com/cozyai/kitchenette/backend/pkg/ai"
	"github.com/cozyai/kitchenette/backend/pkg/projection"
	"github.com/cozyai/kitchenette/backend/pkg/render"

	"github.com/labstack/echo/v4"
)

// VisualizeHandler embeds the texts with every model and answers one
// projected pane per model side by side, as scene JSON or SVG.
func VisualizeHandler(c echo.Context) error {
	type visualizeBody struct {
		Texts  []string `json:"texts" validate:"required,min=1,max=200"`
		Models []string `json:"models" validate:"omitempty,max=4"`
		Method string   `json:"method" validate:"omitempty,oneof=seeded svd"`
		Format string   `json:"format" validate:"omitempty,oneof=json svg"`
	}

	data := new(visualizeBody)
	messages := sutil.Messages{
		"texts":  texts400,
		"models": "At most 4 models can be compared",
		"method": "method must be seeded or svd",
		"format": "format must be json or svg",
	}
	if msg := sutil.BindAndValidate(c, data, messages, texts400); msg != "" {
		return sutil.BadRequest(c, msg)
	}

	app := middleware.GetApp(c)
	models := data.Models
	if len(models) == 0 {
		models = app.EmbeddingModels
	}
	texts := util.SanitizeTexts(data.Texts)

	ctx := c.Request().Context()
	panes := make([]render.Pane, 0, len(models))
	bounds := render.Rect{W: render.DefaultPaneSize, H: render.DefaultPaneSize}
	for _, model := range models {
		res, err := app.AiClient.GenerateEmbeddings(ctx, texts, ai.WithModel(model))
		if err != nil {
			return sutil.UpstreamError(c, "Failed to get embeddings", fmt.Errorf("model %s: %w", model, err))
		}
		pane, err := render.EmbeddingPane(model, data.Texts, res.Vectors, bounds, render.PaneOptions{
			Method: projection.Method(data.Method),
		})
		if err != nil {
			return sutil.UpstreamError(c, "Failed to project embeddings", fmt.Errorf("model %s: %w", model, err))
		}
		panes = append(panes, *pane)
	}

	scene := render.Comparison(panes...)
	if data.Format == "svg" {
		c.Response().Header().Set(echo.HeaderContentType, "image/svg+xml")
		c.Response().WriteHeader(http.StatusOK)
		return render.WriteSVG(c.Response(), scene)
	}
	return c.JSON(http.StatusOK, scene)
}
