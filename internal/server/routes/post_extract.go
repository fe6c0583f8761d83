package routes

import (
	"errors"
	"net/http"

	"github.com/cozyai/kitchenette/backend/internal/server/middleware"
	sutil "github.com/cozyai/kitchenette/backend/internal/server/util"
	"github.com/cozyai/kitchenette/backend/internal/util"
	"github.com/cozyai/kitchenette/backend/pkg/common"
	"github.com/cozyai/kitchenette/backend/pkg/extract"
	"github.com/cozyai/kitchenette/backend/pkg/graph"
	"github.com/cozyai/kitchenette/backend/pkg/logger"
	"github.com/cozyai/kitchenette/backend/pkg/scenario"

	"github.com/labstack/echo/v4"
)

// ExtractStructuredHandler extracts the requested information from a text as
// prose, JSON or executable code.
func ExtractStructuredHandler(c echo.Context) error {
	type extractBody struct {
		Text   string `json:"text" validate:"required"`
		Prompt string `json:"prompt" validate:"required"`
		Format string `json:"format"`
		Model  string `json:"model"`
	}

	type extractResponse struct {
		Extraction     string `json:"extraction"`
		Format         string `json:"format"`
		Model          string `json:"model"`
		OriginalPrompt string `json:"originalPrompt"`
	}

	data := new(extractBody)
	messages := sutil.Messages{"text": text400, "prompt": prompt400}
	if msg := sutil.BindAndValidate(c, data, messages, text400); msg != "" {
		return sutil.BadRequest(c, msg)
	}

	app := middleware.GetApp(c)
	model := data.Model
	if model == "" {
		model = app.ChatModel
	}
	format := data.Format
	if format == "" {
		format = string(extract.FormatStructured)
	}

	res, err := extract.Run(c.Request().Context(), app.AiClient,
		util.SanitizeText(data.Text),
		util.SanitizeText(data.Prompt),
		extract.ParseFormat(format),
		model,
	)
	if err != nil {
		return sutil.UpstreamError(c, "Failed to extract structured data", err)
	}
	if extract.ParseFormat(format) == extract.FormatJSON && !res.Pretty {
		logger.Debug("[Extract] JSON parsing failed, returning raw response", "model", model)
	}

	return c.JSON(http.StatusOK, extractResponse{
		Extraction:     res.Extraction,
		Format:         format,
		Model:          model,
		OriginalPrompt: data.Prompt,
	})
}

// ExtractGraphHandler builds a typed graph from a text. Mode "schema" uses a
// JSON schema constrained completion; mode "text" runs the entity,
// relationship and hub prompts and parses their line formats.
func ExtractGraphHandler(c echo.Context) error {
	type extractGraphBody struct {
		Text     string   `json:"text" validate:"required_without=Scenario"`
		Scenario string   `json:"scenario"`
		Types    []string `json:"types" validate:"max=20"`
		Model    string   `json:"model"`
		Mode     string   `json:"mode" validate:"omitempty,oneof=schema text"`
		Title    string   `json:"title"`
	}

	type extractGraphResponse struct {
		Scenario *common.Scenario `json:"scenario"`
		Analysis *graph.Analysis  `json:"analysis,omitempty"`
		Model    string           `json:"model"`
	}

	data := new(extractGraphBody)
	messages := sutil.Messages{
		"text":  text400,
		"types": "At most 20 types are allowed",
		"mode":  "Mode must be schema or text",
	}
	if msg := sutil.BindAndValidate(c, data, messages, text400); msg != "" {
		return sutil.BadRequest(c, msg)
	}

	text := data.Text
	if text == "" {
		sc, err := scenario.Get(data.Scenario)
		if errors.Is(err, scenario.ErrNotFound) {
			return sutil.NotFound(c, scenario404)
		}
		if err != nil {
			return sutil.UpstreamError(c, "Failed to load scenario", err)
		}
		text = sc.TextBody
	}
	text = util.SanitizeText(text)

	app := middleware.GetApp(c)
	model := data.Model
	if model == "" {
		model = app.ChatModel
	}
	ctx := c.Request().Context()

	if data.Mode == "text" {
		analysis, err := graph.Analyze(ctx, app.AiClient, text, model)
		if err != nil {
			return sutil.UpstreamError(c, "Failed to extract graph", err)
		}
		sc := analysis.Scenario("analysis", text)
		if data.Title != "" {
			sc.Title = data.Title
		}
		return c.JSON(http.StatusOK, extractGraphResponse{Scenario: sc, Analysis: analysis, Model: model})
	}

	sc, err := graph.Extract(ctx, app.AiClient, text, graph.ExtractOptions{
		Types: data.Types,
		Model: model,
		Title: data.Title,
	})
	if err != nil {
		return sutil.UpstreamError(c, "Failed to extract graph", err)
	}
	return c.JSON(http.StatusOK, extractGraphResponse{Scenario: sc, Model: model})
}
