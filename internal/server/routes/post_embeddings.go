package routes

import (
	"fmt"
	"net/http"

	"github.com/cozyai/kitchenette/backend/internal/server/middleware"
	sutil "github.com/cozyai/kitchenette/backend/internal/server/util"
	"github.com/cozyai/kitchenette/backend/internal/util"
	"github.com/cozyai/kitchenette/backend/pkg/ai"
	"github.com/cozyai/kitchenette/backend/pkg/vector"

	"github.com/labstack/echo/v4"
)

const texts400 = "Texts array is required and cannot be empty"

// EmbeddingsHandler embeds texts with every requested model, one model after
// the other, and answers {model: vectors}.
func EmbeddingsHandler(c echo.Context) error {
	type embeddingsBody struct {
		Texts  []string `json:"texts" validate:"required,min=1"`
		Models []string `json:"models"`
	}

	data := new(embeddingsBody)
	if msg := sutil.BindAndValidate(c, data, sutil.Messages{"texts": texts400}, texts400); msg != "" {
		return sutil.BadRequest(c, msg)
	}

	app := middleware.GetApp(c)
	models := data.Models
	if models == nil {
		models = app.EmbeddingModels
	}
	texts := util.SanitizeTexts(data.Texts)

	ctx := c.Request().Context()
	results := make(map[string][][]float64, len(models))
	for _, model := range models {
		res, err := app.AiClient.GenerateEmbeddings(ctx, texts, ai.WithModel(model))
		if err != nil {
			return sutil.UpstreamError(c, "Failed to get embeddings", fmt.Errorf("model %s: %w", model, err))
		}
		results[model] = res.Vectors
	}

	return c.JSON(http.StatusOK, results)
}

// SimilarityHandler embeds the query together with the documents and answers
// the documents ranked by cosine similarity to the query.
func SimilarityHandler(c echo.Context) error {
	type similarityBody struct {
		Query     string   `json:"query" validate:"required"`
		Documents []string `json:"documents" validate:"required,min=1"`
		Model     string   `json:"model"`
	}

	const msg400 = "Query and documents array are required"
	data := new(similarityBody)
	if msg := sutil.BindAndValidate(c, data, nil, msg400); msg != "" {
		return sutil.BadRequest(c, msg)
	}

	app := middleware.GetApp(c)
	model := data.Model
	if model == "" {
		model = app.EmbeddingModel
	}

	texts := make([]string, 0, len(data.Documents)+1)
	texts = append(texts, util.SanitizeText(data.Query))
	texts = append(texts, util.SanitizeTexts(data.Documents)...)

	res, err := app.AiClient.GenerateEmbeddings(c.Request().Context(), texts, ai.WithModel(model))
	if err != nil {
		return sutil.UpstreamError(c, "Failed to calculate similarity", err)
	}
	if len(res.Vectors) != len(texts) {
		return sutil.UpstreamError(c, "Failed to calculate similarity",
			fmt.Errorf("got %d embeddings for %d texts", len(res.Vectors), len(texts)))
	}

	return c.JSON(http.StatusOK, vector.Rank(res.Vectors[0], res.Vectors[1:], data.Documents))
}
