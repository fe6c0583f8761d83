package routes

import (
	"errors"
	"net/http"

	"github.com/cozyai/kitchenette/backend/internal/server/middleware"
	sutil "github.com/cozyai/kitchenette/backend/internal/server/util"
	"github.com/cozyai/kitchenette/backend/internal/util"
	"github.com/cozyai/kitchenette/backend/pkg/rag"
	"github.com/cozyai/kitchenette/backend/pkg/scenario"

	"github.com/labstack/echo/v4"
)

const (
	query400    = "Query is required and must be a string"
	context400  = "Context is required and must be a string"
	text400     = "Text is required and must be a string"
	scenario404 = "Scenario not found"
)

// RagHandler answers a question from the given context only.
func RagHandler(c echo.Context) error {
	type ragBody struct {
		Query   string `json:"query" validate:"required"`
		Context string `json:"context" validate:"required"`
		Model   string `json:"model"`
		IdkMode bool   `json:"idkMode"`
	}

	type ragResponse struct {
		Answer string `json:"answer"`
		Query  string `json:"query"`
		Model  string `json:"model"`
	}

	data := new(ragBody)
	messages := sutil.Messages{"query": query400, "context": context400}
	if msg := sutil.BindAndValidate(c, data, messages, query400); msg != "" {
		return sutil.BadRequest(c, msg)
	}

	app := middleware.GetApp(c)
	model := data.Model
	if model == "" {
		model = app.ChatModel
	}

	res, err := rag.Answer(c.Request().Context(), app.AiClient,
		util.SanitizeText(data.Query),
		util.SanitizeText(data.Context),
		rag.AnswerOptions{Model: model, Strict: data.IdkMode},
	)
	if err != nil {
		return sutil.UpstreamError(c, "Failed to generate RAG response", err)
	}

	return c.JSON(http.StatusOK, ragResponse{
		Answer: res.Text,
		Query:  data.Query,
		Model:  model,
	})
}

// RagPipelineHandler runs chunking, retrieval and answering over a text or
// the text body of a built-in scenario and answers every intermediate step.
func RagPipelineHandler(c echo.Context) error {
	type ragPipelineBody struct {
		Query          string `json:"query" validate:"required"`
		Text           string `json:"text" validate:"required_without=Scenario"`
		Scenario       string `json:"scenario"`
		ChunkSize      int    `json:"chunk_size" validate:"min=0,max=1000"`
		MaxChunks      int    `json:"max_chunks" validate:"min=0,max=50"`
		EmbeddingModel string `json:"embedding_model"`
		Model          string `json:"model"`
		IdkMode        bool   `json:"idkMode"`
	}

	data := new(ragPipelineBody)
	messages := sutil.Messages{
		"query":      query400,
		"text":       text400,
		"chunk_size": "chunk_size must be between 0 and 1000",
		"max_chunks": "max_chunks must be between 0 and 50",
	}
	if msg := sutil.BindAndValidate(c, data, messages, query400); msg != "" {
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

	app := middleware.GetApp(c)
	req := rag.Request{
		Query:          util.SanitizeText(data.Query),
		Text:           util.SanitizeText(text),
		ChunkSize:      data.ChunkSize,
		MaxChunks:      data.MaxChunks,
		Strict:         data.IdkMode,
		EmbeddingModel: data.EmbeddingModel,
		ChatModel:      data.Model,
	}
	if req.MaxChunks == 0 {
		req.MaxChunks = rag.DefaultMaxChunks
	}
	if req.EmbeddingModel == "" {
		req.EmbeddingModel = app.EmbeddingModel
	}
	if req.ChatModel == "" {
		req.ChatModel = app.ChatModel
	}

	res, err := rag.Run(c.Request().Context(), app.AiClient, req)
	if errors.Is(err, rag.ErrEmptyQuery) {
		return sutil.BadRequest(c, query400)
	}
	if err != nil {
		return sutil.UpstreamError(c, "Failed to generate RAG response", err)
	}

	return c.JSON(http.StatusOK, res)
}
