package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cozyai/kitchenette/backend/internal/server/middleware"
	sutil "github.com/cozyai/kitchenette/backend/internal/server/util"
	"github.com/cozyai/kitchenette/backend/internal/util"
	"github.com/cozyai/kitchenette/backend/pkg/ai"

	"github.com/labstack/echo/v4"
)

const (
	completeMaxTokens   = 150
	completeTemperature = 0.7

	prompt400 = "Prompt is required and must be a string"
)

type completeBody struct {
	Prompt  string `json:"prompt" validate:"required"`
	Context string `json:"context"`
	Model   string `json:"model"`
}

// completeRequest turns a completion body into the chat request. A context
// that is not blank switches the system prompt and wraps the prompt.
func completeRequest(data *completeBody, defaultModel string) (string, []ai.ChatMessage, []ai.GenerateOption) {
	model := data.Model
	if model == "" {
		model = defaultModel
	}

	system := ai.CompletePrompt
	user := util.SanitizeText(data.Prompt)
	if strings.TrimSpace(data.Context) != "" {
		system = ai.CompleteContextPrompt
		user = fmt.Sprintf(ai.CompleteContextTemplate, util.SanitizeText(data.Context), user)
	}

	return model, []ai.ChatMessage{ai.UserMessage(user)}, []ai.GenerateOption{
		ai.WithModel(model),
		ai.WithSystemPrompts(system),
		ai.WithMaxTokens(completeMaxTokens),
		ai.WithTemperature(completeTemperature),
	}
}

// CompleteHandler completes a sentence, optionally grounded on a context.
func CompleteHandler(c echo.Context) error {
	type completeResponse struct {
		Completion string `json:"completion"`
		HasContext bool   `json:"hasContext"`
		Model      string `json:"model"`
	}

	data := new(completeBody)
	if msg := sutil.BindAndValidate(c, data, sutil.Messages{"prompt": prompt400}, prompt400); msg != "" {
		return sutil.BadRequest(c, msg)
	}

	app := middleware.GetApp(c)
	model, msgs, opts := completeRequest(data, app.ChatModel)

	res, err := app.AiClient.GenerateChat(c.Request().Context(), msgs, opts...)
	if err != nil {
		return sutil.UpstreamError(c, "Failed to generate completion", err)
	}

	return c.JSON(http.StatusOK, completeResponse{
		Completion: strings.TrimSpace(res.Text),
		HasContext: data.Context != "",
		Model:      model,
	})
}

// CompleteStreamHandler streams the completion as newline delimited JSON.
// Every line carries the text generated so far; the last line has Done set.
func CompleteStreamHandler(c echo.Context) error {
	type streamResponse struct {
		Completion string           `json:"completion"`
		Delta      string           `json:"delta,omitempty"`
		HasContext bool             `json:"hasContext"`
		Model      string           `json:"model"`
		Done       bool             `json:"done"`
		Error      string           `json:"error,omitempty"`
		Metrics    *ai.ModelMetrics `json:"metrics,omitempty"`
	}

	data := new(completeBody)
	if msg := sutil.BindAndValidate(c, data, sutil.Messages{"prompt": prompt400}, prompt400); msg != "" {
		return sutil.BadRequest(c, msg)
	}

	app := middleware.GetApp(c)
	model, msgs, opts := completeRequest(data, app.ChatModel)
	hasContext := data.Context != ""

	ctx := c.Request().Context()
	events, err := app.AiClient.GenerateChatStream(ctx, msgs, opts...)
	if err != nil {
		return sutil.UpstreamError(c, "Failed to generate completion", err)
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/x-ndjson")
	c.Response().WriteHeader(http.StatusOK)

	enc := json.NewEncoder(c.Response())
	var buffer strings.Builder
	for event := range events {
		switch event.Type {
		case "content":
			buffer.WriteString(event.Content)
			resp := streamResponse{
				Completion: buffer.String(),
				Delta:      event.Content,
				HasContext: hasContext,
				Model:      model,
			}
			if err := enc.Encode(resp); err != nil {
				return err
			}
			c.Response().Flush()
		case "error":
			resp := streamResponse{
				Completion: buffer.String(),
				HasContext: hasContext,
				Model:      model,
				Done:       true,
				Error:      "Failed to generate completion",
			}
			if err := enc.Encode(resp); err != nil {
				return err
			}
			c.Response().Flush()
			return nil
		}
	}

	metrics := app.AiClient.GetMetrics()
	if err := enc.Encode(streamResponse{
		Completion: strings.TrimSpace(buffer.String()),
		HasContext: hasContext,
		Model:      model,
		Done:       true,
		Metrics:    &metrics,
	}); err != nil {
		return err
	}
	c.Response().Flush()
	return nil
}
