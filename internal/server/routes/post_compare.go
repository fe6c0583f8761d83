package routes

import (
	"net/http"
	"strings"

	"github.com/cozyai/kitchenette/backend/internal/server/middleware"
	sutil "github.com/cozyai/kitchenette/backend/internal/server/util"
	"github.com/cozyai/kitchenette/backend/internal/util"
	"github.com/cozyai/kitchenette/backend/pkg/ai"
	"github.com/cozyai/kitchenette/backend/pkg/logger"
	"github.com/cozyai/kitchenette/backend/pkg/tokenizer"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

const (
	compareTemperature = 0.1
	compareParallel    = 4
	// compareTokenModel picks the encoding tokens are counted with, for
	// every compared model.
	compareTokenModel = "gpt-4o-mini"

	question400 = "Question is required and must be a string"
)

type tokenCounts struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Total  int `json:"total"`
}

type modelAnswer struct {
	Model    string      `json:"model"`
	Response string      `json:"response"`
	Error    string      `json:"error,omitempty"`
	Tokens   tokenCounts `json:"tokens"`
}

func countTokens(t *tokenizer.Tokenizer, text string) int {
	if t == nil {
		return 0
	}
	n, err := t.Count(text, tokenizer.EncodingForModel(compareTokenModel))
	if err != nil {
		logger.Warn("[Compare] Failed to count tokens", "err", err)
		return 0
	}
	return n
}

func askModel(c echo.Context, client ai.Client, model, question string, temperature float64) (string, error) {
	res, err := client.GenerateChat(c.Request().Context(),
		[]ai.ChatMessage{ai.UserMessage(question)},
		ai.WithModel(model),
		ai.WithSystemPrompts(ai.CompareModelsPrompt),
		ai.WithTemperature(temperature),
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Text), nil
}

// CompareModelsHandler asks every model the same question concurrently and
// answers in request order. A failing model gets an error entry instead of
// failing the request.
func CompareModelsHandler(c echo.Context) error {
	type compareBody struct {
		Question    string   `json:"question" validate:"required"`
		Models      []string `json:"models" validate:"required,min=1,max=10,dive,required"`
		Temperature *float64 `json:"temperature" validate:"omitempty,min=0,max=2"`
	}

	type compareResponse struct {
		Question string        `json:"question"`
		Results  []modelAnswer `json:"results"`
	}

	data := new(compareBody)
	messages := sutil.Messages{
		"question":    question400,
		"models":      "Models array is required and cannot be empty",
		"temperature": "temperature must be between 0 and 2",
	}
	if msg := sutil.BindAndValidate(c, data, messages, question400); msg != "" {
		return sutil.BadRequest(c, msg)
	}

	temperature := compareTemperature
	if data.Temperature != nil {
		temperature = *data.Temperature
	}

	app := middleware.GetApp(c)
	client := app.Compare()
	question := util.SanitizeText(data.Question)
	inputTokens := countTokens(app.Tokenizer, question)

	results := make([]modelAnswer, len(data.Models))
	var eg errgroup.Group
	eg.SetLimit(compareParallel)
	for i, model := range data.Models {
		eg.Go(func() error {
			answer := modelAnswer{Model: model}
			text, err := askModel(c, client, model, question, temperature)
			if err != nil {
				logger.Error("[Compare] Model failed", "model", model, "err", err)
				answer.Error = sutil.ProviderMessage(err)
			} else {
				answer.Response = text
				answer.Tokens = tokenCounts{
					Input:  inputTokens,
					Output: countTokens(app.Tokenizer, text),
					Total:  countTokens(app.Tokenizer, question+text),
				}
			}
			results[i] = answer
			return nil
		})
	}
	_ = eg.Wait()

	return c.JSON(http.StatusOK, compareResponse{Question: data.Question, Results: results})
}

// GithubModelsHandler asks one model one question. It keeps the request
// shape the comparison frontend sends.
func GithubModelsHandler(c echo.Context) error {
	type githubModelsBody struct {
		Model       string   `json:"model" validate:"required"`
		Question    string   `json:"question" validate:"required"`
		Temperature *float64 `json:"temperature" validate:"omitempty,min=0,max=2"`
	}

	type githubModelsResponse struct {
		Response string `json:"response"`
		Model    string `json:"model"`
	}

	data := new(githubModelsBody)
	messages := sutil.Messages{
		"model":    "Model is required and must be a string",
		"question": question400,
	}
	if msg := sutil.BindAndValidate(c, data, messages, question400); msg != "" {
		return sutil.BadRequest(c, msg)
	}

	temperature := compareTemperature
	if data.Temperature != nil {
		temperature = *data.Temperature
	}

	app := middleware.GetApp(c)
	text, err := askModel(c, app.Compare(), data.Model, util.SanitizeText(data.Question), temperature)
	if err != nil {
		return sutil.UpstreamError(c, "Failed to get model response", err)
	}

	return c.JSON(http.StatusOK, githubModelsResponse{Response: text, Model: data.Model})
}
