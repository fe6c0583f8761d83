package routes

import (
	"math"
	"net/http"

	"github.com/cozyai/kitchenette/backend/internal/server/middleware"
	sutil "github.com/cozyai/kitchenette/backend/internal/server/util"
	"github.com/cozyai/kitchenette/backend/internal/util"
	"github.com/cozyai/kitchenette/backend/pkg/ai"

	"github.com/labstack/echo/v4"
)

const (
	logprobsMaxTokens   = 50
	logprobsTemperature = 1.0
	logprobsTopP        = 1.0
	logprobsTop         = 5
)

type alternative struct {
	Token       string  `json:"token"`
	Logprob     float64 `json:"logprob"`
	Probability float64 `json:"probability"`
}

type step struct {
	Token       string        `json:"token"`
	Logprob     float64       `json:"logprob"`
	Probability float64       `json:"probability"`
	TopLogprobs []alternative `json:"top_logprobs"`
}

func toSteps(logprobs []ai.TokenLogprob) []step {
	steps := make([]step, 0, len(logprobs))
	for _, lp := range logprobs {
		s := step{
			Token:       lp.Token,
			Logprob:     lp.Logprob,
			Probability: math.Exp(lp.Logprob),
			TopLogprobs: make([]alternative, 0, len(lp.TopLogprobs)),
		}
		for _, top := range lp.TopLogprobs {
			s.TopLogprobs = append(s.TopLogprobs, alternative{
				Token:       top.Token,
				Logprob:     top.Logprob,
				Probability: math.Exp(top.Logprob),
			})
		}
		steps = append(steps, s)
	}
	return steps
}

// CompleteLogprobsHandler samples a completion and answers, for every
// generated token, its log probability and the most likely alternatives.
func CompleteLogprobsHandler(c echo.Context) error {
	type logprobsBody struct {
		Prompt      string   `json:"prompt" validate:"required"`
		Model       string   `json:"model"`
		MaxTokens   *int     `json:"max_tokens" validate:"omitempty,min=1,max=4096"`
		Temperature *float64 `json:"temperature" validate:"omitempty,min=0,max=2"`
		TopP        *float64 `json:"top_p" validate:"omitempty,min=0,max=1"`
		TopLogprobs *int     `json:"top_logprobs"`
	}

	type logprobsResponse struct {
		Content string   `json:"content"`
		Model   string   `json:"model"`
		Steps   []step   `json:"steps"`
		Usage   ai.Usage `json:"usage"`
	}

	data := new(logprobsBody)
	messages := sutil.Messages{
		"prompt":      prompt400,
		"max_tokens":  "max_tokens must be between 1 and 4096",
		"temperature": "temperature must be between 0 and 2",
		"top_p":       "top_p must be between 0 and 1",
	}
	if msg := sutil.BindAndValidate(c, data, messages, prompt400); msg != "" {
		return sutil.BadRequest(c, msg)
	}

	app := middleware.GetApp(c)
	model := data.Model
	if model == "" {
		model = app.ChatModel
	}
	maxTokens, temperature, topP, top := logprobsMaxTokens, logprobsTemperature, logprobsTopP, logprobsTop
	if data.MaxTokens != nil {
		maxTokens = *data.MaxTokens
	}
	if data.Temperature != nil {
		temperature = *data.Temperature
	}
	if data.TopP != nil {
		topP = *data.TopP
	}
	if data.TopLogprobs != nil {
		top = *data.TopLogprobs
	}

	res, err := app.AiClient.GenerateChat(c.Request().Context(),
		[]ai.ChatMessage{ai.UserMessage(util.SanitizeText(data.Prompt))},
		ai.WithModel(model),
		ai.WithMaxTokens(maxTokens),
		ai.WithTemperature(temperature),
		ai.WithTopP(topP),
		ai.WithLogprobs(top),
	)
	if err != nil {
		return sutil.UpstreamError(c, "Failed to generate completion", err)
	}

	if res.Model != "" {
		model = res.Model
	}
	return c.JSON(http.StatusOK, logprobsResponse{
		Content: res.Text,
		Model:   model,
		Steps:   toSteps(res.Logprobs),
		Usage:   res.Usage,
	})
}
