package routes

import (
	"net/http"

	"github.com/cozyai/kitchenette/backend/internal/server/middleware"
	sutil "github.com/cozyai/kitchenette/backend/internal/server/util"
	"github.com/cozyai/kitchenette/backend/pkg/tokenizer"

	"github.com/labstack/echo/v4"
)

// TokenizeHandler splits a text into tokens with their character offsets.
// The encoding is taken from the request, then derived from the model.
func TokenizeHandler(c echo.Context) error {
	type tokenizeBody struct {
		Text     string `json:"text" validate:"required"`
		Encoding string `json:"encoding" validate:"omitempty,oneof=o200k_base cl100k_base p50k_base p50k_edit r50k_base"`
		Model    string `json:"model"`
	}

	type tokenizeResponse struct {
		Encoding string            `json:"encoding"`
		Count    int               `json:"count"`
		Chars    int               `json:"chars"`
		Tokens   []tokenizer.Token `json:"tokens"`
	}

	data := new(tokenizeBody)
	messages := sutil.Messages{
		"text":     text400,
		"encoding": "Unknown encoding",
	}
	if msg := sutil.BindAndValidate(c, data, messages, text400); msg != "" {
		return sutil.BadRequest(c, msg)
	}

	encoding := data.Encoding
	if encoding == "" && data.Model != "" {
		encoding = tokenizer.EncodingForModel(data.Model)
	}
	if encoding == "" {
		encoding = tokenizer.DefaultEncoding
	}

	app := middleware.GetApp(c)
	tokens, err := app.Tokenizer.Tokenize(data.Text, encoding)
	if err != nil {
		return sutil.UpstreamError(c, "Failed to tokenize text", err)
	}

	return c.JSON(http.StatusOK, tokenizeResponse{
		Encoding: encoding,
		Count:    len(tokens),
		Chars:    len([]rune(data.Text)),
		Tokens:   tokens,
	})
}
