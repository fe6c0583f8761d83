package util

import (
	"errors"
	"net/http"

	"github.com/cozyai/kitchenette/backend/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
)

// ErrorResponse is the body of every failed request. Details is only set
// for upstream failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// BadRequest answers 400 with msg.
func BadRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// NotFound answers 404 with msg.
func NotFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, ErrorResponse{Error: msg})
}

// UpstreamError logs err and answers 500 with msg and the provider message.
func UpstreamError(c echo.Context, msg string, err error) error {
	logger.Error(msg, "err", err, "path", c.Path())
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   msg,
		Details: ProviderMessage(err),
	})
}

// ProviderMessage returns the message the provider sent for err when it is
// an API error of one of the supported SDKs, otherwise err.Error().
func ProviderMessage(err error) string {
	if err == nil {
		return ""
	}

	var oaErr *openai.Error
	if errors.As(err, &oaErr) && oaErr.Message != "" {
		return oaErr.Message
	}

	var olErr api.StatusError
	if errors.As(err, &olErr) && olErr.ErrorMessage != "" {
		return olErr.ErrorMessage
	}

	return err.Error()
}
