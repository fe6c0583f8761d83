package middleware

import (
	"github.com/cozyai/kitchenette/backend/pkg/ai"
	"github.com/cozyai/kitchenette/backend/pkg/tokenizer"

	"github.com/labstack/echo/v4"
)

// App holds the collaborators shared by all handlers.
type App struct {
	AiClient ai.Client
	// CompareClient answers the model comparison requests. It falls back to
	// AiClient when nil.
	CompareClient ai.Client
	Tokenizer     *tokenizer.Tokenizer

	ChatModel       string
	EmbeddingModel  string
	EmbeddingModels []string
}

// Compare returns the client used for model comparisons.
func (a *App) Compare() ai.Client {
	if a.CompareClient != nil {
		return a.CompareClient
	}
	return a.AiClient
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}

// GetApp returns the App of a request handled behind AppContextMiddleware.
func GetApp(c echo.Context) *App {
	return c.(*AppContext).App
}
