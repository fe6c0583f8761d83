package routes

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

// Endpoints lists the API for the info document served without a frontend build.
var Endpoints = map[string]string{
	"embeddings":        "POST /api/embeddings",
	"similarity":        "POST /api/similarity",
	"complete":          "POST /api/complete",
	"completeStream":    "POST /api/complete/stream",
	"completeLogprobs":  "POST /api/complete-logprobs",
	"rag":               "POST /api/rag",
	"ragPipeline":       "POST /api/rag/pipeline",
	"extractStructured": "POST /api/extract-structured",
	"extractGraph":      "POST /api/extract-graph",
	"compareModels":     "POST /api/compare-models",
	"tokenize":          "POST /api/tokenize",
	"scenarios":         "GET /api/scenarios",
	"graphLayout":       "POST /api/graph/layout",
	"graphStream":       "POST /api/graph/stream",
	"parseHubs":         "POST /api/graph/parse-hubs",
	"visualize":         "POST /api/visualize",
	"metrics":           "GET /api/metrics",
}

// InfoHandler describes the API when no frontend build is served.
func InfoHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message":   "API Server Running",
		"status":    "development",
		"note":      "No frontend build found, only the API is served",
		"endpoints": Endpoints,
	})
}

// IndexHandler serves index.html of the frontend build in dir.
func IndexHandler(dir string) echo.HandlerFunc {
	index := filepath.Join(dir, "index.html")
	return func(c echo.Context) error {
		if _, err := os.Stat(index); err != nil {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error":   "index.html not found",
				"message": "Build the frontend into " + dir,
			})
		}
		return c.File(index)
	}
}
