package server

import (
	"github.com/cozyai/kitchenette/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, staticDir string) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	// Frontend or API info
	if staticDir != "" {
		e.Static("/", staticDir)
		e.GET("/", routes.IndexHandler(staticDir))
	} else {
		e.GET("/", routes.InfoHandler)
	}

	apiRoutes := e.Group("/api")

	// Embedding routes
	apiRoutes.POST("/embeddings", routes.EmbeddingsHandler)
	apiRoutes.POST("/similarity", routes.SimilarityHandler)
	apiRoutes.POST("/visualize", routes.VisualizeHandler)

	// Completion routes
	apiRoutes.POST("/complete", routes.CompleteHandler)
	apiRoutes.POST("/complete/stream", routes.CompleteStreamHandler)
	apiRoutes.POST("/complete-logprobs", routes.CompleteLogprobsHandler)
	apiRoutes.POST("/compare-models", routes.CompareModelsHandler)
	apiRoutes.POST("/github-models", routes.GithubModelsHandler)
	apiRoutes.POST("/tokenize", routes.TokenizeHandler)

	// RAG routes
	apiRoutes.POST("/rag", routes.RagHandler)
	apiRoutes.POST("/rag/pipeline", routes.RagPipelineHandler)

	// Extraction routes
	apiRoutes.POST("/extract-structured", routes.ExtractStructuredHandler)
	apiRoutes.POST("/extract-graph", routes.ExtractGraphHandler)

	// Graph routes
	apiRoutes.GET("/scenarios", routes.GetScenariosHandler)
	apiRoutes.GET("/scenarios/:key", routes.GetScenarioHandler)
	apiRoutes.POST("/graph/parse-hubs", routes.ParseHubsHandler)
	apiRoutes.POST("/graph/layout", routes.GraphLayoutHandler)
	apiRoutes.POST("/graph/stream", routes.GraphStreamHandler)

	// Metrics routes
	apiRoutes.GET("/metrics", routes.GetMetricsHandler)
	apiRoutes.DELETE("/metrics", routes.DeleteMetricsHandler)
}
