package main

import (
	"github.com/cozyai/kitchenette/backend/internal/server"
	mid "github.com/cozyai/kitchenette/backend/internal/server/middleware"
	"github.com/cozyai/kitchenette/backend/internal/util"
	"github.com/cozyai/kitchenette/backend/pkg/ai"
	"github.com/cozyai/kitchenette/backend/pkg/ai/ollama"
	"github.com/cozyai/kitchenette/backend/pkg/ai/openai"
	"github.com/cozyai/kitchenette/backend/pkg/logger"
	"github.com/cozyai/kitchenette/backend/pkg/logger/charm"
	"github.com/cozyai/kitchenette/backend/pkg/tokenizer"
)

const defaultGithubModelsURL = "https://models.github.ai/inference"

func main() {
	util.LoadEnv()

	initLogger()
	defer logger.Close()

	tok := tokenizer.New()
	chatKey := util.GetEnvFirst("AI_CHAT_KEY", "OPENAI_API_KEY")
	chatModel := util.GetEnvString("AI_CHAT_MODEL", "gpt-4o-mini")
	embeddingModel := util.GetEnvString("AI_EMBED_MODEL", "text-embedding-3-small")
	parallel := int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 4))
	timeoutMin := int(util.GetEnvNumeric("AI_TIMEOUT_MIN", 2))

	var aiClient ai.Client
	switch adapter := util.GetEnv("AI_ADAPTER"); adapter {
	case "ollama":
		client, err := ollama.NewOllamaClient(ollama.NewOllamaClientParams{
			ChatModel:      chatModel,
			EmbeddingModel: embeddingModel,

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  chatKey,

			MaxConcurrentRequests: parallel,
			TimeoutMin:            timeoutMin,
			CountTokens: func(text string) int {
				n, err := tok.Count(text, tokenizer.EncodingForModel(chatModel))
				if err != nil {
					logger.Debug("Failed to count tokens", "err", err)
					return 0
				}
				return n
			},
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		aiClient = client
	case "", "openai":
		embedKey := util.GetEnvFirst("AI_EMBED_KEY", "AI_CHAT_KEY", "OPENAI_API_KEY")
		aiClient = openai.NewOpenAIClient(openai.NewOpenAIClientParams{
			ChatModel:      chatModel,
			EmbeddingModel: embeddingModel,

			ChatURL:      util.GetEnv("AI_CHAT_URL"),
			ChatKey:      chatKey,
			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: embedKey,

			MaxConcurrentRequests: parallel,
			TimeoutMin:            timeoutMin,
		})
	default:
		logger.Fatal("Unknown AI_ADAPTER", "adapter", adapter)
	}

	if chatKey == "" && util.GetEnv("AI_ADAPTER") != "ollama" {
		logger.Warn("No API key set, provider requests will fail", "env", "AI_CHAT_KEY or OPENAI_API_KEY")
	}

	var compareClient ai.Client
	if token := util.GetEnv("GITHUB_TOKEN"); token != "" {
		compareClient = openai.NewOpenAIClient(openai.NewOpenAIClientParams{
			ChatModel: "openai/gpt-4o-mini",
			ChatURL:   util.GetEnvString("GITHUB_MODELS_URL", defaultGithubModelsURL),
			ChatKey:   token,

			MaxConcurrentRequests: parallel,
			TimeoutMin:            timeoutMin,
		})
	} else {
		logger.Info("GITHUB_TOKEN not set, model comparison uses the default provider")
	}

	app := &mid.App{
		AiClient:      aiClient,
		CompareClient: compareClient,
		Tokenizer:     tok,

		ChatModel:      chatModel,
		EmbeddingModel: embeddingModel,
		EmbeddingModels: util.GetEnvList("AI_EMBED_MODELS", []string{
			"text-embedding-ada-002",
			"text-embedding-3-small",
		}),
	}

	server.Init(app, server.Config{
		Port:      util.GetEnvString("PORT", "3000"),
		StaticDir: util.GetEnvString("STATIC_DIR", "dist"),
		BodyLimit: util.GetEnvString("BODY_LIMIT", "2M"),
		RateLimit: util.GetEnvNumeric("RATE_LIMIT", 0),
	})
}

// initLogger builds the console backend (LOG_FORMAT) and, with LOG_FILE set,
// a rotating file backend (LOG_FILE_FORMAT, json by default).
func initLogger() {
	debug := util.GetEnvBool("DEBUG", false)

	format, formatErr := charm.ParseFormat(util.GetEnv("LOG_FORMAT"))
	if formatErr != nil {
		format = charm.FormatText
	}
	backends := []logger.Backend{charm.New(charm.Params{Format: format, Debug: debug})}

	var fileErr error
	if path := util.GetEnv("LOG_FILE"); path != "" {
		fileFormat, err := charm.ParseFormat(util.GetEnvString("LOG_FILE_FORMAT", "json"))
		if err != nil {
			fileFormat, fileErr = charm.FormatJSON, err
		}
		backends = append(backends, charm.NewRotating(charm.RotateParams{
			Path:       path,
			MaxSize:    int(util.GetEnvNumeric("LOG_FILE_MAX_MB", 10)),
			MaxBackups: int(util.GetEnvNumeric("LOG_FILE_BACKUPS", 5)),
			MaxAge:     int(util.GetEnvNumeric("LOG_FILE_MAX_AGE_DAYS", 30)),
		}, fileFormat, debug))
	}
	logger.Init(backends...)

	if formatErr != nil {
		logger.Warn("Ignoring LOG_FORMAT", "err", formatErr)
	}
	if fileErr != nil {
		logger.Warn("Ignoring LOG_FILE_FORMAT", "err", fileErr)
	}
}
