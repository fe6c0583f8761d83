package ollama

import (
	"net/http"
	"net/url"

	"github.com/cozyai/kitchenette/backend/pkg/ai"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"
)

const defaultBaseURL = "http://localhost:11434"

// OllamaClient implements ai.Client using Ollama as the backend.
// It supports chat, streaming, structured output and embeddings via
// locally-hosted models. Token log probabilities are not available.
type OllamaClient struct {
	ai.Metrics

	chatModel      string
	embeddingModel string
	timeoutMin     int
	countTokens    func(string) int

	reqLock *semaphore.Weighted

	Client *api.Client
}

// NewOllamaClientParams contains configuration options for creating a new OllamaClient.
type NewOllamaClientParams struct {
	ChatModel      string
	EmbeddingModel string

	BaseURL string
	ApiKey  string

	MaxConcurrentRequests int64
	TimeoutMin            int

	// CountTokens sizes num_ctx for long prompts. Nil keeps the model default.
	CountTokens func(string) int
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so original request isn't modified
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		// don't overwrite if already set
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewOllamaClient creates a new Ollama-based AI client with the specified configuration.
// It connects to the Ollama server at the given BaseURL (localhost:11434 if empty).
func NewOllamaClient(
	params NewOllamaClientParams,
) (*OllamaClient, error) {
	if params.BaseURL == "" {
		params.BaseURL = defaultBaseURL
	}
	u, err := url.Parse(params.BaseURL)
	if err != nil {
		return nil, err
	}
	if params.MaxConcurrentRequests <= 0 {
		params.MaxConcurrentRequests = 4
	}
	if params.TimeoutMin <= 0 {
		params.TimeoutMin = 2
	}

	httpClient := http.DefaultClient
	if params.ApiKey != "" {
		httpClient = &http.Client{
			Transport: &headerTransport{
				headers: map[string]string{
					"Authorization": "Bearer " + params.ApiKey,
				},
				rt: http.DefaultTransport,
			},
		}
	}

	return &OllamaClient{
		chatModel:      params.ChatModel,
		embeddingModel: params.EmbeddingModel,
		timeoutMin:     params.TimeoutMin,
		countTokens:    params.CountTokens,

		reqLock: semaphore.NewWeighted(params.MaxConcurrentRequests),

		Client: api.NewClient(u, httpClient),
	}, nil
}

var _ ai.Client = (*OllamaClient)(nil)
