package ai

import (
	"context"
	"errors"
)

var (
	// ErrUnsupported is returned when a provider cannot serve a feature, such
	// as token log probabilities on Ollama.
	ErrUnsupported = errors.New("operation not supported by provider")
	// ErrNoChoices is returned when the provider answered without any completion.
	ErrNoChoices = errors.New("no choices in response from model")
	// ErrNotConfigured is returned when a client has no credentials for a capability.
	ErrNotConfigured = errors.New("ai client is not configured")
)

// ChatMessage represents a single message in a chat conversation.
//
// Role must be one of:
//   - "system"    → additional instructions
//   - "user"      → a user-provided message
//   - "assistant" → a message from the AI assistant
type ChatMessage struct {
	Message string `json:"message"`
	Role    string `json:"role"`
}

// UserMessage is shorthand for a single user turn.
func UserMessage(text string) ChatMessage {
	return ChatMessage{Role: "user", Message: text}
}

// GenerateOptions holds configuration for AI generation requests.
type GenerateOptions struct {
	Model         string   // Model identifier to use for generation
	SystemPrompts []string // System prompts prepended to the request
	Temperature   float64  // Sampling temperature (0.0-2.0)
	MaxTokens     int      // Upper bound on generated tokens, 0 leaves it to the provider
	TopP          float64  // Nucleus sampling, 0 leaves it to the provider
	Logprobs      bool     // Return per-token log probabilities
	TopLogprobs   int      // Alternatives per token when Logprobs is set (0-20)
}

// Usage is the token accounting of a single request.
type Usage struct {
	InputTokens  int `json:"prompt_tokens"`
	OutputTokens int `json:"completion_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// ModelMetrics contains performance metrics from AI model operations.
type ModelMetrics struct {
	InputTokens    int     `json:"input_tokens"`
	OutputTokens   int     `json:"output_tokens"`
	TotalTokens    int     `json:"total_tokens"`
	Requests       int     `json:"requests"`
	DurationMs     int64   `json:"duration_ms"`
	TokenPerSecond float32 `json:"tokens_per_second"`
}

// EmbeddingResult holds one vector per input text, in input order.
type EmbeddingResult struct {
	Model   string      `json:"model"`
	Vectors [][]float64 `json:"vectors"`
	Usage   Usage       `json:"usage"`
}

// TopLogprob is one alternative token considered at a position.
type TopLogprob struct {
	Token   string  `json:"token"`
	Logprob float64 `json:"logprob"`
}

// TokenLogprob is the sampled token at one position with its alternatives.
type TokenLogprob struct {
	Token       string       `json:"token"`
	Logprob     float64      `json:"logprob"`
	TopLogprobs []TopLogprob `json:"top_logprobs"`
}

// ChatResult is the outcome of a chat completion. Logprobs is nil unless
// they were requested and the provider returned them.
type ChatResult struct {
	Model        string         `json:"model"`
	Text         string         `json:"text"`
	FinishReason string         `json:"finish_reason,omitempty"`
	Logprobs     []TokenLogprob `json:"logprobs,omitempty"`
	Usage        Usage          `json:"usage"`
}

// StreamEvent represents an event in a streaming response
type StreamEvent struct {
	Type      string // "step" | "content" | "error"
	Step      string // step name (when Type="step")
	Content   string // text content (when Type="content"), message (when Type="error")
	Reasoning string // reasoning content (when Step="thinking")
}

// GenerateOption is a functional option for configuring AI generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel returns a GenerateOption that sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		if model != "" {
			o.Model = model
		}
	}
}

// WithSystemPrompts returns a GenerateOption that sets the system prompts
// to prepend to the generation request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature returns a GenerateOption that sets the sampling temperature.
// Higher values (e.g., 1.0) produce more random outputs, while lower values
// (e.g., 0.2) make outputs more focused and deterministic.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithMaxTokens limits the number of generated tokens.
func WithMaxTokens(n int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = n
	}
}

// WithTopP sets nucleus sampling.
func WithTopP(p float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.TopP = p
	}
}

// WithLogprobs requests per-token log probabilities with up to top
// alternatives per position. top is clamped to 0..20.
func WithLogprobs(top int) GenerateOption {
	return func(o *GenerateOptions) {
		o.Logprobs = true
		o.TopLogprobs = ClampTopLogprobs(top)
	}
}

// ClampTopLogprobs limits n to the range providers accept.
func ClampTopLogprobs(n int) int {
	return max(0, min(n, 20))
}

// ApplyOptions folds opts over defaults.
func ApplyOptions(defaults GenerateOptions, opts ...GenerateOption) GenerateOptions {
	for _, o := range opts {
		o(&defaults)
	}
	return defaults
}

// Client defines the interface for the hosted model operations this service
// exposes. Implementations talk to a concrete provider.
type Client interface {
	GenerateEmbeddings(
		ctx context.Context,
		texts []string,
		opts ...GenerateOption,
	) (*EmbeddingResult, error)

	GenerateChat(
		ctx context.Context,
		messages []ChatMessage,
		opts ...GenerateOption,
	) (*ChatResult, error)

	GenerateChatStream(
		ctx context.Context,
		messages []ChatMessage,
		opts ...GenerateOption,
	) (<-chan StreamEvent, error)

	GenerateCompletionWithFormat(
		ctx context.Context,
		name string,
		description string,
		prompt string,
		out any,
		opts ...GenerateOption,
	) error

	ResetMetrics()
	GetMetrics() ModelMetrics
}
