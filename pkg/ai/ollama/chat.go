package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/cozyai/kitchenette/backend/pkg/ai"
	"github.com/cozyai/kitchenette/backend/pkg/logger"

	"github.com/ollama/ollama/api"
)

const defaultContextTokens = 4096

func (c *OllamaClient) chatRequest(
	options ai.GenerateOptions,
	messages []ai.ChatMessage,
	stream bool,
) *api.ChatRequest {
	all := ai.BuildMessages(options, messages)
	msgs := make([]api.Message, 0, len(all))
	var chatString strings.Builder
	for _, m := range all {
		role := m.Role
		if role == "" {
			role = "user"
		}
		msgs = append(msgs, api.Message{Role: role, Content: m.Message})
		chatString.WriteString(m.Message)
	}

	req := &api.ChatRequest{
		Model:    options.Model,
		Messages: msgs,
		Stream:   &stream,
		Options:  map[string]any{"temperature": options.Temperature},
	}
	if options.MaxTokens > 0 {
		req.Options["num_predict"] = options.MaxTokens
	}
	if options.TopP > 0 {
		req.Options["top_p"] = options.TopP
	}

	if c.countTokens != nil {
		tokens := 200 + c.countTokens(chatString.String())
		if options.MaxTokens > 0 {
			tokens += options.MaxTokens
		}
		if tokens > defaultContextTokens {
			req.Options["num_ctx"] = tokens
		}
	}

	return req
}

func (c *OllamaClient) acquire(ctx context.Context) (context.Context, func(), error) {
	rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		cancel()
		return nil, nil, err
	}
	return rCtx, func() {
		c.reqLock.Release(1)
		cancel()
	}, nil
}

func (c *OllamaClient) chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	rCtx, release, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var final api.ChatResponse
	if err := c.Client.Chat(rCtx, req, func(cr api.ChatResponse) error {
		final.Message.Content += cr.Message.Content
		if cr.Done {
			final.Done = true
			final.DoneReason = cr.DoneReason
			final.Model = cr.Model
			final.Metrics = cr.Metrics
		}
		return nil
	}); err != nil {
		return nil, err
	}

	c.Record(usageOf(final.Metrics), final.Metrics.TotalDuration.Milliseconds())
	return &final, nil
}

func usageOf(m api.Metrics) ai.Usage {
	return ai.Usage{
		InputTokens:  m.PromptEvalCount,
		OutputTokens: m.EvalCount,
		TotalTokens:  m.PromptEvalCount + m.EvalCount,
	}
}

// GenerateChat sends a multi-turn conversation and returns the assistant reply.
// Ollama does not report token log probabilities, so asking for them fails
// with ai.ErrUnsupported before any request is made.
func (c *OllamaClient) GenerateChat(
	ctx context.Context,
	messages []ai.ChatMessage,
	opts ...ai.GenerateOption,
) (*ai.ChatResult, error) {
	options := ai.ApplyOptions(ai.GenerateOptions{
		Model:       c.chatModel,
		Temperature: 0.7,
	}, opts...)
	if options.Logprobs {
		return nil, fmt.Errorf("ollama logprobs: %w", ai.ErrUnsupported)
	}

	final, err := c.chat(ctx, c.chatRequest(options, messages, false))
	if err != nil {
		return nil, err
	}

	res := &ai.ChatResult{
		Model:        options.Model,
		Text:         final.Message.Content,
		FinishReason: final.DoneReason,
		Usage:        usageOf(final.Metrics),
	}
	if final.Model != "" {
		res.Model = final.Model
	}

	logger.Debug("[AI] Chat completion", "model", res.Model, "tokens", res.Usage.TotalTokens)
	return res, nil
}

// GenerateCompletionWithFormat enforces a JSON schema and unmarshals into out.
func (c *OllamaClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	if out == nil {
		return errors.New("out must be a non-nil pointer")
	}
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New("out must be a non-nil pointer")
	}

	formatBytes, err := json.Marshal(ai.GenerateSchema(out))
	if err != nil {
		return err
	}

	options := ai.ApplyOptions(ai.GenerateOptions{
		Model:       c.chatModel,
		Temperature: 0.1,
	}, opts...)

	req := c.chatRequest(options, []ai.ChatMessage{ai.UserMessage(prompt)}, false)
	req.Format = json.RawMessage(formatBytes)

	final, err := c.chat(ctx, req)
	if err != nil {
		return err
	}
	if final.Message.Content == "" {
		return fmt.Errorf("empty response from model %s for %s", options.Model, name)
	}
	return ai.UnmarshalFlexible(final.Message.Content, out)
}

// GenerateChatStream streams the assistant reply incrementally.
func (c *OllamaClient) GenerateChatStream(
	ctx context.Context,
	messages []ai.ChatMessage,
	opts ...ai.GenerateOption,
) (<-chan ai.StreamEvent, error) {
	options := ai.ApplyOptions(ai.GenerateOptions{
		Model:       c.chatModel,
		Temperature: 0.7,
	}, opts...)
	if options.Logprobs {
		return nil, fmt.Errorf("ollama logprobs: %w", ai.ErrUnsupported)
	}
	req := c.chatRequest(options, messages, true)

	rCtx, release, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan ai.StreamEvent, 16)

	go func() {
		defer release()
		defer close(out)

		err := c.Client.Chat(rCtx, req, func(cr api.ChatResponse) error {
			if s := cr.Message.Content; s != "" {
				select {
				case out <- ai.StreamEvent{Type: "content", Content: s}:
				case <-rCtx.Done():
					return rCtx.Err()
				}
			}
			if cr.Done {
				c.Record(usageOf(cr.Metrics), cr.TotalDuration.Milliseconds())
			}
			return nil
		})
		if err != nil && rCtx.Err() == nil {
			logger.Error("[AI] Chat stream failed", "model", options.Model, "err", err)
			select {
			case out <- ai.StreamEvent{Type: "error", Content: err.Error()}:
			case <-rCtx.Done():
			}
		}
	}()

	return out, nil
}
