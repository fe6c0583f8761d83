// Package stub provides an in-memory ai.Client for tests and offline runs.
package stub

import (
	"context"
	"fmt"
	"sync"

	"github.com/cozyai/kitchenette/backend/pkg/ai"
)

// Call records one request made against the stub.
type Call struct {
	Method   string
	Model    string
	Texts    []string
	Messages []ai.ChatMessage
	Options  ai.GenerateOptions
}

// Client answers every request from its function fields. A nil field makes
// the matching method return an error.
type Client struct {
	ai.Metrics

	Embed  func(model string, texts []string) ([][]float64, error)
	Chat   func(opts ai.GenerateOptions, messages []ai.ChatMessage) (*ai.ChatResult, error)
	Format func(name, prompt string, out any) error

	mu    sync.Mutex
	calls []Call
}

// Calls returns the requests seen so far.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

func (c *Client) record(call Call) {
	c.mu.Lock()
	c.calls = append(c.calls, call)
	c.mu.Unlock()
}

// GenerateEmbeddings implements ai.Client.
func (c *Client) GenerateEmbeddings(ctx context.Context, texts []string, opts ...ai.GenerateOption) (*ai.EmbeddingResult, error) {
	options := ai.ApplyOptions(ai.GenerateOptions{}, opts...)
	c.record(Call{Method: "embeddings", Model: options.Model, Texts: texts, Options: options})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.Embed == nil {
		return nil, fmt.Errorf("stub embeddings: %w", ai.ErrNotConfigured)
	}
	vectors, err := c.Embed(options.Model, texts)
	if err != nil {
		return nil, err
	}
	usage := ai.Usage{InputTokens: len(texts), TotalTokens: len(texts)}
	c.Record(usage, 0)
	return &ai.EmbeddingResult{Model: options.Model, Vectors: vectors, Usage: usage}, nil
}

// GenerateChat implements ai.Client.
func (c *Client) GenerateChat(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (*ai.ChatResult, error) {
	options := ai.ApplyOptions(ai.GenerateOptions{}, opts...)
	c.record(Call{Method: "chat", Model: options.Model, Messages: messages, Options: options})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.Chat == nil {
		return nil, fmt.Errorf("stub chat: %w", ai.ErrNotConfigured)
	}
	res, err := c.Chat(options, messages)
	if err != nil {
		return nil, err
	}
	if res.Model == "" {
		res.Model = options.Model
	}
	c.Record(res.Usage, 0)
	return res, nil
}

// GenerateChatStream implements ai.Client by splitting the Chat answer into words.
func (c *Client) GenerateChatStream(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (<-chan ai.StreamEvent, error) {
	res, err := c.GenerateChat(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}
	out := make(chan ai.StreamEvent, len(res.Text)+1)
	start := 0
	for i, r := range res.Text {
		if r == ' ' && i > start {
			out <- ai.StreamEvent{Type: "content", Content: res.Text[start:i]}
			start = i
		}
	}
	if start < len(res.Text) {
		out <- ai.StreamEvent{Type: "content", Content: res.Text[start:]}
	}
	close(out)
	return out, nil
}

// GenerateCompletionWithFormat implements ai.Client.
func (c *Client) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	options := ai.ApplyOptions(ai.GenerateOptions{}, opts...)
	c.record(Call{Method: "format", Model: options.Model, Messages: []ai.ChatMessage{ai.UserMessage(prompt)}, Options: options})
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.Format == nil {
		return fmt.Errorf("stub format: %w", ai.ErrNotConfigured)
	}
	return c.Format(name, prompt, out)
}

var _ ai.Client = (*Client)(nil)
