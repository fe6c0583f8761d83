package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/cozyai/kitchenette/backend/pkg/ai"
	"github.com/cozyai/kitchenette/backend/pkg/logger"

	"github.com/openai/openai-go/v3"
)

func (c *OpenAIClient) chatOptions(temperature float64, opts []ai.GenerateOption) ai.GenerateOptions {
	return ai.ApplyOptions(ai.GenerateOptions{
		Model:       c.chatModel,
		Temperature: temperature,
	}, opts...)
}

func chatParams(options ai.GenerateOptions, messages []ai.ChatMessage) openai.ChatCompletionNewParams {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(options.SystemPrompts)+len(messages))
	for _, message := range ai.BuildMessages(options, messages) {
		switch message.Role {
		case "system":
			msgs = append(msgs, openai.SystemMessage(message.Message))
		case "assistant":
			msgs = append(msgs, openai.AssistantMessage(message.Message))
		default:
			msgs = append(msgs, openai.UserMessage(message.Message))
		}
	}

	body := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(options.Model),
		Messages:    msgs,
		Temperature: openai.Float(options.Temperature),
	}
	if options.MaxTokens > 0 {
		body.MaxTokens = openai.Int(int64(options.MaxTokens))
	}
	if options.TopP > 0 {
		body.TopP = openai.Float(options.TopP)
	}
	if options.Logprobs {
		body.Logprobs = openai.Bool(true)
		body.TopLogprobs = openai.Int(int64(options.TopLogprobs))
	}
	return body
}

func (c *OpenAIClient) acquire(ctx context.Context) (context.Context, func(), error) {
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

// GenerateChat sends a multi-turn chat conversation to the model and
// returns the assistant's reply.
//
// Token log probabilities are only requested and returned when the
// WithLogprobs option is given.
//
// Example:
//
//	res, err := client.GenerateChat(ctx,
//		[]ai.ChatMessage{ai.UserMessage("Hello, who are you?")},
//		ai.WithMaxTokens(150),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(res.Text)
func (c *OpenAIClient) GenerateChat(
	ctx context.Context,
	messages []ai.ChatMessage,
	opts ...ai.GenerateOption,
) (*ai.ChatResult, error) {
	if c.ChatClient == nil {
		return nil, ai.ErrNotConfigured
	}
	options := c.chatOptions(0.7, opts)
	body := chatParams(options, messages)

	rCtx, release, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	response, err := c.ChatClient.Chat.Completions.New(rCtx, body)
	if err != nil {
		return nil, err
	}

	usage := ai.Usage{
		InputTokens:  int(response.Usage.PromptTokens),
		OutputTokens: int(response.Usage.CompletionTokens),
		TotalTokens:  int(response.Usage.TotalTokens),
	}
	c.Record(usage, time.Since(start).Milliseconds())

	if len(response.Choices) == 0 {
		return nil, ai.ErrNoChoices
	}
	choice := response.Choices[0]

	res := &ai.ChatResult{
		Model:        options.Model,
		Text:         choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage:        usage,
	}
	if response.Model != "" {
		res.Model = response.Model
	}
	if options.Logprobs {
		res.Logprobs = make([]ai.TokenLogprob, 0, len(choice.Logprobs.Content))
		for _, lp := range choice.Logprobs.Content {
			tok := ai.TokenLogprob{
				Token:       lp.Token,
				Logprob:     lp.Logprob,
				TopLogprobs: make([]ai.TopLogprob, 0, len(lp.TopLogprobs)),
			}
			for _, alt := range lp.TopLogprobs {
				tok.TopLogprobs = append(tok.TopLogprobs, ai.TopLogprob{Token: alt.Token, Logprob: alt.Logprob})
			}
			res.Logprobs = append(res.Logprobs, tok)
		}
	}

	logger.Debug("[AI] Chat completion", "model", res.Model, "tokens", usage.TotalTokens)
	return res, nil
}

// GenerateCompletionWithFormat sends a prompt to the chat model and
// attempts to unmarshal the response into the provided output struct,
// using a JSON schema to enforce structure.
//
// Example:
//
//	var out graph.Extraction
//	err := client.GenerateCompletionWithFormat(ctx, "graph", "Entities and relationships", prompt, &out)
func (c *OpenAIClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	if c.ChatClient == nil {
		return ai.ErrNotConfigured
	}
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        name,
		Description: openai.String(description),
		Schema:      ai.GenerateSchema(out),
		Strict:      openai.Bool(true),
	}

	options := c.chatOptions(0.1, opts)
	body := chatParams(options, []ai.ChatMessage{ai.UserMessage(prompt)})
	body.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: schemaParam,
		},
	}

	rCtx, release, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	start := time.Now()
	response, err := c.ChatClient.Chat.Completions.New(rCtx, body)
	if err != nil {
		return err
	}
	c.Record(ai.Usage{
		InputTokens:  int(response.Usage.PromptTokens),
		OutputTokens: int(response.Usage.CompletionTokens),
		TotalTokens:  int(response.Usage.TotalTokens),
	}, time.Since(start).Milliseconds())

	if len(response.Choices) == 0 {
		return ai.ErrNoChoices
	}
	message := response.Choices[0].Message.Content
	if message == "" {
		return fmt.Errorf("empty response from model (finish_reason: %s)", response.Choices[0].FinishReason)
	}
	return ai.UnmarshalFlexible(message, out)
}

// GenerateChatStream sends a multi-turn chat conversation to the model
// and returns a channel that streams the assistant's reply incrementally.
//
// The returned channel is closed when the stream ends or the context is
// canceled. A transport failure mid-stream is delivered as an "error" event.
func (c *OpenAIClient) GenerateChatStream(
	ctx context.Context,
	messages []ai.ChatMessage,
	opts ...ai.GenerateOption,
) (<-chan ai.StreamEvent, error) {
	if c.ChatClient == nil {
		return nil, ai.ErrNotConfigured
	}
	options := c.chatOptions(0.7, opts)
	body := chatParams(options, messages)
	body.StreamOptions = openai.ChatCompletionStreamOptionsParam{
		IncludeUsage: openai.Bool(true),
	}

	rCtx, release, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	stream := c.ChatClient.Chat.Completions.NewStreaming(rCtx, body)
	contentChan := make(chan ai.StreamEvent, 10)

	go func() {
		defer release()
		defer close(contentChan)
		defer stream.Close()

		acc := openai.ChatCompletionAccumulator{}

		for stream.Next() {
			chunk := stream.Current()
			acc.AddChunk(chunk)

			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				select {
				case contentChan <- ai.StreamEvent{Type: "content", Content: chunk.Choices[0].Delta.Content}:
				case <-rCtx.Done():
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			logger.Error("[AI] Chat stream failed", "model", options.Model, "err", err)
			select {
			case contentChan <- ai.StreamEvent{Type: "error", Content: err.Error()}:
			case <-rCtx.Done():
			}
			return
		}

		c.Record(ai.Usage{
			InputTokens:  int(acc.Usage.PromptTokens),
			OutputTokens: int(acc.Usage.CompletionTokens),
			TotalTokens:  int(acc.Usage.TotalTokens),
		}, time.Since(start).Milliseconds())
	}()

	return contentChan, nil
}
