package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/cozyai/kitchenette/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
)

// GenerateEmbeddings creates one embedding per input text in a single
// request. Vectors are returned in input order.
//
// Example:
//
//	res, err := client.GenerateEmbeddings(ctx, []string{"cat", "dog"}, ai.WithModel("text-embedding-3-small"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println("Embedding length:", len(res.Vectors[0]))
func (c *OpenAIClient) GenerateEmbeddings(
	ctx context.Context,
	texts []string,
	opts ...ai.GenerateOption,
) (*ai.EmbeddingResult, error) {
	if c.EmbeddingClient == nil {
		return nil, ai.ErrNotConfigured
	}
	options := ai.ApplyOptions(ai.GenerateOptions{Model: c.embeddingModel}, opts...)
	if len(texts) == 0 {
		return &ai.EmbeddingResult{Model: options.Model, Vectors: [][]float64{}}, nil
	}

	rCtx, release, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	body := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: options.Model,
	}

	start := time.Now()
	response, err := c.EmbeddingClient.Embeddings.New(rCtx, body)
	if err != nil {
		return nil, err
	}

	usage := ai.Usage{
		InputTokens: int(response.Usage.PromptTokens),
		TotalTokens: int(response.Usage.TotalTokens),
	}
	c.Record(usage, time.Since(start).Milliseconds())

	if len(response.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response size mismatch: got %d want %d", len(response.Data), len(texts))
	}

	out := make([][]float64, len(texts))
	for _, embedding := range response.Data {
		dataIdx := int(embedding.Index)
		if dataIdx < 0 || dataIdx >= len(texts) {
			return nil, fmt.Errorf("embedding index out of range: %d", embedding.Index)
		}
		out[dataIdx] = embedding.Embedding
	}
	for i := range out {
		if out[i] == nil {
			return nil, fmt.Errorf("missing embedding for index %d", i)
		}
	}

	return &ai.EmbeddingResult{Model: options.Model, Vectors: out, Usage: usage}, nil
}
