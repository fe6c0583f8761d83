package ollama

import (
	"context"
	"fmt"

	"github.com/cozyai/kitchenette/backend/pkg/ai"

	"github.com/ollama/ollama/api"
)

// GenerateEmbeddings creates one embedding per input text using the
// configured embedding model on Ollama. Vectors are returned in input order.
func (c *OllamaClient) GenerateEmbeddings(
	ctx context.Context,
	texts []string,
	opts ...ai.GenerateOption,
) (*ai.EmbeddingResult, error) {
	options := ai.ApplyOptions(ai.GenerateOptions{Model: c.embeddingModel}, opts...)
	if len(texts) == 0 {
		return &ai.EmbeddingResult{Model: options.Model, Vectors: [][]float64{}}, nil
	}

	rCtx, release, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	req := &api.EmbedRequest{
		Model: options.Model,
		Input: texts,
	}

	res, err := c.Client.Embed(rCtx, req)
	if err != nil {
		return nil, err
	}

	usage := ai.Usage{
		InputTokens: res.PromptEvalCount,
		TotalTokens: res.PromptEvalCount,
	}
	c.Record(usage, res.TotalDuration.Milliseconds())

	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding response size mismatch: got %d want %d", len(res.Embeddings), len(texts))
	}

	out := make([][]float64, len(res.Embeddings))
	for i, v := range res.Embeddings {
		vec := make([]float64, len(v))
		for j, val := range v {
			vec[j] = float64(val)
		}
		out[i] = vec
	}

	return &ai.EmbeddingResult{Model: options.Model, Vectors: out, Usage: usage}, nil
}
