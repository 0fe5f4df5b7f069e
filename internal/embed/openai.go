package embed

import (
	"context"
	goerrors "errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nataliafedorovabi/OBS-book-search/internal/errors"
)

// Config holds settings for the OpenAI-compatible embedding endpoint.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
}

// DefaultConfig returns the production embedding settings. The corpus is
// multilingual (Russian book text, occasional English terms), so the
// default model must handle both.
func DefaultConfig() Config {
	return Config{
		Model:      "voyage-multilingual-2",
		Dimensions: 1024,
	}
}

// OpenAIEmbedder implements Embedder over any OpenAI-compatible API.
type OpenAIEmbedder struct {
	client   *openai.Client
	cfg      Config
	recorder TokenRecorder
}

// NewOpenAIEmbedder creates an embedding client. recorder may be nil when
// no token budget is enforced.
func NewOpenAIEmbedder(cfg Config, recorder TokenRecorder) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIEmbedder{
		client:   openai.NewClientWithConfig(clientCfg),
		cfg:      cfg,
		recorder: recorder,
	}
}

// Embed implements Embedder.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.recorder != nil && !e.recorder.CanSpend() {
		return nil, errors.New(errors.ErrCodeBudgetExceeded,
			"embedding token budget exhausted", nil)
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          openai.EmbeddingModel(e.cfg.Model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	})
	if err != nil {
		return nil, classifyEmbeddingError(err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New(errors.ErrCodeOracleMalformed,
			"empty embedding response", nil)
	}

	if e.recorder != nil {
		e.recorder.Record(resp.Usage.TotalTokens)
	}
	return resp.Data[0].Embedding, nil
}

// Dimensions implements Embedder.
func (e *OpenAIEmbedder) Dimensions() int { return e.cfg.Dimensions }

// ModelName implements Embedder.
func (e *OpenAIEmbedder) ModelName() string { return e.cfg.Model }

func classifyEmbeddingError(err error) error {
	var apiErr *openai.APIError
	if goerrors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 {
			return errors.New(errors.ErrCodeOracleRateLimited,
				fmt.Sprintf("embedding API rate limited: %s", apiErr.Message), err)
		}
		return errors.New(errors.ErrCodeOracleUnavailable,
			fmt.Sprintf("embedding API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message), err)
	}
	return errors.New(errors.ErrCodeOracleUnavailable, "embedding request failed", err)
}
