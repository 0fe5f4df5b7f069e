package oracle

import (
	"context"
	goerrors "errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nataliafedorovabi/OBS-book-search/internal/errors"
)

// ClientConfig holds settings for the OpenAI-compatible completion
// endpoint (OpenRouter in production).
type ClientConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

// DefaultClientConfig returns production defaults. Low temperature keeps
// the structured replies parseable.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Model:       "openai/gpt-4o-mini",
		Temperature: 0.3,
		MaxTokens:   1000,
	}
}

// OpenAIClient implements CompletionClient over any OpenAI-compatible API.
type OpenAIClient struct {
	client *openai.Client
	cfg    ClientConfig
}

// NewOpenAIClient creates a completion client.
func NewOpenAIClient(cfg ClientConfig) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
	}
}

// Complete implements CompletionClient.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", classifyAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(errors.ErrCodeOracleMalformed,
			"completion reply has no choices", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyAPIError maps transport failures onto the oracle error codes
// so the retry loop can distinguish rate limits from hard failures.
func classifyAPIError(err error) error {
	var apiErr *openai.APIError
	if goerrors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 {
			return errors.New(errors.ErrCodeOracleRateLimited,
				fmt.Sprintf("completion API rate limited: %s", apiErr.Message), err)
		}
		return errors.New(errors.ErrCodeOracleUnavailable,
			fmt.Sprintf("completion API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message), err)
	}

	var reqErr *openai.RequestError
	if goerrors.As(err, &reqErr) {
		return errors.New(errors.ErrCodeOracleUnavailable,
			fmt.Sprintf("completion API error %d", reqErr.HTTPStatusCode), err)
	}

	return errors.New(errors.ErrCodeOracleTimeout, "completion request failed", err)
}
