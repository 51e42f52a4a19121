package openai

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mikey/keyword-tagger/internal/config"
	"github.com/mikey/keyword-tagger/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient is an implementation of the LLMClient interface for
// OpenAI-compatible chat completion endpoints
type OpenAIClient struct {
	client      *openai.Client
	modelName   string
	maxTokens   int
	temperature float32
	stream      bool
	logger      *zap.Logger
}

// NewOpenAIClient creates a new OpenAI client. The API key must already be
// validated by the caller.
func NewOpenAIClient(cfg config.OpenAIConfig, logger *zap.Logger) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		modelName:   cfg.ModelName,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		stream:      cfg.Stream,
		logger:      logger,
	}
}

// Model returns the configured model name
func (c *OpenAIClient) Model() string {
	return c.modelName
}

func (c *OpenAIClient) request(prompt string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
}

// Invoke sends the prompt and returns the answer text
func (c *OpenAIClient) Invoke(ctx context.Context, prompt string) (string, error) {
	if c.stream {
		return c.invokeStream(ctx, prompt)
	}

	resp, err := c.client.CreateChatCompletion(ctx, c.request(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from %s", c.modelName)
	}

	c.logger.Debug("Chat completion received",
		zap.String("id", resp.ID),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	return resp.Choices[0].Message.Content, nil
}

// invokeStream drains the whole stream before returning the joined answer
func (c *OpenAIClient) invokeStream(ctx context.Context, prompt string) (string, error) {
	req := c.request(prompt)
	req.Stream = true
	req.StreamOptions = &openai.StreamOptions{IncludeUsage: true}

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to open chat completion stream: %w", err)
	}
	defer stream.Close()

	acc := core.NewStreamAccumulator()
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read chat completion stream: %w", err)
		}

		if len(chunk.Choices) == 0 {
			if chunk.Usage != nil {
				c.logger.Debug("Stream usage",
					zap.Int("prompt_tokens", chunk.Usage.PromptTokens),
					zap.Int("completion_tokens", chunk.Usage.CompletionTokens))
			}
			continue
		}

		delta := chunk.Choices[0].Delta
		if delta.ReasoningContent != "" {
			acc.AddReasoning(delta.ReasoningContent)
		}
		if acc.AddAnswer(delta.Content) {
			c.logger.Debug("Answer phase started", zap.Int("reasoning_size", len(acc.Reasoning())))
		}
	}

	if reasoning := acc.Reasoning(); reasoning != "" {
		c.logger.Debug("Model reasoning", zap.String("reasoning", reasoning))
	}

	answer, err := acc.Finish()
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.modelName, err)
	}
	return answer, nil
}
