package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/mikey/keyword-tagger/internal/config"
	"github.com/mikey/keyword-tagger/internal/core"
	"go.uber.org/zap"
)

const anthropicVersion = "bedrock-2023-05-31"

// RuntimeAPI is the subset of the Bedrock runtime client used here
type RuntimeAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
	InvokeModelWithResponseStream(ctx context.Context, params *bedrockruntime.InvokeModelWithResponseStreamInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelWithResponseStreamOutput, error)
}

// BedrockClient is an implementation of the LLMClient interface using Amazon Bedrock
type BedrockClient struct {
	client      RuntimeAPI
	modelID     string
	maxTokens   int
	temperature float32
	stream      bool
	logger      *zap.Logger
}

// NewBedrockClient creates a new Bedrock client
func NewBedrockClient(client RuntimeAPI, cfg config.BedrockConfig, logger *zap.Logger) *BedrockClient {
	return &BedrockClient{
		client:      client,
		modelID:     cfg.ModelID,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		stream:      cfg.Stream,
		logger:      logger,
	}
}

// Model returns the configured model ID
func (c *BedrockClient) Model() string {
	return c.modelID
}

// Invoke sends the prompt and returns the answer text
func (c *BedrockClient) Invoke(ctx context.Context, prompt string) (string, error) {
	payload, err := c.buildPayload(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	if c.stream {
		return c.invokeStream(ctx, payload)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	return c.parseBody(resp.Body)
}

func (c *BedrockClient) invokeStream(ctx context.Context, payload []byte) (string, error) {
	resp, err := c.client.InvokeModelWithResponseStream(ctx, &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId:     aws.String(c.modelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke Bedrock model stream: %w", err)
	}

	stream := resp.GetStream()
	defer stream.Close()

	acc := core.NewStreamAccumulator()
	for event := range stream.Events() {
		chunk, ok := event.(*types.ResponseStreamMemberChunk)
		if !ok {
			continue
		}
		reasoning, answer, err := c.parseChunk(chunk.Value.Bytes)
		if err != nil {
			return "", err
		}
		if reasoning != "" {
			acc.AddReasoning(reasoning)
		}
		if acc.AddAnswer(answer) {
			c.logger.Debug("Answer phase started", zap.String("model", c.modelID))
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("failed to read Bedrock stream: %w", err)
	}

	if reasoning := acc.Reasoning(); reasoning != "" {
		c.logger.Debug("Model reasoning", zap.String("reasoning", reasoning))
	}

	answer, err := acc.Finish()
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.modelID, err)
	}
	return answer, nil
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *BedrockClient) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.claude") || strings.Contains(c.modelID, ".anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *BedrockClient) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}

func (c *BedrockClient) buildPayload(prompt string) ([]byte, error) {
	switch {
	case c.isAnthropicModel():
		return json.Marshal(map[string]interface{}{
			"anthropic_version": anthropicVersion,
			"max_tokens":        c.maxTokens,
			"temperature":       c.temperature,
			"messages": []map[string]interface{}{
				{
					"role": "user",
					"content": []map[string]string{
						{"type": "text", "text": prompt},
					},
				},
			},
		})
	case c.isAmazonTitanModel():
		return json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
			},
		})
	default:
		return json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
		})
	}
}

func (c *BedrockClient) parseBody(body []byte) (string, error) {
	switch {
	case c.isAnthropicModel():
		var claudeResp struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		var sb strings.Builder
		for _, block := range claudeResp.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		if sb.Len() == 0 {
			return "", fmt.Errorf("empty response from Claude model")
		}
		return sb.String(), nil
	case c.isAmazonTitanModel():
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	default:
		var genericResp struct {
			Output     string `json:"output"`
			Text       string `json:"text"`
			Response   string `json:"response"`
			Generation string `json:"generation"`
		}
		if err := json.Unmarshal(body, &genericResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
		}
		for _, s := range []string{genericResp.Output, genericResp.Text, genericResp.Response, genericResp.Generation} {
			if s != "" {
				return s, nil
			}
		}
		return string(body), nil
	}
}

// parseChunk splits one stream chunk into its reasoning and answer parts
func (c *BedrockClient) parseChunk(chunk []byte) (reasoning, answer string, err error) {
	switch {
	case c.isAnthropicModel():
		var event struct {
			Type  string `json:"type"`
			Delta struct {
				Type     string `json:"type"`
				Text     string `json:"text"`
				Thinking string `json:"thinking"`
			} `json:"delta"`
		}
		if err := json.Unmarshal(chunk, &event); err != nil {
			return "", "", fmt.Errorf("failed to unmarshal Claude stream event: %w", err)
		}
		if event.Type != "content_block_delta" {
			return "", "", nil
		}
		switch event.Delta.Type {
		case "thinking_delta":
			return event.Delta.Thinking, "", nil
		case "text_delta":
			return "", event.Delta.Text, nil
		}
		return "", "", nil
	case c.isAmazonTitanModel():
		var event struct {
			OutputText string `json:"outputText"`
		}
		if err := json.Unmarshal(chunk, &event); err != nil {
			return "", "", fmt.Errorf("failed to unmarshal Titan stream event: %w", err)
		}
		return "", event.OutputText, nil
	default:
		var event struct {
			Output     string `json:"output"`
			Generation string `json:"generation"`
		}
		if err := json.Unmarshal(chunk, &event); err != nil {
			return "", "", fmt.Errorf("failed to unmarshal stream event: %w", err)
		}
		if event.Output != "" {
			return "", event.Output, nil
		}
		return "", event.Generation, nil
	}
}
