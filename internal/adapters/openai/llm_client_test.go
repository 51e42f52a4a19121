package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mikey/keyword-tagger/internal/config"
	"github.com/mikey/keyword-tagger/internal/core"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const verdictJSON = `{"contains_keywords": true, "reasoning": "paragraph 1 mentions 'AI'", "matched_keywords": ["AI"]}`

func newTestClient(t *testing.T, handler http.HandlerFunc, stream bool) *OpenAIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewOpenAIClient(config.OpenAIConfig{
		APIKey:      "test-key",
		BaseURL:     server.URL,
		ModelName:   "qwen-max",
		MaxTokens:   8096,
		Temperature: 0.5,
		Stream:      stream,
	}, zaptest.NewLogger(t))
}

func decodeRequest(t *testing.T, r *http.Request) openai.ChatCompletionRequest {
	t.Helper()
	var req openai.ChatCompletionRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req
}

func writeSSE(w http.ResponseWriter, events ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, event := range events {
		fmt.Fprintf(w, "data: %s\n\n", event)
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
}

func TestInvokeSingle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		req := decodeRequest(t, r)
		assert.Equal(t, "qwen-max", req.Model)
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, openai.ChatMessageRoleUser, req.Messages[0].Role)
		assert.Equal(t, "the prompt", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID: "resp-1",
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: verdictJSON},
			}},
			Usage: openai.Usage{PromptTokens: 10, CompletionTokens: 20},
		})
	}, false)

	answer, err := client.Invoke(context.Background(), "the prompt")
	require.NoError(t, err)
	assert.Equal(t, verdictJSON, answer)
	assert.Equal(t, "qwen-max", client.Model())
}

func TestInvokeSingleEmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "resp-1", "choices": []}`)
	}, false)

	_, err := client.Invoke(context.Background(), "the prompt")
	assert.ErrorContains(t, err, "empty response")
}

func TestInvokeServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": {"message": "invalid api key", "type": "invalid_request_error"}}`)
	}, false)

	_, err := client.Invoke(context.Background(), "the prompt")
	require.Error(t, err)

	var apiErr *openai.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatusCode)
}

func TestInvokeStream(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		assert.True(t, req.Stream)
		require.NotNil(t, req.StreamOptions)
		assert.True(t, req.StreamOptions.IncludeUsage)

		writeSSE(w,
			`{"id":"s","choices":[{"index":0,"delta":{"reasoning_content":"The text "}}]}`,
			`{"id":"s","choices":[{"index":0,"delta":{"reasoning_content":"mentions AI."}}]}`,
			`{"id":"s","choices":[{"index":0,"delta":{"content":""}}]}`,
			`{"id":"s","choices":[{"index":0,"delta":{"content":"{\"contains_keywords\": true, "}}]}`,
			`{"id":"s","choices":[{"index":0,"delta":{"content":"\"reasoning\": \"paragraph 1 mentions 'AI'\", "}}]}`,
			`{"id":"s","choices":[{"index":0,"delta":{"content":"\"matched_keywords\": [\"AI\"]}"}}]}`,
			`{"id":"s","choices":[],"usage":{"prompt_tokens":10,"completion_tokens":30,"total_tokens":40}}`,
		)
	}, true)

	answer, err := client.Invoke(context.Background(), "the prompt")
	require.NoError(t, err)
	assert.Equal(t, verdictJSON, answer)
	assert.Equal(t, []string{"AI"}, core.ParseVerdict(answer).MatchedKeywords)
}

func TestInvokeStreamReasoningOnly(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w,
			`{"id":"s","choices":[{"index":0,"delta":{"reasoning_content":"thinking"}}]}`,
			`{"id":"s","choices":[{"index":0,"delta":{"content":""}}]}`,
		)
	}, true)

	_, err := client.Invoke(context.Background(), "the prompt")
	assert.ErrorIs(t, err, core.ErrEmptyAnswer)
}
