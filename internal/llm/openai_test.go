package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionServer(t *testing.T, content string, check func(openai.ChatCompletionRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if check != nil {
			check(req)
		}

		resp := openai.ChatCompletionResponse{
			ID:    "chatcmpl-1",
			Model: req.Model,
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func testOpenAIClient(t *testing.T, baseURL string) *OpenAIClient {
	t.Helper()
	config := DefaultOpenAIConfig()
	config.BaseURL = baseURL
	c, err := NewOpenAIClient(config, "test-key")
	require.NoError(t, err)
	return c
}

func TestOpenAIClient_GenerateContent(t *testing.T) {
	server := completionServer(t, "  <h1>Draft</h1>  ", func(req openai.ChatCompletionRequest) {
		assert.Equal(t, "gpt-4o", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
		assert.Equal(t, "write about onboarding", req.Messages[1].Content)
		assert.Nil(t, req.ResponseFormat)
	})
	defer server.Close()

	text, err := testOpenAIClient(t, server.URL).GenerateContent(context.Background(), "write about onboarding", TierStandard)
	require.NoError(t, err)
	assert.Equal(t, "<h1>Draft</h1>", text)
}

func TestOpenAIClient_GenerateJSON(t *testing.T) {
	server := completionServer(t, "```json\n{\"title\": \"x\"}\n```", func(req openai.ChatCompletionRequest) {
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type)
	})
	defer server.Close()

	text, err := testOpenAIClient(t, server.URL).GenerateJSON(context.Background(), "outline", TierLite)
	require.NoError(t, err)
	assert.Equal(t, `{"title": "x"}`, text)
}

func TestOpenAIClient_EmptyCompletion(t *testing.T) {
	server := completionServer(t, "   ", nil)
	defer server.Close()

	_, err := testOpenAIClient(t, server.URL).GenerateContent(context.Background(), "p", TierStandard)
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestOpenAIClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	_, err := testOpenAIClient(t, server.URL).GenerateContent(context.Background(), "p", TierStandard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OpenAI API error")
}

func TestNewClient_SelectsProvider(t *testing.T) {
	c, err := NewClient(context.Background(), DefaultOpenAIConfig(), "key")
	require.NoError(t, err)
	_, ok := c.(*OpenAIClient)
	assert.True(t, ok)
	assert.NoError(t, c.Close())

	_, err = NewOpenAIClient(nil, "")
	assert.Error(t, err)
	_, err = NewGeminiClient(context.Background(), DefaultGeminiConfig(), "")
	assert.Error(t, err)
}
