// internal/llmclient/ollama_client_test.go
package llmclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
	"github.com/halcyondale/deskpilot-cli/internal/config"
)

func ollamaTestConfig(endpoint string) config.LLMConfig {
	return config.LLMConfig{
		Provider: config.ProviderOllama,
		Model:    "llama3",
		Endpoint: endpoint,
		Timeout:  5 * time.Second,
	}
}

func TestOllamaClientGenerate(t *testing.T) {
	t.Run("successful chat round trip", func(t *testing.T) {
		var captured ollamaChatRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/chat", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"{\"action\":\"web_search\"}"},"done":true,"prompt_eval_count":12,"eval_count":8}`))
		}))
		defer server.Close()

		client, err := NewOllamaClient(ollamaTestConfig(server.URL), zap.NewNop())
		require.NoError(t, err)

		out, err := client.Generate(context.Background(), schemas.GenerationRequest{
			SystemPrompt: "you are a desktop assistant",
			UserPrompt:   "open spotify",
			Options:      schemas.GenerationOptions{Temperature: 0.2, ForceJSONFormat: true},
		})
		require.NoError(t, err)
		assert.Equal(t, `{"action":"web_search"}`, out)

		assert.Equal(t, "llama3", captured.Model)
		assert.False(t, captured.Stream)
		assert.Equal(t, "json", captured.Format)
		require.Len(t, captured.Messages, 2)
		assert.Equal(t, "system", captured.Messages[0].Role)
		assert.Equal(t, "user", captured.Messages[1].Role)
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
		}))
		defer server.Close()

		client, err := NewOllamaClient(ollamaTestConfig(server.URL), zap.NewNop())
		require.NoError(t, err)

		_, err = client.Generate(context.Background(), schemas.GenerationRequest{UserPrompt: "hi"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 404")
	})

	t.Run("empty message content is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":""},"done":true}`))
		}))
		defer server.Close()

		client, err := NewOllamaClient(ollamaTestConfig(server.URL), zap.NewNop())
		require.NoError(t, err)

		_, err = client.Generate(context.Background(), schemas.GenerationRequest{UserPrompt: "hi"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty message")
	})

	t.Run("makes exactly one attempt", func(t *testing.T) {
		var calls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client, err := NewOllamaClient(ollamaTestConfig(server.URL), zap.NewNop())
		require.NoError(t, err)

		_, err = client.Generate(context.Background(), schemas.GenerationRequest{UserPrompt: "hi"})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(2 * time.Second)
		}))
		defer server.Close()

		client, err := NewOllamaClient(ollamaTestConfig(server.URL), zap.NewNop())
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err = client.Generate(ctx, schemas.GenerationRequest{UserPrompt: "hi"})
		require.Error(t, err)
	})

	t.Run("requires a model name", func(t *testing.T) {
		cfg := ollamaTestConfig("http://localhost:11434")
		cfg.Model = ""
		_, err := NewOllamaClient(cfg, zap.NewNop())
		require.Error(t, err)
	})
}
