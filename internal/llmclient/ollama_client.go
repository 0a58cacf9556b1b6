// internal/llmclient/ollama_client.go
package llmclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
	"github.com/halcyondale/deskpilot-cli/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// OllamaClient talks to a local Ollama server over its chat API. It is the
// default provider; everything stays on the machine.
type OllamaClient struct {
	endpoint   string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
	config     config.LLMConfig
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaChatResponse struct {
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	TotalDuration   int64         `json:"total_duration"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
}

// NewOllamaClient initializes the client against the configured endpoint.
func NewOllamaClient(cfg config.LLMConfig, logger *zap.Logger) (*OllamaClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama model name is required")
	}
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}

	return &OllamaClient{
		endpoint: endpoint + "/api/chat",
		model:    cfg.Model,
		config:   cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("llm_client.ollama"),
	}, nil
}

// Generate sends the prompts to the Ollama chat endpoint and returns the
// model's content. A failed call is reported to the caller as-is; there is
// no retry at this layer.
func (c *OllamaClient) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	payload := ollamaChatRequest{
		Model:  c.model,
		Stream: false,
		Messages: []ollamaMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		Options: ollamaOptions{
			Temperature: req.Options.Temperature,
			NumPredict:  c.config.MaxTokens,
		},
	}
	if req.Options.ForceJSONFormat {
		payload.Format = "json"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to reach ollama at %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var chatResp ollamaChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response payload: %w", err)
	}
	if chatResp.Message.Content == "" {
		return "", fmt.Errorf("ollama returned an empty message")
	}

	c.logger.Info("LLM generation complete (Ollama)",
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("prompt_tokens", chatResp.PromptEvalCount),
		zap.Int("completion_tokens", chatResp.EvalCount),
	)

	return chatResp.Message.Content, nil
}
