package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/thinkscotty/minutes/internal/config"
)

const (
	anthropicDefaultURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion    = "2023-06-01"
)

// Anthropic Messages API request/response types (unexported).

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Model   string             `json:"model"`
	Content []anthropicContent `json:"content"`
	Usage   *anthropicUsage    `json:"usage,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// AnthropicProvider implements Provider for the Anthropic Messages API.
type AnthropicProvider struct {
	httpClient *http.Client
	apiKey     string
	model      string
	url        string
}

// NewAnthropicProvider creates an Anthropic provider.
func NewAnthropicProvider(cfg config.ProviderConfig) *AnthropicProvider {
	url := cfg.BaseURL
	if url == "" {
		url = anthropicDefaultURL
	}
	return &AnthropicProvider{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		url:        url,
	}
}

func (a *AnthropicProvider) Name() string { return "anthropic" }

func (a *AnthropicProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("anthropic API key not configured")
	}

	system, msgs := splitSystem(req.Messages)
	body := anthropicRequest{
		Model:       a.model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		System:      system,
	}
	for _, m := range msgs {
		body.Messages = append(body.Messages, anthropicMessage{Role: m.Role, Content: m.Content})
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr anthropicError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("anthropic returned status %d: %s: %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("anthropic returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var msgResp anthropicResponse
	if err := json.Unmarshal(respBody, &msgResp); err != nil {
		return nil, fmt.Errorf("parse anthropic response: %w", err)
	}

	// Only a leading text block counts; tool use or empty content is malformed here.
	if len(msgResp.Content) == 0 || msgResp.Content[0].Type != "text" {
		return nil, fmt.Errorf("unexpected response format from anthropic")
	}

	tokensUsed := 0
	if msgResp.Usage != nil {
		tokensUsed = msgResp.Usage.InputTokens + msgResp.Usage.OutputTokens
	}
	model := msgResp.Model
	if model == "" {
		model = a.model
	}

	return &ChatResponse{
		Content:    msgResp.Content[0].Text,
		TokensUsed: tokensUsed,
		Model:      model,
		Provider:   "anthropic",
	}, nil
}
