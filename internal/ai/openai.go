package ai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/thinkscotty/minutes/internal/config"
)

// OpenAIProvider implements Provider using the official openai-go SDK. Any
// OpenAI-compatible endpoint works through BaseURL.
type OpenAIProvider struct {
	model  string
	apiKey string
	opts   []option.RequestOption
}

// NewOpenAIProvider creates an OpenAI chat completions provider.
func NewOpenAIProvider(cfg config.ProviderConfig) *OpenAIProvider {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIProvider{model: cfg.Model, apiKey: cfg.APIKey, opts: opts}
}

func (o *OpenAIProvider) Name() string { return "openai" }

func (o *OpenAIProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if o.apiKey == "" {
		return nil, errors.New("openai API key not configured")
	}
	client := openai.NewClient(o.opts...)

	var msgs []openai.ChatCompletionMessageParamUnion
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case "assistant":
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Messages:    msgs,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: empty choices")
	}

	return &ChatResponse{
		Content:    resp.Choices[0].Message.Content,
		TokensUsed: int(resp.Usage.TotalTokens),
		Model:      resp.Model,
		Provider:   "openai",
	}, nil
}
