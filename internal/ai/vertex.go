package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"

	"github.com/thinkscotty/minutes/internal/config"
)

// VertexProvider implements Provider for Gemini models served by Vertex AI.
type VertexProvider struct {
	client *genai.Client
	model  string
}

// NewVertexProvider connects to Vertex AI. Credentials come from the
// configured file or from application default credentials.
func NewVertexProvider(ctx context.Context, cfg config.VertexConfig) (*VertexProvider, error) {
	if cfg.Project == "" || cfg.Region == "" {
		return nil, errors.New("vertex: project and region cannot be empty")
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := genai.NewClient(ctx, cfg.Project, cfg.Region, opts...)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &VertexProvider{client: client, model: cfg.Model}, nil
}

func (v *VertexProvider) Name() string { return "vertex" }

func (v *VertexProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := v.client.GenerativeModel(v.model)
	system, msgs := splitSystem(req.Messages)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	model.Temperature = genai.Ptr(float32(req.Temperature))
	if req.MaxTokens > 0 {
		model.MaxOutputTokens = genai.Ptr(int32(req.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(messagesToPrompt(msgs)))
	if err != nil {
		return nil, fmt.Errorf("vertex request failed: %w", err)
	}

	var sb strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}

	tokensUsed := 0
	if resp.UsageMetadata != nil {
		tokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &ChatResponse{
		Content:    sb.String(),
		TokensUsed: tokensUsed,
		Model:      v.model,
		Provider:   "vertex",
	}, nil
}

func (v *VertexProvider) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
