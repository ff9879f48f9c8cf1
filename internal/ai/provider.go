package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/thinkscotty/minutes/internal/config"
)

// Provider is the interface that all generative backends must implement.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Name() string // "anthropic", "openai", "gemini" or "vertex"
}

// ChatRequest is a provider-agnostic request.
type ChatRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// ChatResponse is a provider-agnostic response.
type ChatResponse struct {
	Content    string
	TokensUsed int
	Model      string
	Provider   string
}

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

// NewProvider builds the provider selected by cfg.Provider. Missing keys are
// not checked here; see Configured.
func NewProvider(ctx context.Context, cfg config.AIConfig) (Provider, error) {
	switch cfg.Provider {
	case "", "anthropic":
		return NewAnthropicProvider(cfg.Anthropic), nil
	case "openai":
		return NewOpenAIProvider(cfg.OpenAI), nil
	case "gemini":
		return NewGeminiProvider(cfg.Gemini), nil
	case "vertex":
		return NewVertexProvider(ctx, cfg.Vertex)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}

// Configured reports whether the selected provider has the credentials it
// needs. The returned string names the missing setting for error messages.
func Configured(cfg config.AIConfig) (bool, string) {
	switch cfg.Provider {
	case "", "anthropic":
		return strings.TrimSpace(cfg.Anthropic.APIKey) != "", "Anthropic API key"
	case "openai":
		return strings.TrimSpace(cfg.OpenAI.APIKey) != "", "OpenAI API key"
	case "gemini":
		return strings.TrimSpace(cfg.Gemini.APIKey) != "", "Gemini API key"
	case "vertex":
		return strings.TrimSpace(cfg.Vertex.Project) != "" && strings.TrimSpace(cfg.Vertex.Region) != "", "Vertex AI project and region"
	default:
		return false, "AI provider"
	}
}

// messagesToPrompt concatenates chat messages into a single prompt string for
// backends that take one content block.
func messagesToPrompt(messages []Message) string {
	if len(messages) == 1 {
		return messages[0].Content
	}

	var sb strings.Builder
	for _, m := range messages {
		sb.WriteString(m.Content)
		if m.Role == "system" {
			sb.WriteString("\n\n")
		} else {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// splitSystem separates system messages from the conversation, for APIs that
// take the system prompt as a separate field.
func splitSystem(messages []Message) (string, []Message) {
	var system []string
	var rest []Message
	for _, m := range messages {
		if m.Role == "system" {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}
