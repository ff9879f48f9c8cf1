package ai

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/thinkscotty/minutes/internal/failure"
)

// Generation settings per operation.
var (
	titleSettings     = settings{Temperature: 0.3, MaxTokens: 60}
	narrativeSettings = settings{Temperature: 0.7, MaxTokens: 4000}
	summarySettings   = settings{Temperature: 0.3, MaxTokens: 100}
	keywordSettings   = settings{Temperature: 0.2, MaxTokens: 30}
)

type settings struct {
	Temperature float64
	MaxTokens   int
}

// Client runs the four content generation operations against one provider.
// Each operation is a single request/response exchange.
type Client struct {
	provider Provider
	timeout  time.Duration
}

// NewClient wraps provider. A positive timeout bounds every call.
func NewClient(provider Provider, timeout time.Duration) *Client {
	return &Client{provider: provider, timeout: timeout}
}

// Keywords is the result of image keyword extraction. Fallback is set when
// the terms came from the transcript heuristic instead of the model.
type Keywords struct {
	Terms    string
	Fallback bool
}

// GenerateTitle produces a short headline with wrapping quotes removed.
func (c *Client) GenerateTitle(ctx context.Context, transcript string) (string, error) {
	text, err := c.complete(ctx, "title", BuildTitlePrompt(transcript), titleSettings)
	if err != nil {
		return "", err
	}
	title := CleanTitle(text)
	if title == "" {
		return "", failure.Wrap(failure.ErrGeneration, "generation", "title", "empty title in response", nil)
	}
	return title, nil
}

// TransformToNarrative rewrites the transcript as a markdown article.
func (c *Client) TransformToNarrative(ctx context.Context, transcript string) (string, error) {
	text, err := c.complete(ctx, "narrative", BuildNarrativePrompt(transcript), narrativeSettings)
	if err != nil {
		return "", err
	}
	return text, nil
}

// GenerateSummary produces the one-sentence teaser.
func (c *Client) GenerateSummary(ctx context.Context, transcript string) (string, error) {
	text, err := c.complete(ctx, "summary", BuildSummaryPrompt(transcript), summarySettings)
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(text), " "), nil
}

// ExtractImageKeywords asks the model for search terms. It never fails: on a
// backend error or an unusable reply it degrades to FallbackKeywords.
func (c *Client) ExtractImageKeywords(ctx context.Context, transcript string) Keywords {
	text, err := c.complete(ctx, "keywords", BuildKeywordsPrompt(transcript), keywordSettings)
	if err == nil {
		if terms := CleanKeywords(text); terms != "" {
			return Keywords{Terms: terms}
		}
		err = errors.New("no usable keywords in response")
	}

	fallback := FallbackKeywords(transcript)
	slog.Warn("Keyword extraction failed, using transcript fallback",
		"provider", c.provider.Name(), "fallback", fallback, "error", err)
	return Keywords{Terms: fallback, Fallback: true}
}

// complete sends one prompt and returns the trimmed text. Empty or failed
// responses become generation errors.
func (c *Client) complete(ctx context.Context, operation, prompt string, s settings) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	slog.Info("Sending generation request",
		"operation", operation, "provider", c.provider.Name(), "prompt_chars", len(prompt))
	slog.Debug("Generation prompt", "operation", operation, "prompt", prompt)

	start := time.Now()
	resp, err := c.provider.Chat(ctx, ChatRequest{
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
	})
	if err != nil {
		return "", failure.Wrap(failure.ErrGeneration, "generation", operation, c.provider.Name(), err)
	}

	text := strings.TrimSpace(resp.Content)
	slog.Info("Received generation response",
		"operation", operation,
		"provider", resp.Provider,
		"model", resp.Model,
		"tokens", resp.TokensUsed,
		"response_chars", len(text),
		"duration", time.Since(start).Round(time.Millisecond))

	if text == "" {
		return "", failure.Wrap(failure.ErrGeneration, "generation", operation, "empty response from "+c.provider.Name(), nil)
	}
	return text, nil
}
