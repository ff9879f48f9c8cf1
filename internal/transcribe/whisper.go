package transcribe

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/thinkscotty/minutes/internal/config"
	"github.com/thinkscotty/minutes/internal/failure"
)

// Transcriber converts audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, a Audio) (string, error)
}

// Whisper transcribes through the OpenAI audio transcriptions endpoint.
type Whisper struct {
	apiKey  string
	model   string
	timeout time.Duration
	opts    []option.RequestOption
}

func NewWhisper(cfg config.TranscriptionConfig) *Whisper {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = string(openai.AudioModelWhisper1)
	}
	return &Whisper{
		apiKey:  cfg.APIKey,
		model:   model,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		opts:    opts,
	}
}

// Configured reports whether an API key is set.
func (w *Whisper) Configured() bool { return strings.TrimSpace(w.apiKey) != "" }

func (w *Whisper) Transcribe(ctx context.Context, a Audio) (string, error) {
	if !w.Configured() {
		return "", failure.WithMessage(
			failure.Wrap(failure.ErrConfiguration, "transcription", "whisper", "OpenAI API key not configured", nil),
			"OpenAI API key not configured")
	}
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	slog.Info("Transcribing audio", "file", a.Name, "content_type", a.ContentType, "bytes", a.Size, "model", w.model)
	start := time.Now()

	client := openai.NewClient(w.opts...)
	resp, err := client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(a.Data, a.Name, a.ContentType),
		Model: openai.AudioModel(w.model),
	})
	if err != nil {
		return "", failure.Wrap(failure.ErrGeneration, "transcription", "whisper", "", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", failure.Wrap(failure.ErrGeneration, "transcription", "whisper", "empty transcript",
			errors.New("no speech recognized"))
	}
	slog.Info("Transcription completed", "chars", len(text), "duration", time.Since(start).Round(time.Millisecond))
	return text, nil
}
