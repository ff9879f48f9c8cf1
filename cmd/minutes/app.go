package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/thinkscotty/minutes/internal/ai"
	"github.com/thinkscotty/minutes/internal/config"
	"github.com/thinkscotty/minutes/internal/database"
	"github.com/thinkscotty/minutes/internal/images"
	"github.com/thinkscotty/minutes/internal/pipeline"
	"github.com/thinkscotty/minutes/internal/publish"
	"github.com/thinkscotty/minutes/internal/transcribe"
)

// app holds the services shared by the commands that run pipelines.
type app struct {
	db       *database.DB
	pipeline *pipeline.Pipeline
	closers  []func() error
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	slog.Info("Database initialized", "path", cfg.Database.Path)

	a := &app{db: db, closers: []func() error{db.Close}}

	provider, err := ai.NewProvider(ctx, cfg.AI)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create ai provider: %w", err)
	}
	if c, ok := provider.(interface{ Close() error }); ok {
		a.closers = append(a.closers, c.Close)
	}

	generator := ai.NewClient(provider, time.Duration(cfg.AI.TimeoutSeconds)*time.Second)
	whisper := transcribe.NewWhisper(cfg.Transcription)
	publisher := publish.Select(cfg)
	slog.Info("Services ready", "ai_provider", provider.Name(), "backend", publisher.Name())

	a.pipeline = pipeline.New(pipeline.Deps{
		Generator:   generator,
		Images:      images.NewService(cfg),
		Transcriber: whisper,
		Publisher:   func() publish.Publisher { return publisher },
		Log:         db,
		Preflight: func() error {
			if ok, missing := ai.Configured(cfg.AI); !ok {
				return pipeline.ConfigurationError("generation", missing+" not configured")
			}
			return nil
		},
		TranscriptionPreflight: func() error {
			if !whisper.Configured() {
				return pipeline.ConfigurationError("transcription", "OpenAI API key not configured")
			}
			return nil
		},
		MaxUploadBytes: cfg.MaxUploadBytes(),
		DownloadImages: cfg.Images.Download,
	})
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("Close failed", "error", err)
		}
	}
}
