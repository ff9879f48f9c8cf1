// Package pipeline turns a transcript or an audio recording into a
// published article: title, narrative and image, summary, assembly, publish.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/thinkscotty/minutes/internal/ai"
	"github.com/thinkscotty/minutes/internal/failure"
	"github.com/thinkscotty/minutes/internal/markdown"
	"github.com/thinkscotty/minutes/internal/models"
	"github.com/thinkscotty/minutes/internal/publish"
	"github.com/thinkscotty/minutes/internal/slug"
	"github.com/thinkscotty/minutes/internal/transcribe"
)

const (
	previewLength = 500
	fallbackSlug  = "post"
)

// Generator produces the text pieces of an article.
type Generator interface {
	GenerateTitle(ctx context.Context, transcript string) (string, error)
	TransformToNarrative(ctx context.Context, transcript string) (string, error)
	GenerateSummary(ctx context.Context, transcript string) (string, error)
	ExtractImageKeywords(ctx context.Context, transcript string) ai.Keywords
}

// ImageSource finds a photo and optionally stores a local copy.
type ImageSource interface {
	Fetch(ctx context.Context, keywords string) (*models.Image, error)
	Materialize(ctx context.Context, img *models.Image, slug string) string
	Discard(img *models.Image)
}

// PublicationLog records completed publications.
type PublicationLog interface {
	RecordPublication(p *models.Publication) error
}

// configChecker is implemented by publishers that can detect missing
// settings without a network call.
type configChecker interface {
	CheckConfig() error
}

// Deps wires the pipeline. Images, Transcriber and Log are optional.
type Deps struct {
	Generator   Generator
	Images      ImageSource
	Transcriber transcribe.Transcriber
	// Publisher is called once per run to select the backend.
	Publisher func() publish.Publisher
	Log       PublicationLog

	// Preflight reports missing generation settings before any stage runs.
	Preflight func() error
	// TranscriptionPreflight does the same for the audio entry point.
	TranscriptionPreflight func() error

	MaxUploadBytes int64
	DownloadImages bool
}

type Pipeline struct {
	deps Deps
	now  func() time.Time
}

func New(deps Deps) *Pipeline {
	return &Pipeline{deps: deps, now: time.Now}
}

// TranscriptRequest is the text entry point input.
type TranscriptRequest struct {
	Transcript string
	Title      string
}

// AudioRequest is the audio entry point input.
type AudioRequest struct {
	Audio transcribe.Audio
	Title string
}

// Result describes one successful run.
type Result struct {
	RunID            string
	Title            string
	Slug             string
	FilePath         string
	CommitHash       string
	Backend          string
	PreviewContent   string
	Image            *models.Image
	KeywordsFallback bool
	TranscriptLength int
}

// ProcessTranscript runs the text pipeline end to end.
func (p *Pipeline) ProcessTranscript(ctx context.Context, req TranscriptRequest) (*Result, error) {
	runID := uuid.NewString()
	logger := slog.With("run_id", runID, "source", "transcript")

	if strings.TrimSpace(req.Transcript) == "" {
		return nil, userError(failure.ErrValidation, "request", "Transcript is required")
	}
	if err := runCheck(p.deps.Preflight); err != nil {
		return nil, err
	}
	publisher, err := p.selectPublisher()
	if err != nil {
		return nil, err
	}

	return p.run(ctx, logger, runID, "transcript", publisher, req.Transcript, req.Title)
}

// ProcessAudio validates and transcribes an upload, then runs the text
// pipeline on the transcript.
func (p *Pipeline) ProcessAudio(ctx context.Context, req AudioRequest) (*Result, error) {
	runID := uuid.NewString()
	logger := slog.With("run_id", runID, "source", "audio")

	if err := transcribe.Validate(req.Audio, p.deps.MaxUploadBytes); err != nil {
		logger.Warn("Rejected audio upload", "file", req.Audio.Name, "bytes", req.Audio.Size, "error", err)
		return nil, err
	}
	if err := runCheck(p.deps.Preflight); err != nil {
		return nil, err
	}
	if err := runCheck(p.deps.TranscriptionPreflight); err != nil {
		return nil, err
	}
	if p.deps.Transcriber == nil {
		return nil, userError(failure.ErrConfiguration, "transcription", "Transcription is not configured")
	}
	publisher, err := p.selectPublisher()
	if err != nil {
		return nil, err
	}

	logger.Info("Received audio", "file", req.Audio.Name, "content_type", req.Audio.ContentType, "bytes", req.Audio.Size)
	transcript, err := p.deps.Transcriber.Transcribe(ctx, req.Audio)
	if err != nil {
		logger.Error("Transcription failed", "error", err)
		return nil, err
	}
	logger.Info("Transcription completed", "chars", len(transcript))

	return p.run(ctx, logger, runID, "audio", publisher, transcript, req.Title)
}

// selectPublisher picks the backend for one run and checks its settings
// before any network call is made. There is no failover between backends.
func (p *Pipeline) selectPublisher() (publish.Publisher, error) {
	publisher := p.deps.Publisher()
	if cc, ok := publisher.(configChecker); ok {
		if err := cc.CheckConfig(); err != nil {
			return nil, err
		}
	}
	return publisher, nil
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger, runID, source string, publisher publish.Publisher, transcript, title string) (_ *Result, err error) {
	start := time.Now()
	logger = logger.With("backend", publisher.Name())

	title = strings.TrimSpace(title)
	if title == "" {
		logger.Info("Generating title")
		var generated string
		generated, err = p.deps.Generator.GenerateTitle(ctx, transcript)
		if err != nil {
			logger.Error("Title generation failed", "error", err)
			return nil, err
		}
		title = generated
	}

	postSlug := slug.Make(title)
	if postSlug == "" {
		postSlug = fallbackSlug
	}
	logger = logger.With("slug", postSlug)
	logger.Info("Title ready", "title", title)

	narrative, img, keywords, err := p.narrativeAndImage(ctx, logger, publisher, transcript, postSlug)
	defer func() {
		// A local copy is only useful to a published article.
		if err != nil && img != nil && img.FilePath != "" {
			logger.Warn("Run failed, discarding downloaded image", "path", img.FilePath)
			p.deps.Images.Discard(img)
		}
	}()
	if err != nil {
		return nil, err
	}

	logger.Info("Generating summary")
	summary, err := p.deps.Generator.GenerateSummary(ctx, transcript)
	if err != nil {
		logger.Error("Summary generation failed", "error", err)
		return nil, err
	}

	doc := markdown.Assemble(narrative, title, summary, img, p.now())

	logger.Info("Publishing")
	res, err := publisher.Publish(ctx, doc, postSlug)
	if err != nil {
		logger.Error("Publish failed", "error", err)
		return nil, err
	}

	result := &Result{
		RunID:            runID,
		Title:            title,
		Slug:             postSlug,
		FilePath:         res.FilePath,
		CommitHash:       res.VersionID,
		Backend:          res.Backend,
		PreviewContent:   preview(narrative),
		Image:            img,
		KeywordsFallback: keywords.Fallback,
		TranscriptLength: len([]rune(transcript)),
	}
	p.record(logger, source, result)

	logger.Info("Run completed",
		"file", result.FilePath,
		"commit", result.CommitHash,
		"image", img != nil,
		"duration", time.Since(start).Round(time.Millisecond))
	return result, nil
}

// narrativeAndImage runs the narrative rewrite and the image search side by
// side. Only the narrative can fail the run.
func (p *Pipeline) narrativeAndImage(ctx context.Context, logger *slog.Logger, publisher publish.Publisher, transcript, postSlug string) (string, *models.Image, ai.Keywords, error) {
	var (
		narrative string
		img       *models.Image
		keywords  ai.Keywords
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Generating narrative")
		var err error
		narrative, err = p.deps.Generator.TransformToNarrative(gctx, transcript)
		if err != nil {
			logger.Error("Narrative generation failed", "error", err)
		}
		return err
	})
	g.Go(func() error {
		keywords = p.deps.Generator.ExtractImageKeywords(gctx, transcript)
		if keywords.Fallback {
			logger.Warn("Using fallback image keywords", "keywords", keywords.Terms)
		}
		img = p.acquireImage(gctx, logger, publisher, keywords.Terms, postSlug)
		return nil
	})
	// img is returned with the error so the caller can discard a local copy.
	if err := g.Wait(); err != nil {
		return "", img, keywords, err
	}
	return narrative, img, keywords, nil
}

func (p *Pipeline) acquireImage(ctx context.Context, logger *slog.Logger, publisher publish.Publisher, keywords, postSlug string) *models.Image {
	if p.deps.Images == nil {
		return nil
	}
	img, err := p.deps.Images.Fetch(ctx, keywords)
	if err != nil {
		logger.Warn("Image acquisition failed, continuing without image", "keywords", keywords, "error", err)
		return nil
	}
	if img == nil {
		logger.Info("No image found, continuing without image", "keywords", keywords)
		return nil
	}
	// A local copy only helps when the backend publishes this disk.
	if p.deps.DownloadImages && publisher.LocalAssets() {
		p.deps.Images.Materialize(ctx, img, postSlug)
	}
	return img
}

func (p *Pipeline) record(logger *slog.Logger, source string, r *Result) {
	if p.deps.Log == nil {
		return
	}
	pub := &models.Publication{
		RunID:     r.RunID,
		Title:     r.Title,
		Slug:      r.Slug,
		FilePath:  r.FilePath,
		VersionID: r.CommitHash,
		Backend:   r.Backend,
		Source:    source,
	}
	if r.Image != nil {
		pub.ImageURL = r.Image.Path()
	}
	if err := p.deps.Log.RecordPublication(pub); err != nil {
		logger.Warn("Failed to record publication", "error", err)
	}
}

// preview returns the first characters of the narrative followed by "...".
func preview(narrative string) string {
	r := []rune(narrative)
	if len(r) > previewLength {
		r = r[:previewLength]
	}
	return string(r) + "..."
}

func runCheck(check func() error) error {
	if check == nil {
		return nil
	}
	return check()
}

func userError(marker error, stage, msg string) error {
	return failure.WithMessage(failure.Wrap(marker, stage, "", msg, nil), msg)
}

// ConfigurationError builds the error returned by preflight checks.
func ConfigurationError(stage, msg string) error {
	return userError(failure.ErrConfiguration, stage, msg)
}
