package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/thinkscotty/minutes/internal/config"
	"github.com/thinkscotty/minutes/internal/failure"
	"github.com/thinkscotty/minutes/internal/models"
)

// maxDownloadBytes caps a single image download.
const maxDownloadBytes = 20 << 20

// Service queries providers in order and materializes the chosen photo.
type Service struct {
	providers  []Provider
	httpClient *http.Client
	dir        string
	urlPrefix  string
	now        func() time.Time
}

// NewService builds the provider chain from config: Unsplash first, then Pexels.
func NewService(cfg config.Config) *Service {
	timeout := time.Duration(cfg.Images.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	return &Service{
		providers: []Provider{
			NewUnsplash(client, cfg.Images.UnsplashAccessKey, cfg.Images.UnsplashBaseURL),
			NewPexels(client, cfg.Images.PexelsAPIKey, cfg.Images.PexelsBaseURL),
		},
		httpClient: client,
		dir:        cfg.ImagesDir(),
		urlPrefix:  cfg.Images.URLPrefix,
		now:        time.Now,
	}
}

// NewServiceWith builds a service from explicit parts.
func NewServiceWith(client *http.Client, providers []Provider, dir, urlPrefix string) *Service {
	return &Service{
		providers:  providers,
		httpClient: client,
		dir:        dir,
		urlPrefix:  urlPrefix,
		now:        time.Now,
	}
}

// Fetch asks each configured provider in order and returns the first result.
// It returns nil without error when no provider is configured or none found a
// photo. When every configured provider failed, the error is an acquisition
// error the caller may log and ignore.
func (s *Service) Fetch(ctx context.Context, keywords string) (*models.Image, error) {
	keywords = strings.TrimSpace(keywords)
	if keywords == "" {
		return nil, nil
	}

	var errs []error
	for _, p := range s.providers {
		if !p.Configured() {
			slog.Debug("Image provider not configured, skipping", "provider", p.Name())
			continue
		}
		img, err := p.Search(ctx, keywords)
		if err != nil {
			slog.Warn("Image provider failed", "provider", p.Name(), "keywords", keywords, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if img == nil {
			slog.Info("No images found", "provider", p.Name(), "keywords", keywords)
			continue
		}
		slog.Info("Image found", "provider", p.Name(), "keywords", keywords, "url", img.URL)
		return img, nil
	}

	if len(errs) > 0 {
		return nil, failure.Wrap(failure.ErrAcquisition, "image", "fetch", "", errors.Join(errs...))
	}
	return nil, nil
}

// Materialize downloads img.URL into the generated-images directory as
// {slug}-{epochMillis}.{ext} and records the site path on img. It returns the
// site path, or "" on any network or filesystem failure.
func (s *Service) Materialize(ctx context.Context, img *models.Image, slug string) string {
	if img == nil || img.URL == "" {
		return ""
	}
	localPath, filePath, err := s.saveImage(ctx, img.URL, slug)
	if err != nil {
		slog.Warn("Image download failed, using remote URL", "url", img.URL, "error", err)
		return ""
	}
	img.LocalPath = localPath
	img.FilePath = filePath
	slog.Info("Image saved", "path", filePath)
	return localPath
}

// Discard deletes the local copy made by Materialize and points img back at
// the remote URL. It is used when the run fails after the download.
func (s *Service) Discard(img *models.Image) {
	if img == nil || img.FilePath == "" {
		return
	}
	switch err := os.Remove(img.FilePath); {
	case err == nil:
		slog.Info("Removed downloaded image", "path", img.FilePath)
	case !errors.Is(err, os.ErrNotExist):
		slog.Warn("Failed to remove downloaded image", "path", img.FilePath, "error", err)
	}
	img.LocalPath = ""
	img.FilePath = ""
}

func (s *Service) saveImage(ctx context.Context, imageURL, slug string) (string, string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create images dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("status %d", resp.StatusCode)
	}

	if slug == "" {
		slug = "image"
	}
	name := fmt.Sprintf("%s-%d.%s", slug, s.now().UnixMilli(), extensionFor(resp.Header.Get("Content-Type")))
	filePath := filepath.Join(s.dir, name)

	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", "", err
	}
	n, copyErr := io.Copy(f, io.LimitReader(resp.Body, maxDownloadBytes+1))
	closeErr := f.Close()
	if copyErr == nil && n > maxDownloadBytes {
		copyErr = fmt.Errorf("image larger than %d bytes", maxDownloadBytes)
	}
	if err := errors.Join(copyErr, closeErr); err != nil {
		os.Remove(filePath)
		return "", "", err
	}

	return path.Join(s.urlPrefix, name), filePath, nil
}

// extensionFor picks a file extension from the response type, jpg by default.
func extensionFor(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "jpg"
	}
	switch mt {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	case "image/avif":
		return "avif"
	default:
		return "jpg"
	}
}
