// Package publish stores finished articles in the content repository, either
// through a local git working copy or through the GitHub contents API.
package publish

import (
	"context"
	"fmt"
	"os"

	"github.com/thinkscotty/minutes/internal/config"
	"github.com/thinkscotty/minutes/internal/models"
)

// Publisher durably stores one document under a unique path.
type Publisher interface {
	Name() string
	// LocalAssets reports whether files written to the local disk (downloaded
	// images) end up in the published repository.
	LocalAssets() bool
	Publish(ctx context.Context, doc models.Document, slug string) (models.PublishResult, error)
}

// CommitMessage is the message used for every published article.
func CommitMessage(title string) string {
	return "Add meeting summary: " + title
}

// fileName returns the natural name for slug, or the timestamped variant
// used when the natural name is taken.
func fileName(slug string, suffixMillis int64) string {
	if suffixMillis == 0 {
		return slug + ".mdx"
	}
	return fmt.Sprintf("%s-%d.mdx", slug, suffixMillis)
}

// Select returns the backend for this deployment. There is no failover
// between backends.
func Select(cfg config.Config) Publisher {
	if cfg.ResolvedBackend(os.LookupEnv) == config.BackendGitHub {
		return NewGitHub(cfg.Publish)
	}
	return NewLocal(cfg.Publish)
}
