package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/thinkscotty/minutes/internal/config"
	"github.com/thinkscotty/minutes/internal/failure"
	"github.com/thinkscotty/minutes/internal/models"
)

// GitRunner executes git in dir and returns its trimmed stdout.
type GitRunner func(ctx context.Context, dir string, args ...string) (string, error)

func defaultGitRunner(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Local publishes into a git working copy on this machine. The whole
// name-write-stage-commit sequence runs under an in-process mutex and a file
// lock inside the git directory, so concurrent runs and other processes
// using the same working copy never interleave.
type Local struct {
	repoDir  string
	postsDir string
	name     string
	email    string
	timeout  time.Duration

	mu   sync.Mutex
	lock *flock.Flock
	git  GitRunner
	now  func() time.Time
}

func NewLocal(cfg config.PublishConfig) *Local {
	name := cfg.CommitterName
	if name == "" {
		name = "Minutes Bot"
	}
	email := cfg.CommitterEmail
	if email == "" {
		email = "minutes-bot@users.noreply.github.com"
	}
	return &Local{
		repoDir:  cfg.RepoDir,
		postsDir: cfg.PostsDir,
		name:     name,
		email:    email,
		timeout:  time.Duration(cfg.TimeoutSeconds) * time.Second,
		git:      defaultGitRunner,
		now:      time.Now,
	}
}

func (l *Local) Name() string      { return config.BackendLocal }
func (l *Local) LocalAssets() bool { return true }

func (l *Local) Publish(ctx context.Context, doc models.Document, slug string) (models.PublishResult, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	unlock, err := l.acquire(ctx)
	if err != nil {
		return models.PublishResult{}, publishErr("lock", err)
	}
	defer unlock()

	relPath, err := l.writeUnique(slug, doc.Content)
	if err != nil {
		return models.PublishResult{}, publishErr("write", err)
	}
	slog.Info("Wrote post", "path", relPath)

	paths := []string{relPath}
	if img := doc.Image; img != nil && img.FilePath != "" {
		if rel, ok := l.insideRepo(img.FilePath); ok {
			paths = append(paths, rel)
		}
	}

	if _, err := l.git(ctx, l.repoDir, append([]string{"add", "--"}, paths...)...); err != nil {
		return models.PublishResult{}, publishErr("stage", err)
	}

	// Committing with explicit paths leaves anything else in the index alone.
	commitArgs := []string{
		"-c", "user.name=" + l.name,
		"-c", "user.email=" + l.email,
		"commit", "-m", CommitMessage(doc.Title), "--",
	}
	if _, err := l.git(ctx, l.repoDir, append(commitArgs, paths...)...); err != nil {
		return models.PublishResult{}, publishErr("commit", err)
	}

	hash, err := l.git(ctx, l.repoDir, "rev-parse", "HEAD")
	if err != nil {
		return models.PublishResult{}, publishErr("rev-parse", err)
	}

	slog.Info("Committed post", "path", relPath, "commit", hash)
	return models.PublishResult{FilePath: relPath, VersionID: hash, Backend: l.Name()}, nil
}

// acquire takes the cross-process lock stored in the git directory.
func (l *Local) acquire(ctx context.Context) (func(), error) {
	if l.lock == nil {
		gitDir, err := l.git(ctx, l.repoDir, "rev-parse", "--absolute-git-dir")
		if err != nil {
			return nil, fmt.Errorf("not a git working copy: %w", err)
		}
		l.lock = flock.New(filepath.Join(gitDir, "minutes-publish.lock"))
	}

	ok, err := l.lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, errors.New("working copy is locked by another process")
	}
	return func() {
		if err := l.lock.Unlock(); err != nil {
			slog.Warn("Failed to release publish lock", "error", err)
		}
	}, nil
}

// writeUnique creates the post with create-if-absent semantics. When the
// natural name exists the timestamped name is used instead.
func (l *Local) writeUnique(slug, content string) (string, error) {
	dir := filepath.Join(l.repoDir, filepath.FromSlash(l.postsDir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	candidates := []string{fileName(slug, 0), fileName(slug, l.now().UnixMilli())}
	for i, name := range candidates {
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			if i == 0 {
				slog.Info("Post already exists, using timestamped name", "slug", slug)
			}
			continue
		}
		if err != nil {
			return "", err
		}
		_, werr := f.WriteString(content)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return "", werr
		}
		return path.Join(filepath.ToSlash(l.postsDir), name), nil
	}
	return "", fmt.Errorf("%s and its timestamped variant both exist", candidates[0])
}

func (l *Local) insideRepo(p string) (string, bool) {
	repo, err := filepath.Abs(l.repoDir)
	if err != nil {
		return "", false
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(repo, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func publishErr(step string, err error) error {
	return failure.Wrap(failure.ErrPublish, "local publish", step, "", err)
}
