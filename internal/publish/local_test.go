package publish

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thinkscotty/minutes/internal/config"
	"github.com/thinkscotty/minutes/internal/failure"
	"github.com/thinkscotty/minutes/internal/models"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

// initRepo creates a working copy with one empty commit.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, args := range [][]string{
		{"init", "-q"},
		{"-c", "user.name=test", "-c", "user.email=test@example.com", "commit", "-q", "--allow-empty", "-m", "init"},
	} {
		if _, err := defaultGitRunner(context.Background(), dir, args...); err != nil {
			t.Fatalf("git %v: %v", args, err)
		}
	}
	return dir
}

func newTestLocal(repo string) *Local {
	cfg := config.DefaultConfig().Publish
	cfg.RepoDir = repo
	l := NewLocal(cfg)
	var tick atomic.Int64
	l.now = func() time.Time { return time.UnixMilli(1700000000000 + tick.Add(1)) }
	return l
}

func gitOut(t *testing.T, repo string, args ...string) string {
	t.Helper()
	out, err := defaultGitRunner(context.Background(), repo, args...)
	if err != nil {
		t.Fatalf("git %v: %v", args, err)
	}
	return out
}

func TestLocalPublishCommitsPost(t *testing.T) {
	requireGit(t)
	repo := initRepo(t)
	l := newTestLocal(repo)

	doc := models.Document{Content: "---\ntitle: \"Ship\"\n---\n\n# Ship\n", Title: "Ship v2"}
	res, err := l.Publish(context.Background(), doc, "ship-v2")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if res.FilePath != "data/posts/ship-v2.mdx" || res.Backend != "local" {
		t.Errorf("result = %+v", res)
	}
	if head := gitOut(t, repo, "rev-parse", "HEAD"); res.VersionID != head {
		t.Errorf("version = %s, HEAD = %s", res.VersionID, head)
	}
	if msg := gitOut(t, repo, "log", "-1", "--format=%s"); msg != "Add meeting summary: Ship v2" {
		t.Errorf("commit message = %q", msg)
	}
	if author := gitOut(t, repo, "log", "-1", "--format=%an <%ae>"); author != "Minutes Bot <minutes-bot@users.noreply.github.com>" {
		t.Errorf("author = %q", author)
	}
	data, err := os.ReadFile(filepath.Join(repo, "data", "posts", "ship-v2.mdx"))
	if err != nil || string(data) != doc.Content {
		t.Errorf("file = %q, %v", data, err)
	}
}

func TestLocalPublishCollisionAndUnrelatedIndex(t *testing.T) {
	requireGit(t)
	repo := initRepo(t)
	l := newTestLocal(repo)

	// Something the operator staged by hand must not be swept into our commit.
	if err := os.WriteFile(filepath.Join(repo, "notes.txt"), []byte("wip"), 0o644); err != nil {
		t.Fatal(err)
	}
	gitOut(t, repo, "add", "notes.txt")

	first, err := l.Publish(context.Background(), models.Document{Content: "one", Title: "Same"}, "same")
	if err != nil {
		t.Fatal(err)
	}
	second, err := l.Publish(context.Background(), models.Document{Content: "two", Title: "Same"}, "same")
	if err != nil {
		t.Fatal(err)
	}

	if first.FilePath != "data/posts/same.mdx" {
		t.Errorf("first = %s", first.FilePath)
	}
	if second.FilePath == first.FilePath || !strings.HasPrefix(second.FilePath, "data/posts/same-17000000000") {
		t.Errorf("second = %s", second.FilePath)
	}
	data, _ := os.ReadFile(filepath.Join(repo, "data", "posts", "same.mdx"))
	if string(data) != "one" {
		t.Errorf("first post overwritten: %q", data)
	}
	if files := gitOut(t, repo, "show", "--name-only", "--format=", "HEAD"); files != second.FilePath {
		t.Errorf("HEAD touches %q", files)
	}
	if staged := gitOut(t, repo, "diff", "--cached", "--name-only"); staged != "notes.txt" {
		t.Errorf("staged = %q", staged)
	}
}

func TestLocalPublishStagesImage(t *testing.T) {
	requireGit(t)
	repo := initRepo(t)
	l := newTestLocal(repo)

	imgPath := filepath.Join(repo, "public", "static", "images", "generated", "ship-1.jpg")
	if err := os.MkdirAll(filepath.Dir(imgPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(imgPath, []byte("jpg"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc := models.Document{Content: "x", Title: "Ship", Image: &models.Image{FilePath: imgPath, LocalPath: "/static/images/generated/ship-1.jpg"}}
	if _, err := l.Publish(context.Background(), doc, "ship"); err != nil {
		t.Fatal(err)
	}
	files := gitOut(t, repo, "show", "--name-only", "--format=", "HEAD")
	if !strings.Contains(files, "public/static/images/generated/ship-1.jpg") || !strings.Contains(files, "data/posts/ship.mdx") {
		t.Errorf("committed files = %q", files)
	}
}

func TestLocalPublishConcurrentRuns(t *testing.T) {
	requireGit(t)
	repo := initRepo(t)
	l := newTestLocal(repo)

	const runs = 4
	var wg sync.WaitGroup
	results := make([]models.PublishResult, runs)
	errs := make([]error, runs)
	for i := range runs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = l.Publish(context.Background(), models.Document{Content: "c", Title: "Title"}, "title-"+string(rune('a'+i)))
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := range runs {
		if errs[i] != nil {
			t.Fatalf("run %d: %v", i, errs[i])
		}
		if seen[results[i].VersionID] {
			t.Errorf("duplicate commit %s", results[i].VersionID)
		}
		seen[results[i].VersionID] = true
	}
	if count := gitOut(t, repo, "rev-list", "--count", "HEAD"); count != "5" {
		t.Errorf("commit count = %s, want 5", count)
	}
}

func TestLocalPublishOutsideRepo(t *testing.T) {
	requireGit(t)
	l := newTestLocal(t.TempDir())
	_, err := l.Publish(context.Background(), models.Document{Content: "x", Title: "x"}, "x")
	if !errors.Is(err, failure.ErrPublish) {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestLocalPublishGitFailure(t *testing.T) {
	repo := t.TempDir()
	l := newTestLocal(repo)
	l.git = func(_ context.Context, dir string, args ...string) (string, error) {
		switch args[0] {
		case "rev-parse":
			return filepath.Join(dir, ".git"), os.MkdirAll(filepath.Join(dir, ".git"), 0o755)
		case "add":
			return "", errors.New("index.lock exists")
		}
		t.Fatalf("unexpected git %v", args)
		return "", nil
	}

	_, err := l.Publish(context.Background(), models.Document{Content: "x", Title: "x"}, "x")
	if !errors.Is(err, failure.ErrPublish) || !strings.Contains(err.Error(), "index.lock exists") {
		t.Fatalf("expected publish error with git output, got %v", err)
	}
	// The written file is not rolled back.
	if _, statErr := os.Stat(filepath.Join(repo, "data", "posts", "x.mdx")); statErr != nil {
		t.Errorf("post should remain on disk: %v", statErr)
	}
}
