package publish

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/thinkscotty/minutes/internal/config"
	"github.com/thinkscotty/minutes/internal/failure"
	"github.com/thinkscotty/minutes/internal/models"
)

const (
	githubAccept        = "application/vnd.github.v3+json"
	missingGitHubConfig = "Missing required environment variables: GITHUB_TOKEN, GITHUB_OWNER, and GITHUB_REPO must be set"
)

type contentsPutRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type contentsPutResponse struct {
	Content struct {
		Path string `json:"path"`
	} `json:"content"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

type contentsGetResponse struct {
	SHA string `json:"sha"`
}

// GitHub publishes through the repository contents API. It needs no local
// state and is safe for concurrent runs; the existence check and the write
// are separate calls.
type GitHub struct {
	httpClient *http.Client
	token      string
	owner      string
	repo       string
	branch     string
	baseURL    string
	postsDir   string
	now        func() time.Time
}

func NewGitHub(cfg config.PublishConfig) *GitHub {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	branch := cfg.GitHub.Branch
	if branch == "" {
		branch = "main"
	}
	base := strings.TrimRight(cfg.GitHub.APIBaseURL, "/")
	if base == "" {
		base = "https://api.github.com"
	}
	return &GitHub{
		httpClient: &http.Client{Timeout: timeout},
		token:      cfg.GitHub.Token,
		owner:      cfg.GitHub.Owner,
		repo:       cfg.GitHub.Repo,
		branch:     branch,
		baseURL:    base,
		postsDir:   strings.Trim(cfg.PostsDir, "/"),
		now:        time.Now,
	}
}

func (g *GitHub) Name() string      { return config.BackendGitHub }
func (g *GitHub) LocalAssets() bool { return false }

// CheckConfig reports missing connection settings without touching the network.
func (g *GitHub) CheckConfig() error {
	if g.token == "" || g.owner == "" || g.repo == "" {
		return failure.WithMessage(failure.Wrap(failure.ErrConfiguration, "remote publish", "config",
			missingGitHubConfig, nil), missingGitHubConfig)
	}
	return nil
}

func (g *GitHub) Publish(ctx context.Context, doc models.Document, slug string) (models.PublishResult, error) {
	if err := g.CheckConfig(); err != nil {
		return models.PublishResult{}, err
	}
	slog.Info("Publishing via GitHub API", "repository", g.owner+"/"+g.repo, "branch", g.branch)

	filePath := path.Join(g.postsDir, fileName(slug, 0))
	sha, exists, err := g.lookup(ctx, filePath)
	if err != nil {
		return models.PublishResult{}, remoteErr("lookup", err)
	}
	if exists {
		filePath = path.Join(g.postsDir, fileName(slug, g.now().UnixMilli()))
		slog.Info("Post already exists, using timestamped name", "path", filePath)
		// The timestamped path is expected to be new; an existing file there
		// is updated and the API requires its current hash.
		if sha, exists, err = g.lookup(ctx, filePath); err != nil {
			return models.PublishResult{}, remoteErr("lookup", err)
		}
	}

	resp, err := g.put(ctx, filePath, doc.Content, CommitMessage(doc.Title), sha)
	if err != nil {
		return models.PublishResult{}, remoteErr("write", err)
	}

	result := models.PublishResult{FilePath: filePath, VersionID: resp.Commit.SHA, Backend: g.Name()}
	if resp.Content.Path != "" {
		result.FilePath = resp.Content.Path
	}
	slog.Info("Committed post via GitHub API", "path", result.FilePath, "commit", result.VersionID)
	return result, nil
}

func (g *GitHub) contentsURL(filePath string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		g.baseURL, url.PathEscape(g.owner), url.PathEscape(g.repo), escapePath(filePath))
}

// lookup reports whether filePath exists on the branch and returns its blob hash.
func (g *GitHub) lookup(ctx context.Context, filePath string) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.contentsURL(filePath)+"?ref="+url.QueryEscape(g.branch), nil)
	if err != nil {
		return "", false, err
	}
	g.setHeaders(req)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var body contentsGetResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return "", true, fmt.Errorf("parse contents response: %w", err)
		}
		return body.SHA, true, nil
	case resp.StatusCode == http.StatusNotFound:
		return "", false, nil
	default:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", false, apiError(resp, data)
	}
}

func (g *GitHub) put(ctx context.Context, filePath, content, message, sha string) (*contentsPutResponse, error) {
	body, err := json.Marshal(contentsPutRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString([]byte(content)),
		Branch:  g.branch,
		SHA:     sha,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, g.contentsURL(filePath), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	g.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp, data)
	}

	var out contentsPutResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse contents response: %w", err)
	}
	if out.Commit.SHA == "" {
		return nil, fmt.Errorf("GitHub API response has no commit hash")
	}
	return &out, nil
}

func (g *GitHub) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Accept", githubAccept)
}

func apiError(resp *http.Response, body []byte) error {
	return fmt.Errorf("GitHub API error: %d %s - %s",
		resp.StatusCode, http.StatusText(resp.StatusCode), strings.TrimSpace(string(body)))
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

func remoteErr(step string, err error) error {
	return failure.Wrap(failure.ErrPublish, "remote publish", step, "", err)
}
