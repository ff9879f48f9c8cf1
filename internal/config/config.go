package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Publishing backends.
const (
	BackendAuto   = "auto"
	BackendLocal  = "local"
	BackendGitHub = "github"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Logging       LoggingConfig       `yaml:"logging"`
	Site          SiteConfig          `yaml:"site"`
	AI            AIConfig            `yaml:"ai"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Images        ImagesConfig        `yaml:"images"`
	Publish       PublishConfig       `yaml:"publish"`
}

type ServerConfig struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text", "json" or "" to pick by terminal
}

// SiteConfig holds the two shared secrets guarding the service.
type SiteConfig struct {
	Password           string `yaml:"password"`
	PasswordEnabled    bool   `yaml:"password_enabled"`
	TranscriptPassword string `yaml:"transcript_api_password"`
}

// ProviderConfig configures one hosted generative backend.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type VertexConfig struct {
	Project         string `yaml:"project"`
	Region          string `yaml:"region"`
	Model           string `yaml:"model"`
	CredentialsFile string `yaml:"credentials_file"` // empty uses application default credentials
}

type AIConfig struct {
	Provider       string         `yaml:"provider"` // anthropic, openai, gemini or vertex
	TimeoutSeconds int            `yaml:"timeout_seconds"`
	Anthropic      ProviderConfig `yaml:"anthropic"`
	OpenAI         ProviderConfig `yaml:"openai"`
	Gemini         ProviderConfig `yaml:"gemini"`
	Vertex         VertexConfig   `yaml:"vertex"`
}

type TranscriptionConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	MaxUploadMB    int    `yaml:"max_upload_mb"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type ImagesConfig struct {
	UnsplashAccessKey string `yaml:"unsplash_access_key"`
	UnsplashBaseURL   string `yaml:"unsplash_base_url"`
	PexelsAPIKey      string `yaml:"pexels_api_key"`
	PexelsBaseURL     string `yaml:"pexels_base_url"`
	Download          bool   `yaml:"download"`
	Dir               string `yaml:"dir"`        // relative paths resolve against publish.repo_dir
	URLPrefix         string `yaml:"url_prefix"` // site path the downloaded files are served under
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
}

type GitHubConfig struct {
	Token      string `yaml:"token"`
	Owner      string `yaml:"owner"`
	Repo       string `yaml:"repo"`
	Branch     string `yaml:"branch"`
	APIBaseURL string `yaml:"api_base_url"`
}

type PublishConfig struct {
	Backend        string       `yaml:"backend"`
	RepoDir        string       `yaml:"repo_dir"`
	PostsDir       string       `yaml:"posts_dir"`
	CommitterName  string       `yaml:"committer_name"`
	CommitterEmail string       `yaml:"committer_email"`
	TimeoutSeconds int          `yaml:"timeout_seconds"`
	GitHub         GitHubConfig `yaml:"github"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:                "0.0.0.0",
			Port:                3000,
			ReadTimeoutSeconds:  60,
			WriteTimeoutSeconds: 600,
		},
		Database: DatabaseConfig{
			Path: "./minutes.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		AI: AIConfig{
			Provider:       "anthropic",
			TimeoutSeconds: 120,
			Anthropic: ProviderConfig{
				Model:   "claude-3-7-sonnet-20250219",
				BaseURL: "https://api.anthropic.com/v1/messages",
			},
			OpenAI: ProviderConfig{
				Model: "gpt-4o-mini",
			},
			Gemini: ProviderConfig{
				Model:   "gemini-2.5-flash",
				BaseURL: "https://generativelanguage.googleapis.com/v1beta/models",
			},
			Vertex: VertexConfig{
				Region: "us-central1",
				Model:  "gemini-1.5-pro",
			},
		},
		Transcription: TranscriptionConfig{
			Model:          "whisper-1",
			MaxUploadMB:    25,
			TimeoutSeconds: 300,
		},
		Images: ImagesConfig{
			UnsplashBaseURL: "https://api.unsplash.com",
			PexelsBaseURL:   "https://api.pexels.com/v1",
			Download:        true,
			Dir:             "public/static/images/generated",
			URLPrefix:       "/static/images/generated",
			TimeoutSeconds:  30,
		},
		Publish: PublishConfig{
			Backend:        BackendAuto,
			RepoDir:        ".",
			PostsDir:       "data/posts",
			CommitterName:  "Minutes Bot",
			CommitterEmail: "minutes-bot@users.noreply.github.com",
			TimeoutSeconds: 60,
			GitHub: GitHubConfig{
				Branch:     "main",
				APIBaseURL: "https://api.github.com",
			},
		},
	}
}

// Load reads a YAML config file, merges it over defaults and then applies
// environment overrides. If the file does not exist, defaults plus the
// environment are returned without error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		slog.Info("No config file found, using defaults", "path", path)
	default:
		return cfg, err
	}

	applyEnv(&cfg, os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values that would make the service misbehave regardless of
// which endpoint is used. Secrets are checked per run by the pipeline.
func (c Config) Validate() error {
	var problems []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	switch c.Publish.Backend {
	case BackendAuto, BackendLocal, BackendGitHub:
	default:
		problems = append(problems, fmt.Sprintf("publish.backend %q must be auto, local or github", c.Publish.Backend))
	}
	switch c.AI.Provider {
	case "anthropic", "openai", "gemini", "vertex":
	default:
		problems = append(problems, fmt.Sprintf("ai.provider %q must be anthropic, openai, gemini or vertex", c.AI.Provider))
	}
	if strings.TrimSpace(c.Publish.PostsDir) == "" {
		problems = append(problems, "publish.posts_dir is required")
	}
	if c.Transcription.MaxUploadMB <= 0 {
		problems = append(problems, "transcription.max_upload_mb must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ResolvedBackend returns the publishing backend to use for a run. "auto"
// picks the remote API on hosted deployments (VERCEL=1).
func (c Config) ResolvedBackend(lookup func(string) (string, bool)) string {
	if c.Publish.Backend != BackendAuto {
		return c.Publish.Backend
	}
	if v, ok := lookup("VERCEL"); ok && v == "1" {
		return BackendGitHub
	}
	return BackendLocal
}

// ImagesDir returns the on-disk directory for downloaded images.
func (c Config) ImagesDir() string {
	if filepath.IsAbs(c.Images.Dir) {
		return c.Images.Dir
	}
	return filepath.Join(c.Publish.RepoDir, c.Images.Dir)
}

// MaxUploadBytes is the audio upload limit.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.Transcription.MaxUploadMB) * 1024 * 1024
}
