package config

import (
	"strconv"
	"strings"
)

// applyEnv overlays deployment secrets and switches from the environment.
// Variable names match the ones the hosted deployment already uses.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				*dst = b
			}
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				*dst = i
			}
		}
	}

	integer("PORT", &cfg.Server.Port)
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("DATABASE_PATH", &cfg.Database.Path)

	str("SITE_PASSWORD", &cfg.Site.Password)
	boolean("SITE_PASSWORD_ENABLED", &cfg.Site.PasswordEnabled)
	str("TRANSCRIPT_API_PASSWORD", &cfg.Site.TranscriptPassword)

	str("AI_PROVIDER", &cfg.AI.Provider)
	str("ANTHROPIC_API_KEY", &cfg.AI.Anthropic.APIKey)
	str("ANTHROPIC_MODEL", &cfg.AI.Anthropic.Model)
	str("OPENAI_API_KEY", &cfg.AI.OpenAI.APIKey)
	str("OPENAI_BASE_URL", &cfg.AI.OpenAI.BaseURL)
	str("GEMINI_API_KEY", &cfg.AI.Gemini.APIKey)
	str("GOOGLE_CLOUD_PROJECT", &cfg.AI.Vertex.Project)
	str("GOOGLE_CLOUD_REGION", &cfg.AI.Vertex.Region)

	// Whisper shares the OpenAI key unless one is set explicitly.
	if cfg.Transcription.APIKey == "" {
		str("OPENAI_API_KEY", &cfg.Transcription.APIKey)
	}
	str("TRANSCRIPTION_API_KEY", &cfg.Transcription.APIKey)

	str("UNSPLASH_ACCESS_KEY", &cfg.Images.UnsplashAccessKey)
	str("PEXELS_API_KEY", &cfg.Images.PexelsAPIKey)

	str("PUBLISH_BACKEND", &cfg.Publish.Backend)
	str("REPO_DIR", &cfg.Publish.RepoDir)
	str("GIT_USER_NAME", &cfg.Publish.CommitterName)
	str("GIT_USER_EMAIL", &cfg.Publish.CommitterEmail)
	str("GITHUB_TOKEN", &cfg.Publish.GitHub.Token)
	str("GITHUB_OWNER", &cfg.Publish.GitHub.Owner)
	str("GITHUB_REPO", &cfg.Publish.GitHub.Repo)
	str("GITHUB_BRANCH", &cfg.Publish.GitHub.Branch)
}
