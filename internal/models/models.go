package models

import "time"

// Image is a stock photo chosen for an article. LocalPath is set only when
// the photo was downloaded into the generated-images directory; it is the
// site-relative reference, FilePath the file on disk.
type Image struct {
	URL       string `json:"url"`
	Alt       string `json:"alt"`
	Credit    string `json:"credit"`
	LocalPath string `json:"local_path,omitempty"`
	FilePath  string `json:"-"`
}

// Path returns the reference embedded in the article, preferring the local copy.
func (i Image) Path() string {
	if i.LocalPath != "" {
		return i.LocalPath
	}
	return i.URL
}

// Document is the final persisted article: frontmatter followed by the body.
type Document struct {
	Content   string    `json:"content"`
	Title     string    `json:"title"`
	Image     *Image    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PublishResult is returned once per successful publish and never updated.
type PublishResult struct {
	FilePath  string `json:"file_path"`
	VersionID string `json:"version_id"`
	Backend   string `json:"backend"`
}

type Publication struct {
	ID        int64     `json:"id"`
	RunID     string    `json:"run_id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	FilePath  string    `json:"file_path"`
	VersionID string    `json:"version_id"`
	Backend   string    `json:"backend"`
	Source    string    `json:"source"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type Stats struct {
	TotalPublications  int       `json:"total_publications"`
	LocalPublications  int       `json:"local_publications"`
	RemotePublications int       `json:"remote_publications"`
	WithImages         int       `json:"with_images"`
	LastPublishedAt    time.Time `json:"last_published_at"`
	DatabaseSizeBytes  int64     `json:"database_size_bytes"`
}
