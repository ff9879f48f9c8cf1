package markdown

import (
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thinkscotty/minutes/internal/models"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 589000000, time.UTC)

type frontmatter struct {
	Title   string   `yaml:"title"`
	Date    string   `yaml:"date"`
	Tags    []string `yaml:"tags"`
	Draft   bool     `yaml:"draft"`
	Summary string   `yaml:"summary"`
	Images  []string `yaml:"images"`
}

// splitDocument returns the parsed frontmatter and the body that follows it.
func splitDocument(t *testing.T, content string) (frontmatter, string) {
	t.Helper()
	if !strings.HasPrefix(content, "---\n") {
		t.Fatalf("document does not start with a frontmatter delimiter:\n%s", content)
	}
	rest := content[len("---\n"):]
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		t.Fatalf("document has no closing frontmatter delimiter:\n%s", content)
	}
	var fm frontmatter
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		t.Fatalf("frontmatter is not valid YAML: %v\n%s", err, rest[:end])
	}
	return fm, strings.TrimPrefix(rest[end+len("\n---\n"):], "\n")
}

func TestAssembleWithoutImage(t *testing.T) {
	narrative := "# Shipping v2\n\nThe team agreed to ship next sprint.\n"
	doc := Assemble(narrative, "Shipping v2", "The team commits to a v2 release.", nil, fixedNow)

	fm, body := splitDocument(t, doc.Content)
	if fm.Title != "Shipping v2" {
		t.Errorf("title = %q", fm.Title)
	}
	if fm.Date != "2025-03-14T09:26:53.589Z" {
		t.Errorf("date = %q", fm.Date)
	}
	if strings.Join(fm.Tags, ",") != "Summit,transcript" {
		t.Errorf("tags = %v", fm.Tags)
	}
	if fm.Draft {
		t.Errorf("draft should be false")
	}
	if fm.Summary != "The team commits to a v2 release." {
		t.Errorf("summary = %q", fm.Summary)
	}
	if len(fm.Images) != 0 {
		t.Errorf("images = %v, want none", fm.Images)
	}
	if body != narrative {
		t.Errorf("body = %q, want %q", body, narrative)
	}
	if !strings.Contains(doc.Content, "draft: false\n") {
		t.Errorf("expected literal draft flag in:\n%s", doc.Content)
	}
}

func TestFrontmatterEscaping(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		summary string
	}{
		{"double quote", `The "Big" Decision`, `He said "ship it" twice.`},
		{"backslash", `C:\path\to\thing`, `trailing backslash \`},
		{"newline", "Line one\nLine two", "tab\there\r\nand crlf"},
		{"colon and hash", "Budget: 2025 # final", "key: value # not a comment"},
		{"control bytes", "bell\x07ring", "escape\x1b[0m"},
		{"single quotes", "It's 'fine'", "don't"},
		{"unicode", "Café ☕ - déjà vu", "日本語の要約"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Assemble("# Body\n", tt.title, tt.summary, nil, fixedNow)
			fm, _ := splitDocument(t, doc.Content)
			if fm.Title != tt.title {
				t.Errorf("title round-trip = %q, want %q", fm.Title, tt.title)
			}
			if fm.Summary != tt.summary {
				t.Errorf("summary round-trip = %q, want %q", fm.Summary, tt.summary)
			}
			if n := strings.Count(doc.Content, "\ntitle: "); n != 1 {
				t.Errorf("expected exactly one title field, found %d", n)
			}
		})
	}
}

func TestInsertImageAfterFirstHeading(t *testing.T) {
	img := models.Image{URL: "https://images.example/x.jpg", Alt: "team meeting", Credit: "Photo by Ann on Unsplash"}
	narrative := "# Title\n\n\nFirst paragraph.\n\n# Second\n\nMore."

	got := InsertImage(narrative, img)
	want := "# Title\n\n\n\n![team meeting](https://images.example/x.jpg)\n\n*Photo by Ann on Unsplash*\n\nFirst paragraph.\n\n# Second\n\nMore."
	if got != want {
		t.Fatalf("InsertImage:\n got %q\nwant %q", got, want)
	}
	if n := strings.Count(got, "!["); n != 1 {
		t.Fatalf("expected one image block, found %d", n)
	}
}

func TestInsertImageWithoutHeading(t *testing.T) {
	img := models.Image{URL: "https://images.example/x.jpg", Alt: "skyline", Credit: "Photo by Bo on Pexels"}
	narrative := "## Only a subheading\n\nText."

	got := InsertImage(narrative, img)
	if !strings.HasPrefix(got, "\n![skyline](https://images.example/x.jpg)\n\n*Photo by Bo on Pexels*\n") {
		t.Fatalf("image block should be the first content, got %q", got)
	}
	if !strings.HasSuffix(got, narrative) {
		t.Fatalf("narrative should follow the image block, got %q", got)
	}
}

func TestInsertImageIgnoresHeadingInCodeFence(t *testing.T) {
	img := models.Image{URL: "u.jpg", Alt: "a", Credit: "c"}
	narrative := "Intro.\n\n```sh\n# not a heading\n```\n\n# Real Heading\nBody."

	got := InsertImage(narrative, img)
	idx := strings.Index(got, "# Real Heading\n")
	if idx < 0 {
		t.Fatalf("heading missing: %q", got)
	}
	after := got[idx+len("# Real Heading\n"):]
	if !strings.HasPrefix(after, "\n![a](u.jpg)") {
		t.Fatalf("image should follow the real heading, got %q", got)
	}
}

func TestAssemblePrefersLocalImagePath(t *testing.T) {
	img := &models.Image{
		URL:       "https://images.example/remote.jpg",
		Alt:       "whiteboard",
		Credit:    "Photo by Cy on Unsplash",
		LocalPath: "/static/images/generated/ship-v2-1710000000000.jpg",
	}
	doc := Assemble("# Ship\n\nBody.", "Ship", "Summary.", img, fixedNow)

	fm, body := splitDocument(t, doc.Content)
	if len(fm.Images) != 1 || fm.Images[0] != img.LocalPath {
		t.Fatalf("images = %v, want [%s]", fm.Images, img.LocalPath)
	}
	if !strings.Contains(body, "![whiteboard]("+img.LocalPath+")") {
		t.Fatalf("body should embed local path:\n%s", body)
	}
	if strings.Contains(body, img.URL) {
		t.Fatalf("body should not embed remote url when a local copy exists")
	}
}

func TestImageAltAndDestinationEscaping(t *testing.T) {
	img := models.Image{URL: "https://x.example/a (1).jpg", Alt: "a [bracketed]\nalt", Credit: "c"}
	got := InsertImage("", img)
	if !strings.Contains(got, `![a \[bracketed\] alt](<https://x.example/a (1).jpg>)`) {
		t.Fatalf("unexpected image block %q", got)
	}
}
