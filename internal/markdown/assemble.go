// Package markdown assembles published articles: a YAML frontmatter block
// followed by the narrative body with an optional embedded photo.
//
// Assembly is a pure transformation. Callers pass the creation time so that
// output is reproducible in tests.
package markdown

import (
	"strconv"
	"strings"
	"time"

	"github.com/thinkscotty/minutes/internal/models"
)

// Tags is the fixed tag set declared by every generated article.
var Tags = []string{"Summit", "transcript"}

const (
	delimiter  = "---"
	dateLayout = "2006-01-02T15:04:05.000Z"
)

// Assemble builds the final document. When img is non-nil its embed block is
// inserted right after the first "# " heading (skipping blank lines that
// follow it) or prepended when the narrative has no such heading.
func Assemble(narrative, title, summary string, img *models.Image, now time.Time) models.Document {
	body := narrative
	if img != nil {
		body = InsertImage(narrative, *img)
	}

	return models.Document{
		Content:   Frontmatter(title, summary, img, now) + body,
		Title:     title,
		Image:     img,
		CreatedAt: now.UTC(),
	}
}

// Frontmatter renders the metadata header, terminated by a blank line.
// String values are emitted as YAML double-quoted scalars.
func Frontmatter(title, summary string, img *models.Image, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(delimiter + "\n")
	sb.WriteString("title: " + Quote(title) + "\n")
	sb.WriteString("date: " + Quote(now.UTC().Format(dateLayout)) + "\n")
	sb.WriteString("tags: " + quoteList(Tags) + "\n")
	sb.WriteString("draft: false\n")
	sb.WriteString("summary: " + Quote(summary) + "\n")
	if img != nil {
		sb.WriteString("images: " + quoteList([]string{img.Path()}) + "\n")
	}
	sb.WriteString(delimiter + "\n\n")
	return sb.String()
}

// InsertImage splices the image block into md.
func InsertImage(md string, img models.Image) string {
	block := imageBlock(img)

	h, ok := findTopHeading(md)
	if !ok {
		return block + md
	}

	lines := strings.Split(md, "\n")
	at := h.line + 1
	for at < len(lines) && strings.TrimSpace(lines[at]) == "" {
		at++
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:at]...)
	out = append(out, block)
	out = append(out, lines[at:]...)
	return strings.Join(out, "\n")
}

// Quote renders s as a YAML double-quoted scalar. Quotes, backslashes and
// control characters are escaped, so the value can never end the field early.
func Quote(s string) string {
	return strconv.Quote(s)
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = Quote(v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func imageBlock(img models.Image) string {
	return "\n![" + escapeAlt(img.Alt) + "](" + destination(img.Path()) + ")\n\n*" + img.Credit + "*\n"
}

func escapeAlt(alt string) string {
	alt = strings.Join(strings.Fields(alt), " ")
	r := strings.NewReplacer(`\`, `\\`, "[", `\[`, "]", `\]`)
	return r.Replace(alt)
}

// destination wraps link targets that contain spaces or parentheses.
func destination(path string) string {
	if strings.ContainsAny(path, " ()<>") {
		return "<" + strings.NewReplacer("<", "%3C", ">", "%3E").Replace(path) + ">"
	}
	return path
}
