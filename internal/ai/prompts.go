package ai

import (
	"strings"
	"unicode"
)

// BuildTitlePrompt asks for a short headline for the meeting.
func BuildTitlePrompt(transcript string) string {
	var sb strings.Builder
	sb.WriteString("Please generate a short, compelling title for a news article based on this meeting transcript. ")
	sb.WriteString("The title should be a short phrase of at most ten words that captures the main topic or decision.\n\n")
	sb.WriteString("IMPORTANT: Return ONLY the title on a single line. Do not use quotation marks, markdown or any other text.\n\n")
	sb.WriteString("Meeting transcript:\n")
	sb.WriteString(transcript)
	return sb.String()
}

// BuildNarrativePrompt asks for the long-form markdown rewrite.
func BuildNarrativePrompt(transcript string) string {
	var sb strings.Builder
	sb.WriteString("Please transform the following meeting transcript into a well-structured written story in markdown format.\n\n")
	sb.WriteString("Key requirements:\n")
	sb.WriteString("- Create an engaging narrative that captures the key points and discussions from the meeting\n")
	sb.WriteString("- Use proper markdown formatting with headers and emphasis where appropriate\n")
	sb.WriteString("- Start with a single top-level heading (# Title) followed by clear sections and subsections\n")
	sb.WriteString("- Make it readable and engaging for a news article audience\n")
	sb.WriteString("- Preserve important quotes and decisions from the meeting\n")
	sb.WriteString("- Avoid bullet points and instead write in full sentences and paragraphs\n\n")
	sb.WriteString("Meeting transcript:\n")
	sb.WriteString(transcript)
	return sb.String()
}

// BuildSummaryPrompt asks for the one-sentence teaser used in the frontmatter.
func BuildSummaryPrompt(transcript string) string {
	var sb strings.Builder
	sb.WriteString("Please generate a very short one-sentence summary of this meeting transcript. ")
	sb.WriteString("The summary should capture the main topic or purpose of the meeting in a concise way suitable as a teaser for a news article.\n\n")
	sb.WriteString("Meeting transcript:\n")
	sb.WriteString(transcript)
	return sb.String()
}

// BuildKeywordsPrompt asks for stock-photo search terms.
func BuildKeywordsPrompt(transcript string) string {
	var sb strings.Builder
	sb.WriteString("Suggest 2 to 4 simple English keywords for finding a stock photo that illustrates this meeting transcript. ")
	sb.WriteString("Prefer concrete, visual nouns.\n\n")
	sb.WriteString("IMPORTANT: Return ONLY the keywords separated by single spaces on one line, with no punctuation or other text.\n\n")
	sb.WriteString("Meeting transcript:\n")
	sb.WriteString(transcript)
	return sb.String()
}

// quotePairs lists wrapping quotation marks removed from generated titles.
var quotePairs = [][2]string{
	{`"`, `"`},
	{`'`, `'`},
	{"“", "”"},
	{"‘", "’"},
	{"«", "»"},
	{"`", "`"},
}

// CleanTitle reduces a model reply to a bare title: first non-empty line,
// heading markers and a "Title:" label removed, wrapping quotes stripped.
func CleanTitle(raw string) string {
	title := firstLine(raw)
	title = strings.TrimSpace(strings.TrimLeft(title, "#"))
	if len(title) > 6 && strings.EqualFold(title[:6], "title:") {
		title = strings.TrimSpace(title[6:])
	}
	title = strings.Trim(title, "*_ ")

	for changed := true; changed; {
		changed = false
		for _, q := range quotePairs {
			if len(title) >= len(q[0])+len(q[1]) && strings.HasPrefix(title, q[0]) && strings.HasSuffix(title, q[1]) {
				title = strings.TrimSpace(title[len(q[0]) : len(title)-len(q[1])])
				changed = true
			}
		}
	}
	return title
}

// CleanKeywords normalizes a model reply to at most four space-separated
// terms made of letters, digits and hyphens.
func CleanKeywords(raw string) string {
	line := firstLine(raw)
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-')
	})

	terms := make([]string, 0, 4)
	for _, f := range fields {
		f = strings.Trim(f, "-")
		if f == "" {
			continue
		}
		terms = append(terms, f)
		if len(terms) == 4 {
			break
		}
	}
	return strings.Join(terms, " ")
}

// FallbackKeywords is the deterministic degraded path for keyword extraction:
// the first three whitespace-delimited tokens of the transcript.
func FallbackKeywords(transcript string) string {
	fields := strings.Fields(transcript)
	if len(fields) > 3 {
		fields = fields[:3]
	}
	return strings.Join(fields, " ")
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
