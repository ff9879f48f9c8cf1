package markdown

import "testing"

func TestFindTopHeading(t *testing.T) {
	tests := []struct {
		name string
		md   string
		want string
	}{
		{"atx", "# Hello World\n\nBody", "Hello World"},
		{"after paragraph", "Intro line\n# Title\n", "Title"},
		{"subheading only", "## Sub\n\ntext", ""},
		{"setext ignored", "Title\n=====\n\ntext", ""},
		{"indented ignored", "   # Indented\n", ""},
		{"fenced ignored", "```\n# comment\n```\n", ""},
		{"second wins when first fenced", "```\n# x\n```\n\n# Real\n", "Real"},
		{"no space", "#Hashtag\n", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := findTopHeading(tt.md)
			if ok != (tt.want != "") || h.title != tt.want {
				t.Errorf("findTopHeading() = %+v, %v, want %q", h, ok, tt.want)
			}
		})
	}
}
