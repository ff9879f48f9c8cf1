package slug

import (
	"regexp"
	"strings"
	"testing"
)

var valid = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestMake(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Ship v2 Next Sprint", "ship-v2-next-sprint"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Q3 Roadmap: What's Next?", "q3-roadmap-whats-next"},
		{"multiple   spaces\tand\nnewlines", "multiple-spaces-and-newlines"},
		{"dash -- heavy --- title", "dash-heavy-title"},
		{"-already-a-slug-", "already-a-slug"},
		{"Café Décisions", "cafe-decisions"},
		{`She said "go"`, "she-said-go"},
		{"!!!", ""},
		{"", ""},
		{"2024 Budget Review", "2024-budget-review"},
		{"emoji 🚀 launch", "emoji-launch"},
		{"no\u00a0break space", "no-break-space"},
		{"vertical\vtab", "vertical-tab"},
		{"em\u2003space", "em-space"},
		{"ideographic\u3000space", "ideographic-space"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := Make(tt.title); got != tt.want {
				t.Errorf("Make(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestMakeProperties(t *testing.T) {
	titles := []string{
		"We decided to ship v2 next sprint.",
		"  --Weird__Title--  ",
		"ÀÉÎÕÜ çñ",
		"a - b - c",
		"Tabs\t\tEverywhere",
		"中文标题 mixed",
		"UPPER lower 123",
		"-",
		"trailing hyphen-",
	}

	for _, title := range titles {
		t.Run(title, func(t *testing.T) {
			got := Make(title)
			if got != "" && !valid.MatchString(got) {
				t.Fatalf("Make(%q) = %q is not a valid slug", title, got)
			}
			if strings.Contains(got, "--") {
				t.Fatalf("Make(%q) = %q contains a double hyphen", title, got)
			}
			if again := Make(got); again != got {
				t.Fatalf("Make not idempotent: Make(%q) = %q", got, again)
			}
		})
	}
}
