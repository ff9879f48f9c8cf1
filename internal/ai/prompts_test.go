package ai

import "testing"

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Ship It", "Ship It"},
		{`"Ship It"`, "Ship It"},
		{"'Ship It'", "Ship It"},
		{"“Ship It”", "Ship It"},
		{`"'Nested'"`, "Nested"},
		{"# Ship It", "Ship It"},
		{"Title: Ship It", "Ship It"},
		{"**Ship It**", "Ship It"},
		{"\n\n  Ship It  \nsecond line", "Ship It"},
		{`It's "fine"`, `It's "fine"`},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := CleanTitle(tt.raw); got != tt.want {
				t.Errorf("CleanTitle(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCleanKeywords(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"office meeting", "office meeting"},
		{"office, meeting, team, laptop, coffee", "office meeting team laptop"},
		{"  city-hall  budget\nignored line", "city-hall budget"},
		{"--- ...", ""},
	}
	for _, tt := range tests {
		if got := CleanKeywords(tt.raw); got != tt.want {
			t.Errorf("CleanKeywords(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestFallbackKeywords(t *testing.T) {
	tests := []struct {
		transcript string
		want       string
	}{
		{"We decided to ship v2 next sprint.", "We decided to"},
		{"  two\twords ", "two words"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FallbackKeywords(tt.transcript); got != tt.want {
			t.Errorf("FallbackKeywords(%q) = %q, want %q", tt.transcript, got, tt.want)
		}
	}
}
