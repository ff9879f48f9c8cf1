package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/thinkscotty/minutes/internal/auth"
	"github.com/thinkscotty/minutes/internal/config"
	"github.com/thinkscotty/minutes/internal/database"
	"github.com/thinkscotty/minutes/internal/models"
	"github.com/thinkscotty/minutes/internal/pipeline"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, dbPath string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "database:\n  path: " + dbPath + "\nlogging:\n  level: error\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHistoryCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "minutes.db")
	db, err := database.New(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []models.Publication{
		{RunID: "r1", Title: "Budget Review", Slug: "budget-review", FilePath: "data/posts/budget-review.mdx", VersionID: "0123456789abcdef", Backend: "local", Source: "transcript", CreatedAt: time.Now().Add(-time.Hour)},
		{RunID: "r2", Title: "Shipping v2", Slug: "shipping-v2", FilePath: "data/posts/shipping-v2.mdx", VersionID: "fedcba", Backend: "github", Source: "audio", ImageURL: "https://img.example/x.jpg", CreatedAt: time.Now()},
	} {
		if err := db.RecordPublication(&p); err != nil {
			t.Fatal(err)
		}
	}
	db.Close()

	out, err := runCLI(t, "", "history", "--config", writeConfig(t, dbPath))
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	for _, want := range []string{"Budget Review", "Shipping v2", "0123456789", "github", "2 total, 1 local, 1 remote, 1 with images"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "0123456789abcdef") {
		t.Errorf("version should be shortened:\n%s", out)
	}
	if strings.Index(out, "Shipping v2") > strings.Index(out, "Budget Review") {
		t.Errorf("newest publication should come first:\n%s", out)
	}
}

func TestHistoryCommandEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "minutes.db")
	out, err := runCLI(t, "", "history", "--config", writeConfig(t, dbPath))
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No publications yet.") {
		t.Errorf("output = %q", out)
	}
}

func TestProcessCommandRequiresOneInput(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "minutes.db")
	cfgPath := writeConfig(t, dbPath)

	for _, args := range [][]string{
		{"process", "--config", cfgPath},
		{"process", "--config", cfgPath, "--transcript", "a.txt", "--audio", "a.mp3"},
	} {
		if _, err := runCLI(t, "", args...); err == nil || !strings.Contains(err.Error(), "exactly one") {
			t.Errorf("%v: err = %v", args, err)
		}
	}
}

func TestHashPasswordCommand(t *testing.T) {
	out, err := runCLI(t, "from-stdin\n", "hash-password")
	if err != nil {
		t.Fatalf("hash-password: %v", err)
	}
	hash := strings.TrimSpace(out)
	if !auth.IsHash(hash) || !auth.CheckSecret("from-stdin", hash) {
		t.Errorf("hash = %q", hash)
	}

	if _, err := runCLI(t, "\n", "hash-password"); err == nil {
		t.Errorf("empty password should fail")
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := runCLI(t, "", "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, version) {
		t.Errorf("output = %q", out)
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Name", "Count"}, [][]string{{"local", "3"}, {"github"}}, []columnAlignment{alignLeft, alignRight})
	for _, want := range []string{"╭", "NAME", "local", "github", "3"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if renderTable(nil, nil, nil) != "" {
		t.Errorf("no headers should render nothing")
	}
}

func TestRenderResult(t *testing.T) {
	out := renderResult(&pipeline.Result{
		RunID:            "run-1",
		Title:            "Shipping v2",
		FilePath:         "data/posts/shipping-v2.mdx",
		CommitHash:       "abc123",
		Backend:          "local",
		KeywordsFallback: true,
		TranscriptLength: 42,
	})
	for _, want := range []string{"run-1", "data/posts/shipping-v2.mdx", "abc123", "none", "yes", "42"} {
		if !strings.Contains(out, want) {
			t.Errorf("result missing %q:\n%s", want, out)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	newLogger(config.LoggingConfig{Level: "warn"}, &buf).Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level: %q", buf.String())
	}

	buf.Reset()
	newLogger(config.LoggingConfig{Level: "debug"}, &buf).Debug("shown", "k", "v")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("non-terminal output should be JSON: %q", buf.String())
	}
	if entry["msg"] != "shown" || entry["k"] != "v" {
		t.Errorf("entry = %v", entry)
	}

	buf.Reset()
	newLogger(config.LoggingConfig{Format: "text"}, &buf).Info("plain")
	if !strings.Contains(buf.String(), "msg=plain") {
		t.Errorf("text output = %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
