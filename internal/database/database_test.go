package database

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/thinkscotty/minutes/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "data", "minutes.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPublicationLog(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	entries := []models.Publication{
		{RunID: "r1", Title: "First", Slug: "first", FilePath: "data/posts/first.mdx", VersionID: "abc", Backend: "local", Source: "transcript", CreatedAt: base},
		{RunID: "r2", Title: "Second", Slug: "second", FilePath: "data/posts/second.mdx", VersionID: "def", Backend: "github", Source: "audio", ImageURL: "/static/images/generated/second-1.jpg", CreatedAt: base.Add(time.Hour)},
	}
	for i := range entries {
		if err := db.RecordPublication(&entries[i]); err != nil {
			t.Fatalf("RecordPublication: %v", err)
		}
		if entries[i].ID == 0 {
			t.Errorf("ID not set")
		}
	}

	pubs, err := db.ListPublications(10)
	if err != nil {
		t.Fatalf("ListPublications: %v", err)
	}
	if len(pubs) != 2 || pubs[0].Title != "Second" || pubs[1].Title != "First" {
		t.Fatalf("pubs = %+v", pubs)
	}
	if !pubs[0].CreatedAt.Equal(base.Add(time.Hour)) || pubs[0].Source != "audio" {
		t.Errorf("newest = %+v", pubs[0])
	}

	limited, err := db.ListPublications(1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limit: %d, %v", len(limited), err)
	}

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalPublications != 2 || stats.LocalPublications != 1 || stats.RemotePublications != 1 || stats.WithImages != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if !stats.LastPublishedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("last published = %v", stats.LastPublishedAt)
	}
}

func TestRecordPublicationDefaultsTimestamp(t *testing.T) {
	db := openTestDB(t)
	p := models.Publication{RunID: "r", Title: "T", Slug: "t", FilePath: "p", VersionID: "v", Backend: "local", Source: "transcript"}
	if err := db.RecordPublication(&p); err != nil {
		t.Fatal(err)
	}
	pubs, _ := db.ListPublications(0)
	if len(pubs) != 1 || time.Since(pubs[0].CreatedAt) > time.Minute {
		t.Errorf("pubs = %+v", pubs)
	}
}

func TestEmptyStats(t *testing.T) {
	db := openTestDB(t)
	stats, err := db.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalPublications != 0 || !stats.LastPublishedAt.IsZero() {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSessions(t *testing.T) {
	db := openTestDB(t)

	live := models.Session{Token: "live", ExpiresAt: time.Now().Add(time.Hour)}
	expired := models.Session{Token: "old", ExpiresAt: time.Now().Add(-time.Hour)}
	for _, s := range []*models.Session{&live, &expired} {
		if err := db.CreateSession(s); err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
	}

	if _, err := db.GetSession("live"); err != nil {
		t.Errorf("GetSession(live): %v", err)
	}
	if _, err := db.GetSession("old"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expired session should not be returned, got %v", err)
	}

	n, err := db.CleanExpiredSessions()
	if err != nil || n != 1 {
		t.Errorf("CleanExpiredSessions = %d, %v", n, err)
	}

	if err := db.DeleteSession("live"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.GetSession("live"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("deleted session still present: %v", err)
	}
}
