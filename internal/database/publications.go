package database

import (
	"fmt"
	"time"

	"github.com/thinkscotty/minutes/internal/models"
)

// RecordPublication appends one completed publish to the log.
func (db *DB) RecordPublication(p *models.Publication) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	result, err := db.conn.Exec(
		`INSERT INTO publications (run_id, title, slug, file_path, version_id, backend, source, image_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.RunID, p.Title, p.Slug, p.FilePath, p.VersionID, p.Backend, p.Source, p.ImageURL, formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("record publication: %w", err)
	}
	p.ID, err = result.LastInsertId()
	return err
}

// ListPublications returns the most recent publications, newest first.
func (db *DB) ListPublications(limit int) ([]models.Publication, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(
		`SELECT id, run_id, title, slug, file_path, version_id, backend, source, image_url, created_at
		 FROM publications
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pubs []models.Publication
	for rows.Next() {
		var p models.Publication
		var createdAt string
		if err := rows.Scan(&p.ID, &p.RunID, &p.Title, &p.Slug, &p.FilePath, &p.VersionID,
			&p.Backend, &p.Source, &p.ImageURL, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt, _ = parseTime(createdAt)
		pubs = append(pubs, p)
	}
	return pubs, rows.Err()
}

// GetStats summarizes the publication log.
func (db *DB) GetStats() (models.Stats, error) {
	var s models.Stats
	var last *string
	err := db.conn.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN backend = 'local' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN backend != 'local' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN image_url != '' THEN 1 ELSE 0 END), 0),
		        MAX(created_at)
		 FROM publications`,
	).Scan(&s.TotalPublications, &s.LocalPublications, &s.RemotePublications, &s.WithImages, &last)
	if err != nil {
		return s, err
	}
	if last != nil {
		s.LastPublishedAt, _ = parseTime(*last)
	}
	s.DatabaseSizeBytes, _ = db.DatabaseSizeBytes()
	return s, nil
}
