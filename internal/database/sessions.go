package database

import (
	"github.com/thinkscotty/minutes/internal/models"
)

// CreateSession inserts a new session record.
func (db *DB) CreateSession(sess *models.Session) error {
	result, err := db.conn.Exec(
		`INSERT INTO sessions (token, expires_at) VALUES (?, ?)`,
		sess.Token, formatTime(sess.ExpiresAt),
	)
	if err != nil {
		return err
	}
	sess.ID, err = result.LastInsertId()
	return err
}

// GetSession retrieves a non-expired session by token.
func (db *DB) GetSession(token string) (models.Session, error) {
	var sess models.Session
	var expiresAt, createdAt string
	err := db.conn.QueryRow(
		`SELECT id, token, expires_at, created_at
		 FROM sessions
		 WHERE token = ? AND expires_at > datetime('now')`,
		token,
	).Scan(&sess.ID, &sess.Token, &expiresAt, &createdAt)
	if err != nil {
		return sess, err
	}
	sess.ExpiresAt, _ = parseTime(expiresAt)
	sess.CreatedAt, _ = parseTime(createdAt)
	return sess, nil
}

// DeleteSession removes a specific session (for logout).
func (db *DB) DeleteSession(token string) error {
	_, err := db.conn.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// CleanExpiredSessions removes all expired sessions.
func (db *DB) CleanExpiredSessions() (int64, error) {
	result, err := db.conn.Exec(`DELETE FROM sessions WHERE expires_at <= datetime('now')`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
