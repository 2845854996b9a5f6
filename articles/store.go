package articles

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Custom errors for store operations
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoArticles      = errors.New("no articles; run crawl first")
)

// Store persists crawl sessions and their records using SQLite.
type Store struct {
	db *sql.DB
}

// Session is one crawl run. Its records are replaced wholesale whenever the
// session is crawled again.
type Session struct {
	SessionID    uuid.UUID `json:"session_id"`
	BaseURL      string    `json:"base_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ArticleCount int       `json:"article_count"`
}

// NewStore creates a new store with the given database path.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the tables if they don't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scrape_sessions (
		session_id TEXT PRIMARY KEY,
		base_url TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS scraped_articles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		title TEXT NOT NULL,
		link TEXT NOT NULL,
		date TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scraped_articles_session
		ON scraped_articles (session_id, position);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveCrawl creates a new session for baseURL holding records. Either the
// session and every record are written, or nothing is.
func (s *Store) SaveCrawl(baseURL string, records []Record) (*Session, error) {
	now := time.Now()
	session := &Session{
		SessionID:    uuid.New(),
		BaseURL:      baseURL,
		CreatedAt:    now.Truncate(0),
		UpdatedAt:    now.Truncate(0),
		ArticleCount: len(records),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO scrape_sessions (session_id, base_url, created_at, updated_at) VALUES (?, ?, ?, ?)",
		session.SessionID.String(),
		session.BaseURL,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	if err := insertRecords(tx, session.SessionID, records, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit crawl: %w", err)
	}

	return session, nil
}

// ReplaceRecords deletes every record of an existing session and stores
// records in their place, atomically.
func (s *Store) ReplaceRecords(sessionID uuid.UUID, records []Record) error {
	now := time.Now()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"UPDATE scrape_sessions SET updated_at = ? WHERE session_id = ?",
		formatTime(now),
		sessionID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrSessionNotFound
	}

	if _, err := tx.Exec("DELETE FROM scraped_articles WHERE session_id = ?", sessionID.String()); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}

	if err := insertRecords(tx, sessionID, records, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}

	return nil
}

// insertRecords writes records in order within tx.
func insertRecords(tx *sql.Tx, sessionID uuid.UUID, records []Record, now time.Time) error {
	stmt, err := tx.Prepare(`
		INSERT INTO scraped_articles (session_id, position, title, link, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		var date any
		if r.HasDate() {
			date = r.Date
		}

		_, err := stmt.Exec(sessionID.String(), i, r.Title, r.Link, date, formatTime(now))
		if err != nil {
			return fmt.Errorf("failed to insert record %q: %w", r.Link, err)
		}
	}

	return nil
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(sessionID uuid.UUID) (*Session, error) {
	query := sessionQuery + " WHERE s.session_id = ? GROUP BY s.session_id"

	session, err := scanSession(s.db.QueryRow(query, sessionID.String()))
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return session, nil
}

// LatestSession returns the most recently created session.
func (s *Store) LatestSession() (*Session, error) {
	query := sessionQuery + " GROUP BY s.session_id ORDER BY s.rowid DESC LIMIT 1"

	session, err := scanSession(s.db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return session, nil
}

// ListSessions lists all sessions, newest first.
func (s *Store) ListSessions() ([]Session, error) {
	query := sessionQuery + " GROUP BY s.session_id ORDER BY s.rowid DESC"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *session)
	}

	return sessions, rows.Err()
}

// ListRecords returns the records of a session in crawl order.
func (s *Store) ListRecords(sessionID uuid.UUID) ([]Record, error) {
	if _, err := s.GetSession(sessionID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT title, link, date
		FROM scraped_articles
		WHERE session_id = ?
		ORDER BY position ASC, id ASC
	`, sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var date sql.NullString
		if err := rows.Scan(&r.Title, &r.Link, &date); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if date.Valid {
			r.Date = date.String
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// DeleteSession deletes a session and its records.
func (s *Store) DeleteSession(sessionID uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM scraped_articles WHERE session_id = ?", sessionID.String()); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}

	result, err := tx.Exec("DELETE FROM scrape_sessions WHERE session_id = ?", sessionID.String())
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrSessionNotFound
	}

	return tx.Commit()
}

const sessionQuery = `
	SELECT s.session_id, s.base_url, s.created_at, s.updated_at, COUNT(a.id)
	FROM scrape_sessions s
	LEFT JOIN scraped_articles a ON a.session_id = s.session_id
`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var sessionIDStr, baseURL, createdAtStr, updatedAtStr string
	var count int

	if err := row.Scan(&sessionIDStr, &baseURL, &createdAtStr, &updatedAtStr, &count); err != nil {
		return nil, err
	}

	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session ID: %w", err)
	}

	return &Session{
		SessionID:    sessionID,
		BaseURL:      baseURL,
		CreatedAt:    parseTime(createdAtStr),
		UpdatedAt:    parseTime(updatedAtStr),
		ArticleCount: count,
	}, nil
}

// Helper functions for time formatting
func formatTime(t time.Time) string {
	// Strip monotonic clock for consistent storage and comparisons
	return t.Truncate(0).Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t.Truncate(0)
}
