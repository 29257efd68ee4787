package db

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store defines the interface for the event archive.
type Store interface {
	RecordFetch(ctx context.Context, apiURL string, eventCount int) (int64, error)
	ListRecentFetches(ctx context.Context, limit int64) ([]Fetch, error)
	DeleteFetch(ctx context.Context, fetchID int64) error
	InsertEvent(ctx context.Context, rec *EventRecord) (int64, error)
	ListEventsByFetch(ctx context.Context, fetchID, limit, offset int64) ([]Event, error)
	Close() error
}

// Fetch is one recorded refresh of the event log.
type Fetch struct {
	ID         int64
	APIURL     string
	FetchedAt  time.Time
	EventCount int64
}

// EventRecord represents an event to be inserted.
type EventRecord struct {
	FetchID    int64
	MessageID  string
	State      string
	URL        string
	QueueName  string
	Method     string
	MaxRetries int
	Header     map[string][]string
	Body       string
	EventTime  time.Time
}

// Event is a stored event row.
type Event struct {
	ID         int64
	FetchID    int64
	MessageID  string
	State      string
	URL        string
	QueueName  sql.NullString
	Method     sql.NullString
	MaxRetries sql.NullInt64
	Headers    sql.NullString
	Body       sql.NullString
	EventTime  sql.NullTime
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the default or custom path.
// The bearer token is never written here; only the API URL is recorded.
func NewStore(customPath string) (*SQLiteStore, error) {
	dbPath := customPath
	if dbPath == "" {
		dataDir, err := DefaultDataDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get data directory: %w", err)
		}
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		dbPath = filepath.Join(dataDir, "queuescope.db")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys and WAL mode for better performance
	if _, err := db.Exec("PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;"); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to set pragmas: %w", err), db.Close())
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to initialize schema: %w", err), db.Close())
	}

	return &SQLiteStore{db: db}, nil
}

// DefaultDataDir returns the application data directory following XDG spec.
func DefaultDataDir() (string, error) {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "queuescope"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "queuescope"), nil
}

func (s *SQLiteStore) RecordFetch(ctx context.Context, apiURL string, eventCount int) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO fetches (api_url, event_count) VALUES (?, ?)`,
		apiURL, eventCount,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) ListRecentFetches(ctx context.Context, limit int64) (_ []Fetch, err error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, api_url, fetched_at, event_count
		 FROM fetches ORDER BY fetched_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, rows.Close()) }()

	var fetches []Fetch
	for rows.Next() {
		var f Fetch
		if err := rows.Scan(&f.ID, &f.APIURL, &f.FetchedAt, &f.EventCount); err != nil {
			return nil, err
		}
		fetches = append(fetches, f)
	}
	return fetches, rows.Err()
}

func (s *SQLiteStore) DeleteFetch(ctx context.Context, fetchID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM fetches WHERE id = ?`, fetchID)
	return err
}

func (s *SQLiteStore) InsertEvent(ctx context.Context, rec *EventRecord) (int64, error) {
	var headersJSON sql.NullString
	if len(rec.Header) > 0 {
		data, err := json.Marshal(rec.Header)
		if err == nil {
			headersJSON = sql.NullString{String: string(data), Valid: true}
		}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO events (fetch_id, message_id, state, url, queue_name, method,
		                     max_retries, headers, body, event_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.FetchID, rec.MessageID, rec.State, rec.URL,
		toNullString(rec.QueueName), toNullString(rec.Method),
		toNullInt(rec.MaxRetries), headersJSON, toNullString(rec.Body),
		toNullTime(rec.EventTime),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) ListEventsByFetch(ctx context.Context, fetchID, limit, offset int64) (_ []Event, err error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fetch_id, message_id, state, url, queue_name, method,
		        max_retries, headers, body, event_time
		 FROM events WHERE fetch_id = ?
		 ORDER BY event_time DESC, id DESC LIMIT ? OFFSET ?`,
		fetchID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, rows.Close()) }()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.ID, &e.FetchID, &e.MessageID, &e.State, &e.URL, &e.QueueName,
			&e.Method, &e.MaxRetries, &e.Headers, &e.Body, &e.EventTime,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func toNullInt(i int) sql.NullInt64 {
	if i == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(i), Valid: true}
}

func toNullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
