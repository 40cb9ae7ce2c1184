// Package history provides the SQLite-backed exchange store.
// Adapter implementing ports.HistoryStore.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/helpwise/faqdesk-go/internal/domain/entities"
)

// SQLiteStore persists exchanges in a local SQLite database.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/faqdesk.db"
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exchanges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		model TEXT NOT NULL,
		context_method TEXT NOT NULL,
		processing_time_ms INTEGER NOT NULL,
		question_length INTEGER NOT NULL,
		answer_length INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_exchanges_created_at ON exchanges(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save persists one exchange and returns its assigned ID.
func (s *SQLiteStore) Save(ctx context.Context, ex entities.Exchange) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO exchanges (question, answer, model, context_method, processing_time_ms, question_length, answer_length)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ex.Question, ex.Answer, ex.Model, ex.ContextMethod, ex.ProcessingMS, len(ex.Question), len(ex.Answer),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting exchange: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading insert id: %w", err)
	}
	return id, nil
}

// Latest returns up to limit exchanges, newest first.
func (s *SQLiteStore) Latest(ctx context.Context, limit int) ([]entities.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question, answer, model, context_method, processing_time_ms, created_at
		FROM exchanges ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exchanges: %w", err)
	}
	defer rows.Close()
	return scanExchanges(rows)
}

// Search returns up to limit exchanges whose question contains term, newest first.
func (s *SQLiteStore) Search(ctx context.Context, term string, limit int) ([]entities.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question, answer, model, context_method, processing_time_ms, created_at
		FROM exchanges WHERE question LIKE ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		"%"+term+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("searching exchanges: %w", err)
	}
	defer rows.Close()
	return scanExchanges(rows)
}

// Count returns the total number of stored exchanges.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM exchanges").Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanExchanges(rows *sql.Rows) ([]entities.Exchange, error) {
	var out []entities.Exchange
	for rows.Next() {
		var ex entities.Exchange
		if err := rows.Scan(&ex.ID, &ex.Question, &ex.Answer, &ex.Model, &ex.ContextMethod, &ex.ProcessingMS, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning exchange: %w", err)
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}
