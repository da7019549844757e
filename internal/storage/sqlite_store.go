package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/littlesteps/internal/backup"
	"github.com/julianstephens/littlesteps/internal/document"
	"github.com/julianstephens/littlesteps/internal/logger"
	"github.com/julianstephens/littlesteps/internal/models"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS state_document (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	body TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

const sqliteUpsert = `INSERT INTO state_document (id, body, updated_at) VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`

// SQLiteStore keeps the document as a single row.
type SQLiteStore struct {
	path        string
	defaultPath string
	backups     *backup.Manager
	db          *sql.DB
	mu          sync.Mutex
}

func NewSQLiteStore(path string, opts Options) *SQLiteStore {
	s := &SQLiteStore{
		path:        path,
		defaultPath: opts.DefaultStatePath,
	}
	if opts.Backups {
		s.backups = backup.NewManager(path)
	}
	return s
}

func (s *SQLiteStore) Init() error {
	if s.db != nil {
		return nil
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return unavailable("create data directory", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return unavailable("open database", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return unavailable("create state table", err)
	}
	s.db = db
	return nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Init(); err != nil {
		return nil, err
	}

	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM state_document WHERE id = 1`).Scan(&body)
	switch {
	case err == nil:
		if doc, ok := decodePersisted([]byte(body)); ok {
			return document.Normalize(doc), nil
		}
		logger.Warn("Stored state is unreadable, reinitializing from default", "path", s.path)
	case errors.Is(err, sql.ErrNoRows):
		logger.Info("No stored state yet, initializing from default", "path", s.path)
	default:
		return nil, unavailable("read state", err)
	}

	doc, err := seedDocument(s.defaultPath)
	if err != nil {
		return nil, err
	}
	if err := s.write(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *SQLiteStore) Save(ctx context.Context, doc models.Document) error {
	if err := validateForSave(doc); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Init(); err != nil {
		return err
	}
	if s.backups != nil {
		if _, err := s.backups.CreateBackup(); err != nil {
			logger.Warn("Failed to back up state before overwrite", "error", err)
		}
	}
	return s.write(ctx, doc)
}

func (s *SQLiteStore) write(ctx context.Context, doc models.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, sqliteUpsert, string(data), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return unavailable("write state", err)
	}
	return nil
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}
