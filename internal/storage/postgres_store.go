package storage

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"sync"

	_ "github.com/lib/pq"

	"github.com/julianstephens/littlesteps/internal/document"
	"github.com/julianstephens/littlesteps/internal/logger"
	"github.com/julianstephens/littlesteps/internal/models"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS littlesteps_state (
	id SMALLINT PRIMARY KEY CHECK (id = 1),
	body JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const postgresUpsert = `INSERT INTO littlesteps_state (id, body, updated_at) VALUES (1, $1, now())
ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`

// PostgresStore keeps the document as a single JSONB row.
type PostgresStore struct {
	connStr     string
	defaultPath string
	db          *sql.DB
	mu          sync.Mutex
}

func NewPostgresStore(connStr string, opts Options) *PostgresStore {
	return &PostgresStore{
		connStr:     connStr,
		defaultPath: opts.DefaultStatePath,
	}
}

func (s *PostgresStore) Init() error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return unavailable("open database", err)
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return unavailable("create state table", err)
	}
	s.db = db
	return nil
}

func (s *PostgresStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Init(); err != nil {
		return nil, err
	}

	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM littlesteps_state WHERE id = 1`).Scan(&body)
	switch {
	case err == nil:
		if doc, ok := decodePersisted(body); ok {
			return document.Normalize(doc), nil
		}
		logger.Warn("Stored state is not an object, reinitializing from default")
	case errors.Is(err, sql.ErrNoRows):
		logger.Info("No stored state yet, initializing from default")
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

func (s *PostgresStore) Save(ctx context.Context, doc models.Document) error {
	if err := validateForSave(doc); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Init(); err != nil {
		return err
	}
	return s.write(ctx, doc)
}

func (s *PostgresStore) write(ctx context.Context, doc models.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, postgresUpsert, string(data)); err != nil {
		return unavailable("write state", err)
	}
	return nil
}

// GetConfigPath returns the connection string with any password redacted.
func (s *PostgresStore) GetConfigPath() string {
	u, err := url.Parse(s.connStr)
	if err != nil {
		return "postgres"
	}
	return u.Redacted()
}
