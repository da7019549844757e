package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/julianstephens/littlesteps/internal/backup"
	"github.com/julianstephens/littlesteps/internal/document"
	"github.com/julianstephens/littlesteps/internal/logger"
	"github.com/julianstephens/littlesteps/internal/models"
)

// JSONStore keeps the document in one pretty-printed file.
type JSONStore struct {
	path        string
	defaultPath string
	backups     *backup.Manager
	mu          sync.Mutex
}

func NewJSONStore(path string, opts Options) *JSONStore {
	s := &JSONStore{
		path:        path,
		defaultPath: opts.DefaultStatePath,
	}
	if opts.Backups {
		s.backups = backup.NewManager(path)
	}
	return s
}

func (s *JSONStore) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return unavailable("create data directory", err)
	}
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) Load(ctx context.Context) (models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Init(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		if doc, ok := decodePersisted(data); ok {
			return document.Normalize(doc), nil
		}
		logger.Warn("State file is unreadable, reinitializing from default", "path", s.path)
	case os.IsNotExist(err):
		logger.Info("No state file yet, initializing from default", "path", s.path)
	default:
		return nil, unavailable("read state", err)
	}

	doc, err := seedDocument(s.defaultPath)
	if err != nil {
		return nil, err
	}
	if err := s.write(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *JSONStore) Save(ctx context.Context, doc models.Document) error {
	if err := validateForSave(doc); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Init(); err != nil {
		return err
	}
	if s.backups != nil {
		if _, err := os.Stat(s.path); err == nil {
			if _, err := s.backups.CreateBackup(); err != nil {
				logger.Warn("Failed to back up state before overwrite", "error", err)
			}
		}
	}
	return s.write(doc)
}

// write replaces the file through a temp file and rename so readers never see a partial document.
func (s *JSONStore) write(doc models.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.json")
	if err != nil {
		return unavailable("write state", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return unavailable("write state", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return unavailable("write state", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return unavailable("write state", err)
	}
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
