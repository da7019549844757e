package storage

import (
	"context"

	"github.com/julianstephens/littlesteps/internal/models"
)

// Provider durably holds exactly one state document.
type Provider interface {
	// Lifecycle
	Init() error
	Close() error

	// Load returns the normalized document, reinitializing it from the default
	// when nothing usable is persisted.
	Load(ctx context.Context) (models.Document, error)
	// Save replaces the persisted document after the shape check. A rejected
	// document is never written.
	Save(ctx context.Context, doc models.Document) error

	// Utils
	GetConfigPath() string
}

// Options configures every backend.
type Options struct {
	// DefaultStatePath overrides the bundled default document.
	DefaultStatePath string
	// Backups snapshots the previous document before every overwrite
	// (file-backed stores only).
	Backups bool
}
