package stores

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/julianstephens/littlesteps/internal/api"
	"github.com/julianstephens/littlesteps/internal/document"
	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/logger"
	"github.com/julianstephens/littlesteps/internal/models"
)

// Syncer pushes locally changed slices to the server. Each push re-fetches
// the whole document, overwrites only the pushed keys and saves the result.
// Pushes run one at a time in the order they were made, so the last local
// change is the last one written.
type Syncer struct {
	ctx    context.Context
	client api.Client
	wg     sync.WaitGroup

	mu       sync.Mutex
	queue    []map[string]any
	draining bool
	failures []error
}

// NewSyncer creates a syncer whose pushes live as long as ctx.
func NewSyncer(ctx context.Context, client api.Client) *Syncer {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Syncer{ctx: ctx, client: client}
}

// Push queues slices for reconciliation in the background. Failures are
// logged and the local state is kept as is.
func (s *Syncer) Push(slices map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wg.Add(1)
	s.queue = append(s.queue, slices)
	if !s.draining {
		s.draining = true
		go s.drain()
	}
}

func (s *Syncer) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		slices := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		if err := s.Reconcile(s.ctx, slices); err != nil {
			logger.Warn("Sync failed, keeping local changes", "keys", keyList(slices), "error", err)
			s.mu.Lock()
			s.failures = append(s.failures, fmt.Errorf("sync %s: %w", keyList(slices), err))
			s.mu.Unlock()
		}
		s.wg.Done()
	}
}

// Reconcile runs one fetch-splice-save round synchronously. Fields and
// entries the client does not model are carried over from the fetched
// document.
func (s *Syncer) Reconcile(ctx context.Context, slices map[string]any) error {
	current, err := s.client.FetchState(ctx)
	if err != nil {
		return err
	}

	spliced := make(map[string]any, len(slices))
	for key, value := range slices {
		v, err := models.ToValue(value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		spliced[key] = document.Overlay(current[key], v, models.KnownFields(key), models.EntryKey(key))
	}

	if err := s.client.SaveState(ctx, document.Splice(current, spliced)); err != nil {
		return err
	}
	logger.Debug("Synced state", "keys", keyList(slices))
	return nil
}

// Wait blocks until every started push has finished.
func (s *Syncer) Wait() {
	s.wg.Wait()
}

// Err returns the push failures recorded since the last call, joined, or nil.
func (s *Syncer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := errors.Join(s.failures...)
	s.failures = nil
	return err
}

func keyList(slices map[string]any) string {
	keys := make([]string, 0, len(slices))
	for k := range slices {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}
