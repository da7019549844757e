package stores

import (
	"context"
	"time"

	"github.com/julianstephens/littlesteps/internal/api"
	"github.com/julianstephens/littlesteps/internal/chores"
	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/models"
	"github.com/julianstephens/littlesteps/internal/utils"
)

// ChoreStore owns the chore list.
type ChoreStore struct {
	Chores *Container[[]models.ChoreItem]

	auth     *AuthStore
	syncer   *Syncer
	clock    func() time.Time
	location *time.Location
	client   api.Client
	// opaque holds server entries this client cannot decode
	opaque []any
}

// Today is the local calendar date used for completion checks.
func (s *ChoreStore) Today() string {
	return utils.DateString(s.clock().In(s.location))
}

// ChoresToday lists chores in order with their completion state for today.
func (s *ChoreStore) ChoresToday(today string) []models.ChoreStatus {
	return chores.Today(s.Chores.Get(), today)
}

func (s *ChoreStore) mutate(fn func([]models.ChoreItem) ([]models.ChoreItem, error)) error {
	if !s.auth.CanEdit() {
		return errors.ErrReadOnly
	}
	next, err := s.Chores.TryUpdate(fn)
	if err != nil {
		return err
	}
	s.syncer.Push(map[string]any{models.KeyChores: withOpaque(next, s.opaque)})
	return nil
}

// Toggle marks a chore done for today by the signed-in user, or undoes it.
func (s *ChoreStore) Toggle(id string) error {
	now := s.clock()
	return s.mutate(func(items []models.ChoreItem) ([]models.ChoreItem, error) {
		return chores.Toggle(items, id, utils.DateString(now.In(s.location)), now, s.auth.Current())
	})
}

// Add appends a chore. The captain defaults to the signed-in user.
func (s *ChoreStore) Add(d chores.Draft) (models.ChoreItem, error) {
	if d.CaptainUsername == "" {
		d.CaptainUsername = s.auth.Current()
	}
	var created models.ChoreItem
	err := s.mutate(func(items []models.ChoreItem) ([]models.ChoreItem, error) {
		next, item, err := chores.Add(items, d, chores.NewID())
		created = item
		return next, err
	})
	return created, err
}

func (s *ChoreStore) Update(id string, d chores.Draft) error {
	return s.mutate(func(items []models.ChoreItem) ([]models.ChoreItem, error) {
		return chores.Update(items, id, d)
	})
}

func (s *ChoreStore) Delete(id string) error {
	return s.mutate(func(items []models.ChoreItem) ([]models.ChoreItem, error) {
		return chores.Delete(items, id)
	})
}

// Hydrate adopts the server's chores, or pushes the defaults when it has none.
func (s *ChoreStore) Hydrate(ctx context.Context) error {
	doc, err := s.client.FetchState(ctx)
	if err != nil {
		return err
	}
	if pending := s.hydrateFrom(doc); pending != nil {
		s.syncer.Push(pending)
	}
	return nil
}

// hydrateFrom adopts any non-empty server list, even one this client can
// only partly decode.
func (s *ChoreStore) hydrateFrom(doc models.Document) map[string]any {
	raw, _ := doc[models.KeyChores].([]any)
	if len(raw) == 0 {
		return map[string]any{models.KeyChores: s.Chores.Get()}
	}
	server, opaque := splitEntries(raw, func(c models.ChoreItem) bool { return c.ID != "" })
	if server == nil {
		server = []models.ChoreItem{}
	}
	s.opaque = opaque
	s.Chores.Set(server)
	return nil
}
