package stores

import (
	"context"
	"time"

	"github.com/julianstephens/littlesteps/internal/api"
	"github.com/julianstephens/littlesteps/internal/chores"
	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/logger"
	"github.com/julianstephens/littlesteps/internal/milestones"
	"github.com/julianstephens/littlesteps/internal/models"
)

var errNoChange = errors.New("no change")

// Options configures an App.
type Options struct {
	Client api.Client
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Location decides the local calendar date for chores. Defaults to time.Local.
	Location *time.Location
}

// App is the client application root. It owns one store per slice and the
// syncer they share.
type App struct {
	Auth       *AuthStore
	Milestones *MilestoneStore
	Chores     *ChoreStore
	Syncer     *Syncer

	client api.Client
}

// NewApp wires the stores with compiled-in defaults. Pushes live as long as ctx.
func NewApp(ctx context.Context, opts Options) *App {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	syncer := NewSyncer(ctx, opts.Client)
	authStore := NewAuthStore(opts.Client, syncer)

	return &App{
		Auth: authStore,
		Milestones: &MilestoneStore{
			Baby:       NewContainer(DefaultBaby()),
			Milestones: NewContainer(milestones.Seeds()),
			auth:       authStore,
			syncer:     syncer,
			clock:      clock,
			client:     opts.Client,
		},
		Chores: &ChoreStore{
			Chores:   NewContainer(chores.Defaults()),
			auth:     authStore,
			syncer:   syncer,
			clock:    clock,
			location: loc,
			client:   opts.Client,
		},
		Syncer: syncer,
		client: opts.Client,
	}
}

// Hydrate fetches the document once and hands it to every store. When the
// server is unreachable the stores keep their defaults and the error is returned.
func (a *App) Hydrate(ctx context.Context) error {
	doc, err := a.client.FetchState(ctx)
	if err != nil {
		logger.Warn("Server unavailable, using local defaults", "error", err)
		return err
	}
	a.hydrateFrom(doc)
	return nil
}

// hydrateFrom applies doc to every store and pushes whatever the server is
// missing in a single round so the pushes cannot overwrite each other.
func (a *App) hydrateFrom(doc models.Document) {
	pending := map[string]any{}
	for _, slices := range []map[string]any{
		a.Auth.hydrateFrom(doc),
		a.Milestones.hydrateFrom(doc),
		a.Chores.hydrateFrom(doc),
	} {
		for key, value := range slices {
			pending[key] = value
		}
	}
	if len(pending) > 0 {
		a.Syncer.Push(pending)
	}
}

// Close waits for in-flight pushes and reports the ones that failed.
func (a *App) Close() error {
	a.Syncer.Wait()
	return a.Syncer.Err()
}
