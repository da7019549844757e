package stores

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/julianstephens/littlesteps/internal/auth"
	"github.com/julianstephens/littlesteps/internal/document"
	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/models"
)

var errOffline = errors.New("connection refused")

// fakeClient is an in-memory server that applies the same rules as the real one.
type fakeClient struct {
	mu      sync.Mutex
	doc     models.Document
	offline bool
	// raw serves the stored document without normalization
	raw   bool
	saves int
}

func newFakeClient(doc models.Document) *fakeClient {
	if doc == nil {
		doc = document.Default()
	}
	return &fakeClient{doc: doc}
}

func (f *fakeClient) FetchState(context.Context) (models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, errOffline
	}
	if f.raw {
		return roundTrip(f.doc), nil
	}
	return roundTrip(document.Normalize(f.doc)), nil
}

func (f *fakeClient) SaveState(_ context.Context, doc models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return errOffline
	}
	if err := document.Validate(doc); err != nil {
		return err
	}
	f.doc = roundTrip(doc)
	f.saves++
	return nil
}

func (f *fakeClient) Login(_ context.Context, username, password string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return false, errOffline
	}
	return auth.Authenticate(document.Normalize(f.doc).Users(), username, password), nil
}

func (f *fakeClient) setOffline(offline bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = offline
}

func (f *fakeClient) state() models.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	return roundTrip(f.doc)
}

func (f *fakeClient) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

// roundTrip gives each side its own copy, as the wire would.
func roundTrip(doc models.Document) models.Document {
	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	out, err := models.ParseDocument(data)
	if err != nil {
		panic(err)
	}
	return out
}
