package stores

import (
	"context"
	"fmt"

	"github.com/julianstephens/littlesteps/internal/api"
	"github.com/julianstephens/littlesteps/internal/auth"
	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/logger"
	"github.com/julianstephens/littlesteps/internal/models"
)

// AuthStore tracks the household users and who is signed in on this client.
type AuthStore struct {
	Users       *Container[[]models.UserRecord]
	CurrentUser *Container[string]

	client api.Client
	syncer *Syncer
	// opaque holds server user entries this client cannot decode
	opaque []any
}

// NewAuthStore starts with only the default admin so sign-in works offline.
func NewAuthStore(client api.Client, syncer *Syncer) *AuthStore {
	return &AuthStore{
		Users:       NewContainer([]models.UserRecord{auth.DefaultAdmin()}),
		CurrentUser: NewContainer(""),
		client:      client,
		syncer:      syncer,
	}
}

// Login asks the server to check the credentials. Only when the server cannot
// be reached is the check made against the locally known users.
func (s *AuthStore) Login(ctx context.Context, username, password string) (bool, error) {
	ok, err := s.client.Login(ctx, username, password)
	if err != nil {
		logger.Warn("Server unreachable, checking credentials locally", "error", err)
		ok = auth.Authenticate(s.Users.Get(), username, password)
	}
	if !ok {
		return false, nil
	}

	if doc, err := s.client.FetchState(ctx); err == nil {
		if !s.adopt(doc) {
			// First default-credential login on an empty household creates the admin
			admin := []models.UserRecord{auth.DefaultAdmin()}
			s.Users.Set(admin)
			s.syncer.Push(map[string]any{models.KeyUsers: admin})
		}
	}
	s.CurrentUser.Set(username)
	return true, nil
}

func (s *AuthStore) Logout() {
	s.CurrentUser.Set("")
}

// Current returns the signed-in username, or "" when nobody is.
func (s *AuthStore) Current() string {
	return s.CurrentUser.Get()
}

// CanEdit reports whether mutations are allowed.
func (s *AuthStore) CanEdit() bool {
	return s.Current() != ""
}

// IsAdmin reports whether the signed-in user may manage accounts. Every
// household member can.
func (s *AuthStore) IsAdmin() bool {
	return s.CanEdit()
}

func (s *AuthStore) AddUser(username, password string) error {
	if !s.CanEdit() {
		return errors.ErrReadOnly
	}
	record, err := auth.NewUserRecord(username, password)
	if err != nil {
		return err
	}
	return s.mutate(func(users []models.UserRecord) ([]models.UserRecord, error) {
		if _, exists := auth.FindUser(users, record.Username); exists {
			return nil, fmt.Errorf("user %q already exists", record.Username)
		}
		return append(append([]models.UserRecord(nil), users...), record), nil
	})
}

// RemoveUser deletes an account. The default admin can never be removed.
func (s *AuthStore) RemoveUser(username string) error {
	if !s.CanEdit() {
		return errors.ErrReadOnly
	}
	if auth.IsDefaultAdmin(username) {
		return errors.ErrProtectedUser
	}
	return s.mutate(func(users []models.UserRecord) ([]models.UserRecord, error) {
		out := make([]models.UserRecord, 0, len(users))
		for _, u := range users {
			if u.Username != username {
				out = append(out, u)
			}
		}
		if len(out) == len(users) {
			return nil, fmt.Errorf("user %q: %w", username, errors.ErrNotFound)
		}
		return out, nil
	})
}

// ChangePassword sets a new password. Only the default admin may change the
// default admin's password.
func (s *AuthStore) ChangePassword(username, password string) error {
	actor := s.Current()
	if actor == "" {
		return errors.ErrReadOnly
	}
	if auth.IsDefaultAdmin(username) && !auth.IsDefaultAdmin(actor) {
		return errors.ErrProtectedUser
	}
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.mutate(func(users []models.UserRecord) ([]models.UserRecord, error) {
		out := append([]models.UserRecord(nil), users...)
		for i := range out {
			if out[i].Username == username {
				out[i].PasswordHash = hash
				out[i].Password = ""
				return out, nil
			}
		}
		return nil, fmt.Errorf("user %q: %w", username, errors.ErrNotFound)
	})
}

// MigrateLegacy hashes every plaintext credential and returns how many changed.
func (s *AuthStore) MigrateLegacy() (int, error) {
	if !s.CanEdit() {
		return 0, errors.ErrReadOnly
	}
	migrated := 0
	err := s.mutate(func(users []models.UserRecord) ([]models.UserRecord, error) {
		out, n, err := auth.MigratePlaintext(users)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, errNoChange
		}
		migrated = n
		return out, nil
	})
	if errors.Is(err, errNoChange) {
		return 0, nil
	}
	return migrated, err
}

// Hydrate adopts the server's users when it has any.
func (s *AuthStore) Hydrate(ctx context.Context) error {
	doc, err := s.client.FetchState(ctx)
	if err != nil {
		return err
	}
	if pending := s.hydrateFrom(doc); pending != nil {
		s.syncer.Push(pending)
	}
	return nil
}

// hydrateFrom applies a fetched document and returns the slices the server
// still needs, or nil.
func (s *AuthStore) hydrateFrom(doc models.Document) map[string]any {
	if s.adopt(doc) {
		return nil
	}
	return map[string]any{models.KeyUsers: s.Users.Get()}
}

// adopt takes the server's users when its list is non-empty.
func (s *AuthStore) adopt(doc models.Document) bool {
	raw, _ := doc[models.KeyUsers].([]any)
	if len(raw) == 0 {
		return false
	}
	users, opaque := splitEntries(raw, func(u models.UserRecord) bool { return u.Username != "" })
	if users == nil {
		users = []models.UserRecord{}
	}
	s.opaque = opaque
	s.Users.Set(users)
	return true
}

func (s *AuthStore) mutate(fn func([]models.UserRecord) ([]models.UserRecord, error)) error {
	next, err := s.Users.TryUpdate(fn)
	if err != nil {
		return err
	}
	s.syncer.Push(map[string]any{models.KeyUsers: withOpaque(next, s.opaque)})
	return nil
}
