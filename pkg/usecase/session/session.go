package session

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/journal/pkg/adapter"
	"github.com/m-mizutani/journal/pkg/model"
	"github.com/m-mizutani/journal/pkg/repository"
	"github.com/m-mizutani/journal/pkg/utils/logging"
	"golang.org/x/sync/singleflight"
)

// Session is the process-wide state of one signed-in user: the identity and
// the secrets fetched for it. Identity is set first and secrets are fetched
// for it; on sign-out secrets are cleared before the identity.
type Session struct {
	identity adapter.Identity
	store    repository.SecretStore

	mu        sync.RWMutex
	user      *model.User
	secrets   *model.Secrets
	statuses  map[model.SecretName]model.SecretStatus
	observers map[int]func(*model.User)
	nextObsID int

	fetch singleflight.Group
}

// Option is a functional option for Session
type Option func(*Session)

// WithIdentity sets the identity provider used by SignIn and SignUp
func WithIdentity(identity adapter.Identity) Option {
	return func(s *Session) {
		s.identity = identity
	}
}

// New creates a signed-out Session reading secrets from store
func New(store repository.SecretStore, opts ...Option) *Session {
	s := &Session{
		store:     store,
		statuses:  make(map[model.SecretName]model.SecretStatus),
		observers: make(map[int]func(*model.User)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resetStatuses()
	return s
}

// SignIn authenticates with the identity provider and begins the session
func (s *Session) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	if s.identity == nil {
		return nil, goerr.New("identity provider is not configured")
	}
	user, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to sign in")
	}
	return user, s.Begin(ctx, user)
}

// SignUp creates an account and begins the session for it
func (s *Session) SignUp(ctx context.Context, email, password string) (*model.User, error) {
	if s.identity == nil {
		return nil, goerr.New("identity provider is not configured")
	}
	user, err := s.identity.SignUp(ctx, email, password)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to sign up")
	}
	return user, s.Begin(ctx, user)
}

// Begin sets the current user and fetches its secrets. A fetch failure is
// returned but the user stays signed in; the failure is visible per secret
// in Statuses.
func (s *Session) Begin(ctx context.Context, user *model.User) error {
	if user == nil {
		return goerr.New("user is nil")
	}

	s.mu.Lock()
	if s.user != nil && s.user.ID != user.ID {
		s.secrets = nil
		s.resetStatusesLocked()
	}
	s.user = user
	observers := s.observersLocked()
	s.mu.Unlock()

	logging.From(ctx).Debug("session started", "user_id", user.ID)
	notify(observers, user)

	return s.FetchSecrets(ctx)
}

// FetchSecrets loads the secrets of the current user unless they are already
// cached. Concurrent callers share one fetch.
func (s *Session) FetchSecrets(ctx context.Context) error {
	s.mu.RLock()
	user, cached := s.user, s.secrets != nil
	s.mu.RUnlock()

	if user == nil {
		return goerr.Wrap(model.ErrNotSignedIn, "cannot fetch secrets")
	}
	if cached {
		return nil
	}

	_, err, _ := s.fetch.Do(string(user.ID), func() (any, error) {
		return nil, s.load(ctx, user.ID)
	})
	return err
}

// Refetch drops cached secrets and fetches them again
func (s *Session) Refetch(ctx context.Context) error {
	s.mu.Lock()
	s.secrets = nil
	s.mu.Unlock()
	return s.FetchSecrets(ctx)
}

func (s *Session) load(ctx context.Context, userID model.UserID) error {
	s.mu.Lock()
	if s.isCurrentLocked(userID) {
		s.setAllStatusesLocked(model.SecretStateLoading, "")
	}
	s.mu.Unlock()

	secrets, err := s.store.GetSecrets(ctx, userID)
	if err != nil {
		logging.From(ctx).Warn("failed to fetch secrets", "user_id", userID, "error", err)
		s.mu.Lock()
		if s.isCurrentLocked(userID) {
			s.setAllStatusesLocked(model.SecretStateError, "Failed to fetch secrets")
		} else {
			s.resetStatusesLocked()
		}
		s.mu.Unlock()
		return goerr.Wrap(err, "failed to fetch secrets", goerr.V("user_id", userID))
	}
	if secrets == nil {
		secrets = &model.Secrets{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// the user may have signed out or switched while the fetch was in flight
	if !s.isCurrentLocked(userID) {
		s.resetStatusesLocked()
		return nil
	}
	s.secrets = secrets
	for _, name := range model.KnownSecrets {
		if secrets.Get(name) != "" {
			s.statuses[name] = model.SecretStatus{Name: name, State: model.SecretStateOK}
		} else {
			s.statuses[name] = model.SecretStatus{
				Name:  name,
				State: model.SecretStateError,
				Error: name.DisplayName() + " API key not found",
			}
		}
	}
	return nil
}

// SignOut clears secrets, then the identity, then notifies observers
func (s *Session) SignOut(ctx context.Context) {
	s.mu.Lock()
	s.secrets = nil
	s.resetStatusesLocked()
	prev := s.user
	s.user = nil
	observers := s.observersLocked()
	s.mu.Unlock()

	if prev != nil {
		logging.From(ctx).Debug("session ended", "user_id", prev.ID)
		notify(observers, nil)
	}
}

// CurrentUser returns the signed-in user, or nil
func (s *Session) CurrentUser() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Credential returns the cached secret, or "" when unavailable
func (s *Session) Credential(name model.SecretName) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.secrets.Get(name)
}

// Statuses returns the status of every known secret in display order
func (s *Session) Statuses() []model.SecretStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.SecretStatus, 0, len(model.KnownSecrets))
	for _, name := range model.KnownSecrets {
		out = append(out, s.statuses[name])
	}
	return out
}

// Subscribe registers fn to be called with the new user on sign-in and with
// nil on sign-out. The returned function unregisters it.
func (s *Session) Subscribe(fn func(*model.User)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

func (s *Session) isCurrentLocked(userID model.UserID) bool {
	return s.user != nil && s.user.ID == userID
}

func (s *Session) setAllStatusesLocked(state model.SecretState, msg string) {
	for _, name := range model.KnownSecrets {
		s.statuses[name] = model.SecretStatus{Name: name, State: state, Error: msg}
	}
}

func (s *Session) resetStatuses() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetStatusesLocked()
}

func (s *Session) resetStatusesLocked() {
	for _, name := range model.KnownSecrets {
		s.statuses[name] = model.SecretStatus{Name: name, State: model.SecretStateUnknown}
	}
}

func (s *Session) observersLocked() []func(*model.User) {
	out := make([]func(*model.User), 0, len(s.observers))
	for _, fn := range s.observers {
		out = append(out, fn)
	}
	return out
}

func notify(observers []func(*model.User), user *model.User) {
	for _, fn := range observers {
		fn(user)
	}
}
