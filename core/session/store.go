package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/user"
)

var (
	// ErrNoToken is returned when an authenticated operation is attempted without an access token.
	ErrNoToken = errors.New("no access token")
	// ErrSessionChanged is returned by RefreshUserData when the session was replaced during the fetch.
	ErrSessionChanged = errors.New("session changed while refreshing user data")
)

type (
	// ProfileFetcher reads the caller's own profile with the given access token.
	ProfileFetcher func(ctx context.Context, accessToken string) (user.User, error)

	// Session is a point-in-time copy of the store's state.
	Session struct {
		User            *user.User
		AccessToken     string
		RefreshToken    string
		IsAuthenticated bool
		Error           string
	}

	// persisted is exactly the subset of the Session kept in durable storage.
	persisted struct {
		User            *user.User `json:"user"`
		IsAuthenticated bool       `json:"isAuthenticated"`
		AccessToken     string     `json:"accessToken,omitempty"`
		RefreshToken    string     `json:"refreshToken,omitempty"`
	}

	// Store is the single process-wide authority for who is logged in and with what credentials.
	// Its state can only change through its methods.
	Store struct {
		mu           sync.Mutex
		state        Session
		storage      Storage
		logger       core.Logger
		fetchProfile ProfileFetcher

		subsMu  sync.Mutex
		subs    map[int]func(Session)
		nextSub int
	}
)

var _ oauth2.TokenSource = (*Store)(nil)

func New(storage Storage, logger core.Logger, fetchProfile ProfileFetcher) *Store {
	return &Store{
		storage:      storage,
		logger:       logger,
		fetchProfile: fetchProfile,
		subs:         make(map[int]func(Session)),
	}
}

// SetProfileFetcher sets the function RefreshUserData reads the profile with.
func (s *Store) SetProfileFetcher(fn ProfileFetcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchProfile = fn
}

func (s *Store) snapshotLocked() Session {
	sess := s.state
	if s.state.User != nil {
		usr := *s.state.User
		sess.User = &usr
	}
	return sess
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// User returns a copy of the current user, or nil when anonymous.
func (s *Store) User() *user.User {
	return s.Snapshot().User
}

// Subscribe calls `fn` with the new session after every change. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(sess Session) {
	s.subsMu.Lock()
	subs := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subsMu.Unlock()
	for _, fn := range subs {
		fn(sess)
	}
}

// SetAuth unconditionally establishes a new session and persists it.
func (s *Store) SetAuth(usr user.User, accessToken string, refreshToken ...string) {
	s.mu.Lock()
	var refresh string
	if len(refreshToken) > 0 {
		refresh = refreshToken[0]
	}
	s.state = Session{
		User:            &usr,
		AccessToken:     accessToken,
		RefreshToken:    refresh,
		IsAuthenticated: true,
	}
	s.persistLocked()
	sess := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(sess)
}

// SetUser replaces only the profile, leaving the tokens untouched.
func (s *Store) SetUser(usr user.User) {
	s.mu.Lock()
	s.state.User = &usr
	s.persistLocked()
	sess := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(sess)
}

// SetTokens replaces the tokens; an empty refreshToken keeps the current one.
// While a user is set, the call is a no-op unless allowOverride is true: rotating the tokens of the
// current user must be explicit. It reports whether the tokens were replaced.
func (s *Store) SetTokens(accessToken, refreshToken string, allowOverride bool) bool {
	s.mu.Lock()
	if s.state.User != nil && !allowOverride {
		s.mu.Unlock()
		s.logger.Warn("session: blocked token override while a user is set; pass allowOverride to rotate tokens")
		return false
	}
	s.state.AccessToken = accessToken
	if refreshToken != "" {
		s.state.RefreshToken = refreshToken
	}
	s.persistLocked()
	sess := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(sess)
	return true
}

// RefreshUserData reads the caller's own profile with the current access token and replaces only the user.
// On failure the session is left unchanged.
func (s *Store) RefreshUserData(ctx context.Context) error {
	s.mu.Lock()
	token := s.state.AccessToken
	fetch := s.fetchProfile
	s.mu.Unlock()

	if token == "" {
		return ErrNoToken
	}
	if fetch == nil {
		return errors.New("session: no profile fetcher configured")
	}

	usr, err := fetch(ctx, token)
	if err != nil {
		return errors.Wrap(err, "refreshing user data")
	}

	s.mu.Lock()
	if s.state.AccessToken != token {
		s.mu.Unlock()
		return ErrSessionChanged
	}
	s.state.User = &usr
	s.persistLocked()
	sess := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(sess)
	return nil
}

// ClearAuth unconditionally wipes the in-memory and persisted session. It is idempotent.
func (s *Store) ClearAuth() {
	s.mu.Lock()
	changed := s.state != (Session{})
	s.state = Session{}
	if err := s.storage.Delete(AccessTokenKey, RefreshTokenKey, PersistKey); err != nil {
		s.logger.Error("session: clearing storage", err)
	}
	s.mu.Unlock()

	if changed {
		s.notify(Session{})
	}
}

// SetError stores a transient diagnostic message; it is never persisted.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	s.state.Error = msg
	sess := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(sess)
}

// IsValidAuth reports whether authenticated requests may be issued.
func (s *Store) IsValidAuth() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsAuthenticated && s.state.AccessToken != "" && s.state.User != nil
}

// HasRole reports whether the session is valid and its user has `role`.
func (s *Store) HasRole(role string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	valid := s.state.IsAuthenticated && s.state.AccessToken != "" && s.state.User != nil
	return valid && s.state.User.HasRole(role)
}

// Token implements oauth2.TokenSource so the HTTP collaborator can attach the bearer token.
func (s *Store) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.AccessToken == "" {
		return nil, ErrNoToken
	}
	return &oauth2.Token{
		AccessToken:  s.state.AccessToken,
		RefreshToken: s.state.RefreshToken,
		TokenType:    "Bearer",
	}, nil
}

// Restore rehydrates the in-memory state from the persisted subset, as a page reload does.
func (s *Store) Restore() {
	s.mu.Lock()
	raw, ok, err := s.storage.Get(PersistKey)
	if err != nil {
		s.mu.Unlock()
		s.logger.Error("session: reading persisted session", err)
		return
	}
	if !ok || raw == "" {
		s.mu.Unlock()
		return
	}
	var p persisted
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.mu.Unlock()
		s.logger.Warn("session: discarding unreadable persisted session", err)
		return
	}
	s.state = Session{
		User:            p.User,
		AccessToken:     p.AccessToken,
		RefreshToken:    p.RefreshToken,
		IsAuthenticated: p.IsAuthenticated && p.User != nil,
	}
	sess := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(sess)
}

// InitializeAuth reconciles the in-memory state with durable storage once at startup:
//  - an authenticated flag without a user is torn down
//  - a stored token is adopted when memory has none; authenticated only if a user is already in memory
//  - an authenticated memory state without a stored token is torn down
// It never authenticates on its own.
func (s *Store) InitializeAuth() {
	s.mu.Lock()
	if s.state.IsAuthenticated && s.state.User == nil {
		s.mu.Unlock()
		s.ClearAuth()
		return
	}

	stored, ok, err := s.storage.Get(AccessTokenKey)
	if err != nil {
		s.mu.Unlock()
		s.logger.Error("session: reading stored access token", err)
		return
	}
	hasStored := ok && stored != ""

	switch {
	case hasStored && s.state.AccessToken == "":
		s.state.AccessToken = stored
		if refresh, ok, err := s.storage.Get(RefreshTokenKey); err == nil && ok {
			s.state.RefreshToken = refresh
		}
		s.state.IsAuthenticated = s.state.User != nil
		s.persistLocked()
		sess := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(sess)
	case !hasStored && s.state.IsAuthenticated:
		s.mu.Unlock()
		s.ClearAuth()
	default:
		s.mu.Unlock()
	}
}

// persistLocked writes the tokens and the persisted subset to durable storage. Storage failures are
// logged: the in-memory session stays authoritative.
func (s *Store) persistLocked() {
	if s.state.AccessToken != "" {
		if err := s.storage.Set(AccessTokenKey, s.state.AccessToken); err != nil {
			s.logger.Error("session: persisting access token", err)
		}
	} else if err := s.storage.Delete(AccessTokenKey); err != nil {
		s.logger.Error("session: removing access token", err)
	}
	if s.state.RefreshToken != "" {
		if err := s.storage.Set(RefreshTokenKey, s.state.RefreshToken); err != nil {
			s.logger.Error("session: persisting refresh token", err)
		}
	} else if err := s.storage.Delete(RefreshTokenKey); err != nil {
		s.logger.Error("session: removing refresh token", err)
	}

	data, err := json.Marshal(persisted{
		User:            s.state.User,
		IsAuthenticated: s.state.IsAuthenticated,
		AccessToken:     s.state.AccessToken,
		RefreshToken:    s.state.RefreshToken,
	})
	if err != nil {
		s.logger.Error("session: encoding session", err)
		return
	}
	if err := s.storage.Set(PersistKey, string(data)); err != nil {
		s.logger.Error("session: persisting session", err)
	}
}
