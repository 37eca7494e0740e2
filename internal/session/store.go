// Package session keeps the signed-in state for every active access token:
// the credential, the resolved identity, the profile and the data accessor
// chosen for that profile.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mesada/internal/access"
	"mesada/internal/domain/identity"
	"mesada/internal/domain/profile"
)

type Session struct {
	Credential identity.Credential
	Identity   identity.Identity
	// Profile is nil when it could not be loaded.
	Profile  *profile.Profile
	Accessor access.Accessor
}

// Role returns the profile role, or the empty role without a profile.
func (s *Session) Role() profile.Role {
	if s.Profile == nil {
		return ""
	}
	return s.Profile.Role
}

func (s *Session) IsGuardian() bool {
	return s.Profile != nil && s.Profile.Role.IsGuardian()
}

// Resolver validates an access token against the identity provider.
type Resolver interface {
	Resolve(ctx context.Context, accessToken string) (*identity.Identity, *identity.Credential, error)
}

type ProfileReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
}

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	resolver Resolver
	profiles ProfileReader
	readers  access.Readers
	log      zerolog.Logger
	now      func() time.Time
}

func NewStore(resolver Resolver, profiles ProfileReader, readers access.Readers, log zerolog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		resolver: resolver,
		profiles: profiles,
		readers:  readers,
		log:      log.With().Str("component", "session_store").Logger(),
		now:      time.Now,
	}
}

// Initialize returns the session for accessToken, restoring it from the
// identity provider when it is not cached.
func (s *Store) Initialize(ctx context.Context, accessToken string) (*Session, error) {
	if accessToken == "" {
		return nil, identity.ErrUnauthenticated
	}

	s.mu.RLock()
	sess, ok := s.sessions[accessToken]
	s.mu.RUnlock()
	if ok {
		if !sess.Credential.Expired(s.now()) {
			return sess, nil
		}
		s.remove(accessToken)
		return nil, identity.ErrUnauthenticated
	}

	ident, cred, err := s.resolver.Resolve(ctx, accessToken)
	if err != nil {
		s.log.Debug().Err(err).Msg("Could not restore session")
		return nil, identity.ErrUnauthenticated
	}

	sess = s.build(ctx, *ident, *cred)
	s.mu.Lock()
	s.sessions[accessToken] = sess
	s.mu.Unlock()
	return sess, nil
}

func (s *Store) build(ctx context.Context, ident identity.Identity, cred identity.Credential) *Session {
	p := s.loadProfile(ctx, ident.ID)
	return &Session{
		Credential: cred,
		Identity:   ident,
		Profile:    p,
		Accessor:   access.New(ident.ID, p, s.readers),
	}
}

func (s *Store) loadProfile(ctx context.Context, userID uuid.UUID) *profile.Profile {
	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to load profile")
		return nil
	}
	return p
}

// OnChange applies a session transition reported by the auth gateway.
func (s *Store) OnChange(ctx context.Context, change identity.Change) {
	switch change.Event {
	case identity.EventSignedIn, identity.EventTokenRefreshed:
		if change.Identity == nil || change.Credential == nil {
			return
		}
		sess := s.build(ctx, *change.Identity, *change.Credential)
		s.mu.Lock()
		s.dropSessionLocked(change.Credential.SessionID)
		s.sessions[change.Credential.AccessToken] = sess
		s.mu.Unlock()

	case identity.EventSignedOut:
		if change.Credential == nil {
			return
		}
		s.mu.Lock()
		s.dropSessionLocked(change.Credential.SessionID)
		delete(s.sessions, change.Credential.AccessToken)
		s.mu.Unlock()

	case identity.EventAccountDeleted:
		if change.Identity != nil {
			s.DropUser(change.Identity.ID)
		}

	case identity.EventUserUpdated:
		if change.Identity != nil {
			s.RefreshProfile(ctx, change.Identity.ID)
		}
	}

	s.log.Debug().Str("event", string(change.Event)).Msg("Session change applied")
}

// RefreshProfile reloads the profile of every session owned by userID and
// reselects their accessors.
func (s *Store) RefreshProfile(ctx context.Context, userID uuid.UUID) {
	p := s.loadProfile(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	for token, sess := range s.sessions {
		if sess.Identity.ID != userID {
			continue
		}
		s.sessions[token] = &Session{
			Credential: sess.Credential,
			Identity:   sess.Identity,
			Profile:    p,
			Accessor:   access.New(userID, p, s.readers),
		}
	}
}

// DropUser forgets every session owned by userID and returns how many were
// removed.
func (s *Store) DropUser(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, sess := range s.sessions {
		if sess.Identity.ID == userID {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// Sweep drops sessions whose access token expired before now and returns
// how many were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, sess := range s.sessions {
		if sess.Credential.Expired(now) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close forgets every session.
func (s *Store) Close() {
	s.mu.Lock()
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()
}

func (s *Store) remove(accessToken string) {
	s.mu.Lock()
	delete(s.sessions, accessToken)
	s.mu.Unlock()
}

func (s *Store) dropSessionLocked(sessionID uuid.UUID) {
	if sessionID == uuid.Nil {
		return
	}
	for token, sess := range s.sessions {
		if sess.Credential.SessionID == sessionID {
			delete(s.sessions, token)
		}
	}
}
