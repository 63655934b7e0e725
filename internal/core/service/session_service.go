package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
	"github.com/tradebridge/rfq-marketplace/internal/core/ports"
)

// DefaultRefreshInterval is how often an active session silently refreshes
// its token.
const DefaultRefreshInterval = 50 * time.Minute

// SessionService owns the single authoritative session of the running
// client. Every consumer receives it by injection; nothing else may mutate
// the session. The durable store is a write-through mirror for restoring
// across restarts, never the source of truth while the process is alive.
type SessionService struct {
	auth     ports.AuthAPI
	users    ports.UserAPI
	store    ports.SessionStore
	sink     ports.TokenSink
	notifier ports.Notifier
	log      zerolog.Logger

	refreshEvery time.Duration
	// onExpire is the login-boundary redirect: invoked after the session is
	// cleared because a silent refresh failed.
	onExpire func()

	mu      sync.RWMutex
	current domain.Session
}

// NewSessionService wires the session context. refreshEvery <= 0 selects the
// default interval; onExpire may be nil.
func NewSessionService(auth ports.AuthAPI, users ports.UserAPI, store ports.SessionStore, sink ports.TokenSink, notifier ports.Notifier, log zerolog.Logger, refreshEvery time.Duration, onExpire func()) *SessionService {
	if refreshEvery <= 0 {
		refreshEvery = DefaultRefreshInterval
	}
	if onExpire == nil {
		onExpire = func() {}
	}
	return &SessionService{
		auth:         auth,
		users:        users,
		store:        store,
		sink:         sink,
		notifier:     notifier,
		log:          log.With().Str("component", "session").Logger(),
		refreshEvery: refreshEvery,
		onExpire:     onExpire,
	}
}

// Current returns a copy of the session.
func (s *SessionService) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Restore loads the mirrored session from durable storage. A partial mirror
// violates the all-or-nothing invariant and fails closed: the mirror is
// cleared and the caller is sent to the login boundary. An expired token is
// treated the same way.
func (s *SessionService) Restore(ctx context.Context) error {
	stored, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session mirror: %w", err)
	}
	if stored.Empty() {
		return nil
	}
	if stored.Partial() {
		s.log.Warn().Msg("partial session mirror found, clearing")
		_ = s.store.Clear(ctx)
		return domain.ErrPartialSession
	}
	if tokenExpired(stored.AuthToken, time.Now()) {
		s.log.Info().Msg("mirrored token expired, clearing")
		_ = s.store.Clear(ctx)
		return domain.ErrNotAuthenticated
	}

	return s.commit(ctx, stored)
}

// Login authenticates against the marketplace and commits the resulting
// identity as the active session.
func (s *SessionService) Login(ctx context.Context, email, password string) error {
	creds, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.notifier.Error(normalizeAPIError(err).Message)
		return err
	}

	sess := domain.Session{
		AuthToken:   creds.AccessToken,
		DisplayName: creds.DisplayName(),
		UserID:      creds.UserID,
		ActiveRole:  creds.Role,
	}
	if !sess.Authenticated() {
		return fmt.Errorf("login response incomplete: %w", domain.ErrPartialSession)
	}
	if err := s.commit(ctx, sess); err != nil {
		return err
	}
	s.log.Info().Str("user_id", sess.UserID).Str("role", string(sess.ActiveRole)).Msg("logged in")
	return nil
}

// Logout tells the marketplace goodbye (best effort) and clears the session.
func (s *SessionService) Logout(ctx context.Context) error {
	if err := s.auth.Logout(ctx); err != nil {
		s.log.Warn().Err(err).Msg("remote logout failed")
	}
	return s.ClearUser(ctx)
}

// SetUser commits a complete session. Partial identities are rejected.
func (s *SessionService) SetUser(ctx context.Context, sess domain.Session) error {
	if !sess.Authenticated() {
		return domain.ErrPartialSession
	}
	return s.commit(ctx, sess)
}

// ClearUser drops the session, the transport token and the durable mirror.
func (s *SessionService) ClearUser(ctx context.Context) error {
	s.mu.Lock()
	s.current = domain.Session{}
	s.mu.Unlock()

	s.sink.ClearToken()
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session mirror: %w", err)
	}
	return nil
}

// SwitchRole runs the two-step role switch: persist the new role remotely,
// obtain a token minted for it, and only when both succeed commit the role
// into the session and the mirror. Any failure leaves the session untouched.
func (s *SessionService) SwitchRole(ctx context.Context, role domain.Role) error {
	if !domain.ValidRole(role) {
		return fmt.Errorf("unknown role %q", role)
	}

	s.mu.RLock()
	sess := s.current
	s.mu.RUnlock()
	if !sess.Authenticated() {
		return domain.ErrNotAuthenticated
	}
	if sess.ActiveRole == role {
		return nil
	}

	if err := s.users.SwitchRole(ctx, sess.UserID, role); err != nil {
		s.notifier.Error(normalizeAPIError(err).Message)
		return fmt.Errorf("persist role: %w", err)
	}

	token, err := s.auth.Refresh(ctx)
	if err != nil {
		s.notifier.Error(normalizeAPIError(err).Message)
		return fmt.Errorf("refresh token for new role: %w", err)
	}

	sess.ActiveRole = role
	sess.AuthToken = token
	if err := s.commit(ctx, sess); err != nil {
		return err
	}
	s.log.Info().Str("role", string(role)).Msg("role switched")
	s.notifier.Success("switched to " + string(role))
	return nil
}

// StartAutoRefresh launches the silent token refresh loop. It ticks at the
// configured interval while ctx lives and is guaranteed to stop with it: no
// refresh attempt ever runs after cancellation. A failed refresh clears the
// session and signals the login boundary.
func (s *SessionService) StartAutoRefresh(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.refreshEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !s.Current().Authenticated() {
					continue
				}
				if err := s.refreshOnce(ctx); err != nil {
					if ctx.Err() != nil {
						return
					}
					s.log.Warn().Err(err).Msg("silent token refresh failed, clearing session")
					s.notifier.Error("session expired, please log in again")
					_ = s.ClearUser(ctx)
					s.onExpire()
				}
			}
		}
	}()
}

// refreshOnce requests a fresh token and commits it. Refreshing is
// idempotent: a repeated call just replaces the token again.
func (s *SessionService) refreshOnce(ctx context.Context) error {
	token, err := s.auth.Refresh(ctx)
	if err != nil {
		return err
	}
	if tokenExpired(token, time.Now()) {
		return fmt.Errorf("refresh returned an expired token: %w", domain.ErrNotAuthenticated)
	}

	s.mu.Lock()
	sess := s.current
	sess.AuthToken = token
	s.current = sess
	s.mu.Unlock()

	s.sink.SetToken(token)
	if err := s.store.Save(ctx, sess); err != nil {
		s.log.Warn().Err(err).Msg("session mirror write failed")
	}
	return nil
}

// commit makes sess the authoritative session: memory first, then the
// transport token, then the mirror (a mirror write failure is logged, not
// fatal, because the mirror is a cache).
func (s *SessionService) commit(ctx context.Context, sess domain.Session) error {
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	s.sink.SetToken(sess.AuthToken)
	if err := s.store.Save(ctx, sess); err != nil {
		s.log.Warn().Err(err).Msg("session mirror write failed")
	}
	return nil
}

// tokenExpired inspects the exp claim of a JWT without verifying the
// signature (verification is the backend's job; the client only wants to
// avoid presenting a token it already knows is dead). Opaque non-JWT tokens
// are assumed live.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
