package adminclient

import (
	"context"
	"sync"
)

// SessionContext is the single writer for the stored session. It hydrates
// from the store on construction, keeps the active locale in step with the
// signed-in user's preference, and funnels every session mutation through
// one mutex so concurrent callers never race on the store.
type SessionContext struct {
	mu      sync.Mutex
	client  *Client
	store   Store
	locale  string
	current *Session
}

// NewSessionContext hydrates a SessionContext from the store. When a session
// survives a restart its language preference becomes the active locale.
func NewSessionContext(client *Client, store Store, defaultLocale string) (*SessionContext, error) {
	session, err := store.Load()
	if err != nil {
		return nil, err
	}
	sc := &SessionContext{
		client:  client,
		store:   store,
		locale:  defaultLocale,
		current: session,
	}
	if session != nil && session.LanguagePreference != "" {
		sc.locale = session.LanguagePreference
	}
	client.SetLocale(sc.locale)
	client.onUnauthorized = sc.handleUnauthorized
	return sc, nil
}

// Login signs in and adopts the account's language preference as the active
// locale.
func (sc *SessionContext) Login(ctx context.Context, username, password string) (*Session, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	session, err := sc.client.Login(ctx, LoginRequest{Username: username, Password: password})
	if err != nil {
		// A 401 already cleared the store inside the client; the unauthorized
		// hook cannot take mu while this method holds it, so drop the stale
		// in-memory session here.
		if IsAuthentication(err) {
			sc.current = nil
		}
		return nil, err
	}
	sc.adoptLocked(session)
	return session, nil
}

// Register signs up, stamping the active locale into the new account when
// the request does not name a preference, then adopts the issued session.
func (sc *SessionContext) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if req.LanguagePreference == "" {
		req.LanguagePreference = sc.locale
	}
	session, err := sc.client.Register(ctx, req)
	if err != nil {
		if IsAuthentication(err) {
			sc.current = nil
		}
		return nil, err
	}
	sc.adoptLocked(session)
	return session, nil
}

// Logout clears the session from memory and the store, then returns nil.
// The server-side revocation is best effort: an unreachable server cannot
// keep the caller signed in. Calling it while signed out is a no-op.
func (sc *SessionContext) Logout(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.current == nil {
		return nil
	}
	_ = sc.client.Logout(ctx)
	sc.current = nil
	_ = sc.store.Clear()
	return nil
}

// UpdateLanguagePreference changes the signed-in user's stored locale and,
// only after the server accepts it, the active locale and persisted session.
func (sc *SessionContext) UpdateLanguagePreference(ctx context.Context, language string) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.current == nil {
		return ErrNotAuthenticated
	}
	if err := sc.client.UpdateLanguagePreference(ctx, sc.current.ID, language); err != nil {
		if IsAuthentication(err) {
			sc.current = nil
		}
		return err
	}
	updated := *sc.current
	updated.LanguagePreference = language
	sc.adoptLocked(&updated)
	return nil
}

// Current returns a copy of the active session, or nil when signed out.
func (sc *SessionContext) Current() *Session {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.current == nil {
		return nil
	}
	copied := *sc.current
	return &copied
}

// IsAuthenticated reports whether a session is active.
func (sc *SessionContext) IsAuthenticated() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.current != nil
}

// ActiveLocale returns the locale attached to outgoing requests.
func (sc *SessionContext) ActiveLocale() string {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.locale
}

// adoptLocked installs a session as current and syncs locale state. The
// store was already written by the client; UpdateLanguagePreference is the
// one path that changes the session without a login response, so the save
// here keeps the persisted copy in step.
func (sc *SessionContext) adoptLocked(session *Session) {
	sc.current = session
	if session.LanguagePreference != "" {
		sc.locale = session.LanguagePreference
		sc.client.SetLocale(sc.locale)
	}
	_ = sc.store.Save(session)
}

// handleUnauthorized runs from Client.do after a 401 cleared the store.
func (sc *SessionContext) handleUnauthorized() {
	// Client.do holds no SessionContext lock, but this callback can fire
	// while a SessionContext method is mid-request and already holds mu.
	// TryLock keeps that path deadlock-free; the caller's own 401 handling
	// clears current in that case.
	if sc.mu.TryLock() {
		sc.current = nil
		sc.mu.Unlock()
	}
}
