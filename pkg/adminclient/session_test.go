package adminclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func sessionServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	logoutCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(testSession())
	})
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		session := testSession()
		session.Username = req.Username
		session.LanguagePreference = req.LanguagePreference
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(session)
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		logoutCalls++
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/users/7/preferences", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &logoutCalls
}

func newTestSessionContext(t *testing.T, baseURL string, store Store) *SessionContext {
	t.Helper()
	client := New(baseURL, store)
	sc, err := NewSessionContext(client, store, "en")
	require.NoError(t, err)
	return sc
}

func TestSessionContextLoginAdoptsPreferenceAsLocale(t *testing.T) {
	srv, _ := sessionServer(t)
	sc := newTestSessionContext(t, srv.URL, NewMemoryStore())

	require.False(t, sc.IsAuthenticated())
	require.Equal(t, "en", sc.ActiveLocale())

	session, err := sc.Login(context.Background(), "maria", "s3cret")
	require.NoError(t, err)
	require.Equal(t, "bg", session.LanguagePreference)
	require.True(t, sc.IsAuthenticated())
	require.Equal(t, "bg", sc.ActiveLocale())
}

func TestSessionContextRegisterStampsActiveLocale(t *testing.T) {
	srv, _ := sessionServer(t)
	store := NewMemoryStore()
	client := New(srv.URL, store)
	sc, err := NewSessionContext(client, store, "bg")
	require.NoError(t, err)

	session, err := sc.Register(context.Background(), RegisterRequest{
		Username: "maria",
		Email:    "maria@meridian.local",
		Password: "s3cret",
	})
	require.NoError(t, err)
	require.Equal(t, "bg", session.LanguagePreference)
}

func TestSessionContextLogoutIsIdempotent(t *testing.T) {
	srv, logoutCalls := sessionServer(t)
	sc := newTestSessionContext(t, srv.URL, NewMemoryStore())

	_, err := sc.Login(context.Background(), "maria", "s3cret")
	require.NoError(t, err)

	require.NoError(t, sc.Logout(context.Background()))
	require.False(t, sc.IsAuthenticated())
	require.Nil(t, sc.Current())

	// Second logout makes no request and still succeeds.
	require.NoError(t, sc.Logout(context.Background()))
	require.Equal(t, 1, *logoutCalls)
}

func TestSessionContextLogoutWithUnreachableServer(t *testing.T) {
	store := NewMemoryStore()
	session := testSession()
	require.NoError(t, store.Save(&session))

	// Nothing listens on this address; the revocation call cannot succeed,
	// yet signing out must still clear memory and the store.
	sc := newTestSessionContext(t, "http://127.0.0.1:1", store)
	require.True(t, sc.IsAuthenticated())

	require.NoError(t, sc.Logout(context.Background()))
	require.False(t, sc.IsAuthenticated())

	stored, err := store.Load()
	require.NoError(t, err)
	require.Nil(t, stored)
}

func TestSessionContextFailedReloginClearsSession(t *testing.T) {
	authorized := true
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if !authorized {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(testSession())
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store := NewMemoryStore()
	sc := newTestSessionContext(t, srv.URL, store)
	_, err := sc.Login(context.Background(), "maria", "s3cret")
	require.NoError(t, err)

	// A rejected re-login leaves no half-session behind: memory and store
	// both end up empty.
	authorized = false
	_, err = sc.Login(context.Background(), "maria", "expired")
	require.True(t, IsAuthentication(err))
	require.False(t, sc.IsAuthenticated())

	stored, err := store.Load()
	require.NoError(t, err)
	require.Nil(t, stored)
}

func TestSessionContextSurvivesRestart(t *testing.T) {
	srv, _ := sessionServer(t)
	path := filepath.Join(t.TempDir(), "session.json")

	first := newTestSessionContext(t, srv.URL, NewFileStore(path))
	_, err := first.Login(context.Background(), "maria", "s3cret")
	require.NoError(t, err)

	// A new context over the same file hydrates the session and its locale.
	second := newTestSessionContext(t, srv.URL, NewFileStore(path))
	require.True(t, second.IsAuthenticated())
	require.Equal(t, "maria", second.Current().Username)
	require.Equal(t, "bg", second.ActiveLocale())
}

func TestSessionContextUpdateLanguagePreference(t *testing.T) {
	srv, _ := sessionServer(t)
	store := NewMemoryStore()
	sc := newTestSessionContext(t, srv.URL, store)

	_, err := sc.Login(context.Background(), "maria", "s3cret")
	require.NoError(t, err)

	require.NoError(t, sc.UpdateLanguagePreference(context.Background(), "en"))
	require.Equal(t, "en", sc.ActiveLocale())
	require.Equal(t, "en", sc.Current().LanguagePreference)

	stored, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "en", stored.LanguagePreference)
}

func TestSessionContextUpdateLanguagePreferenceSignedOut(t *testing.T) {
	srv, _ := sessionServer(t)
	sc := newTestSessionContext(t, srv.URL, NewMemoryStore())

	err := sc.UpdateLanguagePreference(context.Background(), "bg")
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSessionContextExpiredTokenSignsOut(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store := NewMemoryStore()
	session := testSession()
	require.NoError(t, store.Save(&session))
	client := New(srv.URL, store)
	sc, err := NewSessionContext(client, store, "en")
	require.NoError(t, err)
	require.True(t, sc.IsAuthenticated())

	_, err = client.ListUsers(context.Background())
	require.True(t, IsAuthentication(err))
	require.False(t, sc.IsAuthenticated())

	stored, err := store.Load()
	require.NoError(t, err)
	require.Nil(t, stored)
}
