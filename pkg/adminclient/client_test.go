package adminclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testSession() Session {
	return Session{
		Token:              "issued-token",
		Type:               "Bearer",
		ID:                 7,
		Username:           "maria",
		Email:              "maria@meridian.local",
		Roles:              []string{"ROLE_USER"},
		LanguagePreference: "bg",
	}
}

func authServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginPersistsSession(t *testing.T) {
	srv := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "maria", req.Username)
		json.NewEncoder(w).Encode(testSession())
	})
	store := NewMemoryStore()
	client := New(srv.URL, store)

	session, err := client.Login(context.Background(), LoginRequest{Username: "maria", Password: "s3cret"})
	require.NoError(t, err)
	require.Equal(t, "issued-token", session.Token)

	stored, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, "issued-token", stored.Token)
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"title": "Unauthorized", "status": 401, "detail": "invalid credentials"})
	})
	store := NewMemoryStore()
	client := New(srv.URL, store)

	_, err := client.Login(context.Background(), LoginRequest{Username: "maria", Password: "wrong"})
	require.True(t, IsAuthentication(err))

	stored, err := store.Load()
	require.NoError(t, err)
	require.Nil(t, stored)
}

func TestRequestsCarryTokenAndLocale(t *testing.T) {
	var gotAuth, gotLang string
	srv := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotLang = r.Header.Get("Accept-Language")
		json.NewEncoder(w).Encode([]User{})
	})
	store := NewMemoryStore()
	session := testSession()
	require.NoError(t, store.Save(&session))
	client := New(srv.URL, store, WithLocale("bg"))

	_, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer issued-token", gotAuth)
	require.Equal(t, "bg", gotLang)
}

func TestAuthenticatedCallWithoutSession(t *testing.T) {
	srv := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should reach the server")
	})
	client := New(srv.URL, NewMemoryStore())

	_, err := client.ListUsers(context.Background())
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestUnauthorizedClearsStoreAndFiresHook(t *testing.T) {
	srv := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	store := NewMemoryStore()
	session := testSession()
	require.NoError(t, store.Save(&session))
	var hookFired bool
	client := New(srv.URL, store, WithUnauthorizedHook(func() { hookFired = true }))

	_, err := client.ListUsers(context.Background())
	require.True(t, IsAuthentication(err))
	require.True(t, hookFired)

	stored, err := store.Load()
	require.NoError(t, err)
	require.Nil(t, stored)
}

func TestErrorMapping(t *testing.T) {
	status := http.StatusOK
	srv := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{"title": "Error", "status": status, "detail": "explanation"})
	})
	store := NewMemoryStore()
	session := testSession()
	require.NoError(t, store.Save(&session))
	client := New(srv.URL, store)

	status = http.StatusBadRequest
	err := client.DeleteRole(context.Background(), 1)
	require.True(t, IsValidation(err))

	status = http.StatusConflict
	err = client.DeleteRole(context.Background(), 1)
	require.True(t, IsConflict(err))

	status = http.StatusNotFound
	err = client.DeleteRole(context.Background(), 1)
	require.ErrorIs(t, err, ErrNotFound)

	status = http.StatusInternalServerError
	err = client.DeleteRole(context.Background(), 1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

func TestSetUserRoleRejectsSelfChangeLocally(t *testing.T) {
	srv := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should reach the server")
	})
	store := NewMemoryStore()
	session := testSession()
	require.NoError(t, store.Save(&session))
	client := New(srv.URL, store)

	_, err := client.SetUserRole(context.Background(), session.ID, 3)
	require.ErrorIs(t, err, ErrSelfRoleChange)
}

func TestLogoutClearsSessionEvenWhenTokenAlreadyDead(t *testing.T) {
	srv := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	store := NewMemoryStore()
	session := testSession()
	require.NoError(t, store.Save(&session))
	client := New(srv.URL, store)

	require.NoError(t, client.Logout(context.Background()))

	stored, err := store.Load()
	require.NoError(t, err)
	require.Nil(t, stored)
}

func TestLogoutClearsSessionWhenServerUnreachable(t *testing.T) {
	store := NewMemoryStore()
	session := testSession()
	require.NoError(t, store.Save(&session))
	client := New("http://127.0.0.1:1", store)

	err := client.Logout(context.Background())
	var transport *TransportError
	require.ErrorAs(t, err, &transport)

	stored, err := store.Load()
	require.NoError(t, err)
	require.Nil(t, stored)
}

func TestLogoutWithoutSessionIsNoop(t *testing.T) {
	srv := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should reach the server")
	})
	client := New(srv.URL, NewMemoryStore())

	require.NoError(t, client.Logout(context.Background()))
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")

	first := NewFileStore(path)
	session := testSession()
	require.NoError(t, first.Save(&session))

	// A fresh store over the same path sees the session, as after a restart.
	second := NewFileStore(path)
	loaded, err := second.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, session, *loaded)

	require.NoError(t, second.Clear())
	loaded, err = second.Load()
	require.NoError(t, err)
	require.Nil(t, loaded)
	// Clearing twice stays quiet.
	require.NoError(t, second.Clear())
}

func TestFileStoreIgnoresCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)
	session := testSession()
	require.NoError(t, store.Save(&session))

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	loaded, err := store.Load()
	require.NoError(t, err)
	require.Nil(t, loaded)
}
