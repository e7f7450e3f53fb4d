package portalsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	mu      sync.Mutex
	access  string
	refresh string
	stored  []string
}

func (f *fakeTokens) AccessToken() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access, f.access != ""
}

func (f *fakeTokens) RefreshToken() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refresh, f.refresh != ""
}

func (f *fakeTokens) StoreAccessToken(access string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = access
	f.stored = append(f.stored, access)
	return nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	refreshed []string
	loggedOut int
}

func (f *fakeNotifier) TokenRefreshed(access string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed = append(f.refreshed, access)
}

func (f *fakeNotifier) LoggedOut() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut++
}

// newAuthServer fakes the API: /api/profile/ requires the given bearer
// token, /api/token/refresh/ exchanges validRefresh for newAccess.
func newAuthServer(
	t *testing.T,
	wantAccess, validRefresh, newAccess string,
	profileCalls, refreshCalls *atomic.Int64,
) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/profile/", func(w http.ResponseWriter, r *http.Request) {
		profileCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+wantAccess {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"detail": "Given token not valid for any token type",
				"code":   "token_not_valid",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(Profile{ID: 7, Username: "ana", Role: RoleClient})
	})
	mux.HandleFunc("/api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		var body struct {
			Refresh string `json:"refresh"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Refresh != validRefresh {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"detail": "Token is invalid or expired",
				"code":   "token_not_valid",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access": newAccess})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRetryOnceAfterRefresh(t *testing.T) {
	t.Parallel()

	var profileCalls, refreshCalls atomic.Int64
	srv := newAuthServer(t, "new-access", "valid-refresh", "new-access", &profileCalls, &refreshCalls)

	tokens := &fakeTokens{access: "expired-access", refresh: "valid-refresh"}
	notify := &fakeNotifier{}
	sdk := NewSDKClient(srv.URL, Options{Tokens: tokens, Notifier: notify})

	profile, err := sdk.GetProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(7), profile.ID)

	// One original request, one retry carrying the refreshed token.
	require.Equal(t, int64(2), profileCalls.Load())
	require.Equal(t, int64(1), refreshCalls.Load())

	// The new access token was persisted and announced.
	require.Equal(t, []string{"new-access"}, tokens.stored)
	require.Equal(t, []string{"new-access"}, notify.refreshed)
	require.Zero(t, notify.loggedOut)
}

func TestNoRefreshTokenPropagatesOriginalError(t *testing.T) {
	t.Parallel()

	var profileCalls, refreshCalls atomic.Int64
	srv := newAuthServer(t, "good", "valid-refresh", "good", &profileCalls, &refreshCalls)

	tokens := &fakeTokens{access: "expired-access"}
	notify := &fakeNotifier{}
	sdk := NewSDKClient(srv.URL, Options{Tokens: tokens, Notifier: notify})

	_, err := sdk.GetProfile(context.Background())
	require.True(t, IsUnauthorized(err), "expected the original 401, got %v", err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "token_not_valid", apiErr.Code)

	require.Equal(t, int64(1), profileCalls.Load())
	require.Zero(t, refreshCalls.Load())
	require.Equal(t, 1, notify.loggedOut)
}

func TestRefreshFailurePropagatesRefreshError(t *testing.T) {
	t.Parallel()

	var profileCalls, refreshCalls atomic.Int64
	srv := newAuthServer(t, "good", "valid-refresh", "good", &profileCalls, &refreshCalls)

	tokens := &fakeTokens{access: "expired-access", refresh: "revoked-refresh"}
	notify := &fakeNotifier{}
	sdk := NewSDKClient(srv.URL, Options{Tokens: tokens, Notifier: notify})

	_, err := sdk.GetProfile(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "token refresh failed")

	require.Equal(t, int64(1), profileCalls.Load())
	require.Equal(t, int64(1), refreshCalls.Load())
	require.Equal(t, 1, notify.loggedOut)
	require.Empty(t, tokens.stored)
}

func TestNeverRetriesMoreThanOnce(t *testing.T) {
	t.Parallel()

	// The profile endpoint wants a token the refresh endpoint never
	// hands out, so every retry fails again with 401.
	var profileCalls, refreshCalls atomic.Int64
	srv := newAuthServer(t, "unobtainable", "valid-refresh", "still-bad", &profileCalls, &refreshCalls)

	tokens := &fakeTokens{access: "expired-access", refresh: "valid-refresh"}
	notify := &fakeNotifier{}
	sdk := NewSDKClient(srv.URL, Options{Tokens: tokens, Notifier: notify})

	_, err := sdk.GetProfile(context.Background())
	require.True(t, IsUnauthorized(err))

	require.Equal(t, int64(2), profileCalls.Load(), "exactly one retry")
	require.Equal(t, int64(1), refreshCalls.Load())
}

func TestConcurrentRefreshesCoalesce(t *testing.T) {
	t.Parallel()

	var profileCalls atomic.Int64
	var refreshCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/api/profile/", func(w http.ResponseWriter, r *http.Request) {
		profileCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer new-access" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"expired","code":"token_not_valid"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(Profile{ID: 7, Username: "ana", Role: RoleClient})
	})
	mux.HandleFunc("/api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		time.Sleep(50 * time.Millisecond) // let the other 401s pile up on the lock
		_ = json.NewEncoder(w).Encode(map[string]string{"access": "new-access"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	tokens := &fakeTokens{access: "expired-access", refresh: "valid-refresh"}
	sdk := NewSDKClient(srv.URL, Options{Tokens: tokens, Notifier: &fakeNotifier{}})

	const workers = 5
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = sdk.GetProfile(context.Background())
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int64(1), refreshCalls.Load(), "concurrent 401s must share one refresh call")
}

func TestRequestsCarryRequestID(t *testing.T) {
	t.Parallel()

	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-Id")
		_ = json.NewEncoder(w).Encode(Profile{ID: 1})
	}))
	t.Cleanup(srv.Close)

	sdk := NewSDKClient(srv.URL, Options{})
	_, err := sdk.GetProfile(context.Background())
	require.NoError(t, err)
	require.Len(t, gotID, 26, "ULID request id")
}

func TestUnauthenticatedRequestProceeds(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Authentication credentials were not provided."}`))
	}))
	t.Cleanup(srv.Close)

	notify := &fakeNotifier{}
	sdk := NewSDKClient(srv.URL, Options{Tokens: &fakeTokens{}, Notifier: notify})

	_, err := sdk.GetProfile(context.Background())
	require.True(t, IsUnauthorized(err))
	require.Equal(t, 1, notify.loggedOut)
}
