package session

import (
	"context"
	"io"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/estudiopampa/portal/internal/portal/store"
	"github.com/estudiopampa/portal/pkg/portalsdk"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (s *memStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return value, nil
}

func (s *memStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *memStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]string)
	return nil
}

func (s *memStore) Close() error { return nil }

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loginResponse() *portalsdk.TokenResponse {
	return &portalsdk.TokenResponse{
		Access:   "access-token",
		Refresh:  "refresh-token",
		ID:       7,
		Username: "ana",
		Role:     portalsdk.RoleClient,
	}
}

func TestLoginPersistsAndRestores(t *testing.T) {
	t.Parallel()

	st := newMemStore()

	m, err := NewManager(st, NewBus(), testLogger())
	require.NoError(t, err)
	_, ok := m.CurrentUser()
	require.False(t, ok)

	require.NoError(t, m.HandleLogin(loginResponse()))

	user, ok := m.CurrentUser()
	require.True(t, ok)
	require.Equal(t, "ana", user.Username)
	require.Equal(t, portalsdk.RoleClient, user.Role)

	// A new manager on the same store picks the session back up.
	restored, err := NewManager(st, NewBus(), testLogger())
	require.NoError(t, err)

	user, ok = restored.CurrentUser()
	require.True(t, ok)
	require.Equal(t, int64(7), user.ID)

	access, ok := restored.AccessToken()
	require.True(t, ok)
	require.Equal(t, "access-token", access)

	refresh, ok := restored.RefreshToken()
	require.True(t, ok)
	require.Equal(t, "refresh-token", refresh)
}

func TestCorruptPersistedSessionIsDiscarded(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	require.NoError(t, st.Set(store.KeyAccessToken, "access-token"))
	require.NoError(t, st.Set(store.KeyRefreshToken, "refresh-token"))
	require.NoError(t, st.Set(store.KeyUser, "{not json"))

	m, err := NewManager(st, NewBus(), testLogger())
	require.NoError(t, err)

	_, ok := m.CurrentUser()
	require.False(t, ok)
	_, ok = m.AccessToken()
	require.False(t, ok)
	require.Zero(t, st.len(), "corrupt state must be cleared, not kept")
}

func TestLogoutFiresOncePerTransition(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	bus := NewBus()
	events, cancel := bus.Subscribe()
	defer cancel()

	m, err := NewManager(st, bus, testLogger())
	require.NoError(t, err)
	require.NoError(t, m.HandleLogin(loginResponse()))

	ev := <-events
	require.Equal(t, EventLogin, ev.Kind)
	require.Equal(t, "ana", ev.Username)

	m.Logout()
	m.Logout() // second call is a no-op

	ev = <-events
	require.Equal(t, EventLogout, ev.Kind)
	select {
	case ev = <-events:
		t.Fatalf("unexpected second event %q", ev.Kind)
	default:
	}

	require.Zero(t, st.len())
	_, ok := m.CurrentUser()
	require.False(t, ok)
}

func TestForcedLogoutClearsSession(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	bus := NewBus()
	events, cancel := bus.Subscribe()
	defer cancel()

	m, err := NewManager(st, bus, testLogger())
	require.NoError(t, err)
	require.NoError(t, m.HandleLogin(loginResponse()))
	<-events // login

	// The transport reporting a dead session ends the local one too.
	m.LoggedOut()

	ev := <-events
	require.Equal(t, EventLogout, ev.Kind)
	require.Zero(t, st.len())
}

func TestStoreAccessTokenRotatesOnlyAccess(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	m, err := NewManager(st, NewBus(), testLogger())
	require.NoError(t, err)
	require.NoError(t, m.HandleLogin(loginResponse()))

	require.NoError(t, m.StoreAccessToken("rotated-access"))

	access, _ := m.AccessToken()
	require.Equal(t, "rotated-access", access)

	refresh, _ := m.RefreshToken()
	require.Equal(t, "refresh-token", refresh)

	persisted, err := st.Get(store.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "rotated-access", persisted)
}

func TestRefreshRotatesAccessOrEndsSession(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	bus := NewBus()
	events, cancel := bus.Subscribe()
	defer cancel()

	m, err := NewManager(st, bus, testLogger())
	require.NoError(t, err)
	require.NoError(t, m.HandleLogin(loginResponse()))
	<-events // login

	access, ok := m.Refresh(context.Background(), func(_ context.Context, refresh string) (string, error) {
		require.Equal(t, "refresh-token", refresh)
		return "fresh-access", nil
	})
	require.True(t, ok)
	require.Equal(t, "fresh-access", access)

	ev := <-events
	require.Equal(t, EventTokenRefreshed, ev.Kind)
	require.Equal(t, "fresh-access", ev.Access)

	// A rejected refresh ends the session instead of reporting an error.
	_, ok = m.Refresh(context.Background(), func(context.Context, string) (string, error) {
		return "", errors.New("token_not_valid")
	})
	require.False(t, ok)

	ev = <-events
	require.Equal(t, EventLogout, ev.Kind)
	require.Zero(t, st.len())
}

func TestAccessTokenExpiry(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp":  exp.Unix(),
		"user": 7,
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	st := newMemStore()
	m, err := NewManager(st, NewBus(), testLogger())
	require.NoError(t, err)

	tok := loginResponse()
	tok.Access = signed
	require.NoError(t, m.HandleLogin(tok))

	got, ok := m.AccessTokenExpiry()
	require.True(t, ok)
	require.True(t, got.Equal(exp))

	// A token that is not a JWT reports no expiry.
	require.NoError(t, m.StoreAccessToken("opaque"))
	_, ok = m.AccessTokenExpiry()
	require.False(t, ok)
}

func TestBusDropsEventsForSlowSubscribers(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	events, cancel := bus.Subscribe()
	defer cancel()

	// Overflow the buffer; Publish must never block.
	for i := 0; i < 20; i++ {
		bus.Publish(Event{Kind: EventTokenRefreshed})
	}

	drained := 0
	for {
		select {
		case <-events:
			drained++
		default:
			require.Equal(t, 8, drained)
			return
		}
	}
}

func TestBusCancelClosesChannel(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	events, cancel := bus.Subscribe()
	cancel()
	cancel() // idempotent

	_, open := <-events
	require.False(t, open)

	// Publishing after cancel reaches no one and must not panic.
	bus.Publish(Event{Kind: EventLogout})
}
