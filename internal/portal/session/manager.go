package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/estudiopampa/portal/internal/portal/store"
	"github.com/estudiopampa/portal/pkg/portalsdk"
)

// Manager owns the persisted session: the token pair and the logged-in
// user. It backs the SDK on both sides of the auth transport, serving as
// its token source and receiving its refresh and forced-logout
// notifications, and announces every state change on the bus.
//
// All methods are safe for concurrent use.
type Manager struct {
	store store.Store
	bus   *Bus
	log   *slog.Logger

	mu      sync.RWMutex
	access  string
	refresh string
	user    *portalsdk.User
}

var (
	_ portalsdk.TokenProvider = (*Manager)(nil)
	_ portalsdk.Notifier      = (*Manager)(nil)
)

// NewManager restores any persisted session from the store. A corrupt or
// partial persisted state is discarded rather than half-restored.
func NewManager(st store.Store, bus *Bus, log *slog.Logger) (*Manager, error) {
	m := &Manager{store: st, bus: bus, log: log}

	if err := m.restore(); err != nil {
		m.log.Warn("discarding unreadable persisted session", "error", err)
		if err := st.Clear(); err != nil {
			return nil, fmt.Errorf("failed to clear session state: %w", err)
		}
	}
	return m, nil
}

func (m *Manager) restore() error {
	access, err := m.store.Get(store.KeyAccessToken)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	refresh, err := m.store.Get(store.KeyRefreshToken)
	if err != nil {
		return err
	}

	rawUser, err := m.store.Get(store.KeyUser)
	if err != nil {
		return err
	}
	var user portalsdk.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return fmt.Errorf("failed to decode persisted user: %w", err)
	}
	if !user.Role.Valid() {
		return fmt.Errorf("persisted user has unknown role %q", user.Role)
	}

	m.access = access
	m.refresh = refresh
	m.user = &user
	return nil
}

// CurrentUser returns the logged-in user, or false when logged out.
func (m *Manager) CurrentUser() (portalsdk.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return portalsdk.User{}, false
	}
	return *m.user, true
}

// HandleLogin persists a fresh token pair and its user, replacing any
// previous session.
func (m *Manager) HandleLogin(tok *portalsdk.TokenResponse) error {
	user := tok.User()
	if !user.Role.Valid() {
		return fmt.Errorf("login response has unknown role %q", user.Role)
	}

	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(store.KeyAccessToken, tok.Access); err != nil {
		return fmt.Errorf("failed to persist access token: %w", err)
	}
	if err := m.store.Set(store.KeyRefreshToken, tok.Refresh); err != nil {
		return fmt.Errorf("failed to persist refresh token: %w", err)
	}
	if err := m.store.Set(store.KeyUser, string(rawUser)); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}

	m.access = tok.Access
	m.refresh = tok.Refresh
	m.user = &user

	m.log.Info("logged in", "username", user.Username, "role", user.Role)
	m.bus.Publish(Event{Kind: EventLogin, Username: user.Username})
	return nil
}

// Logout clears the session. Calling it while already logged out is a
// no-op: the logout event fires once per transition.
func (m *Manager) Logout() {
	m.mu.Lock()
	wasLoggedIn := m.user != nil || m.access != "" || m.refresh != ""
	m.access = ""
	m.refresh = ""
	m.user = nil

	var clearErr error
	if wasLoggedIn {
		clearErr = m.store.Clear()
	}
	m.mu.Unlock()

	if !wasLoggedIn {
		return
	}
	if clearErr != nil {
		m.log.Error("failed to clear session state", "error", clearErr)
	}
	m.log.Info("logged out")
	m.bus.Publish(Event{Kind: EventLogout})
}

// AccessTokenExpiry reports when the current access token expires,
// decoded without signature verification: the token is displayed, never
// trusted, client-side.
func (m *Manager) AccessTokenExpiry() (time.Time, bool) {
	m.mu.RLock()
	access := m.access
	m.mu.RUnlock()
	if access == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// AccessToken implements the SDK's token source.
func (m *Manager) AccessToken() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.access, m.access != ""
}

// RefreshToken implements the SDK's token source.
func (m *Manager) RefreshToken() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refresh, m.refresh != ""
}

// StoreAccessToken implements the SDK's token source. Only the access
// token rotates on refresh.
func (m *Manager) StoreAccessToken(access string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(store.KeyAccessToken, access); err != nil {
		return fmt.Errorf("failed to persist access token: %w", err)
	}
	m.access = access
	return nil
}

// Refresh exchanges the stored refresh token for a new access token via
// exchange and persists it. On any failure the session ends and ok is
// false; callers check ok rather than receiving an error.
func (m *Manager) Refresh(ctx context.Context, exchange func(ctx context.Context, refreshToken string) (string, error)) (string, bool) {
	refresh, ok := m.RefreshToken()
	if !ok {
		m.Logout()
		return "", false
	}

	access, err := exchange(ctx, refresh)
	if err != nil {
		m.log.Warn("token refresh failed", "error", err)
		m.Logout()
		return "", false
	}

	if err := m.StoreAccessToken(access); err != nil {
		m.log.Error("failed to persist refreshed access token", "error", err)
	}
	m.TokenRefreshed(access)
	return access, true
}

// TokenRefreshed implements the SDK's notifier.
func (m *Manager) TokenRefreshed(access string) {
	m.log.Debug("access token refreshed")
	m.bus.Publish(Event{Kind: EventTokenRefreshed, Access: access})
}

// LoggedOut implements the SDK's notifier: the transport could not keep
// the session alive, so the local session ends too.
func (m *Manager) LoggedOut() {
	m.Logout()
}
