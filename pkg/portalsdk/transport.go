package portalsdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/estudiopampa/portal/pkg/idx"
	"github.com/estudiopampa/portal/pkg/slogx"
	"golang.org/x/time/rate"
)

var errNoRefreshToken = errors.New("portalsdk: no refresh token available")

// authTransport injects the bearer token into every request and performs a
// one-shot refresh-and-retry when the API answers 401. Concurrent refreshes
// are coalesced: the first in-flight 401 performs the network refresh while
// the rest wait and reuse the token it obtained.
type authTransport struct {
	base    http.RoundTripper
	tokens  TokenProvider
	notify  Notifier
	limiter *rate.Limiter

	// refresh exchanges a refresh token for a new access token. Injected
	// by the SDKClient so the transport never recurses through itself.
	refresh func(ctx context.Context, refreshToken string) (string, error)

	// mu serializes the refresh path (single flight).
	mu sync.Mutex
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req = req.Clone(ctx)
	req.Header.Set("X-Request-Id", idx.New())

	// Absent token: the request proceeds unauthenticated and the server
	// rejects it.
	sent, ok := t.tokens.AccessToken()
	if ok && sent != "" {
		req.Header.Set("Authorization", "Bearer "+sent)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// A body that cannot be replayed rules out a retry.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	access, refreshErr := t.refreshAccess(ctx, sent)
	if errors.Is(refreshErr, errNoRefreshToken) {
		t.notify.LoggedOut()
		return resp, nil // the original 401 propagates to the caller
	}
	if refreshErr != nil {
		drainAndClose(resp)
		t.notify.LoggedOut()
		return nil, fmt.Errorf("portalsdk: token refresh failed: %w", refreshErr)
	}

	drainAndClose(resp)

	// Exactly one retry; a second 401 is returned as-is.
	retry := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+access)
	return t.base.RoundTrip(retry)
}

// refreshAccess obtains a fresh access token, coalescing concurrent callers.
// sent is the token the failing request carried; if the stored token already
// differs, another request refreshed while this one waited for the lock and
// no further network call is made.
func (t *authTransport) refreshAccess(ctx context.Context, sent string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cur, ok := t.tokens.AccessToken(); ok && cur != "" && cur != sent {
		return cur, nil
	}

	refreshToken, ok := t.tokens.RefreshToken()
	if !ok || refreshToken == "" {
		return "", errNoRefreshToken
	}

	access, err := t.refresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	if err := t.tokens.StoreAccessToken(access); err != nil {
		// The retry can still proceed with the in-memory token; the next
		// process start will have to log in again.
		slogx.FromContext(ctx).Error("failed to persist refreshed access token", "error", err)
	}
	t.notify.TokenRefreshed(access)

	return access, nil
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
