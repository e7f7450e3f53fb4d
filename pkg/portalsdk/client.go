package portalsdk

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// TokenProvider supplies the credentials attached to authenticated requests.
// The transport reads through it on every request instead of holding tokens
// itself, so the persisted session state stays the single source of truth.
// StoreAccessToken is the transport's one write path: persisting the access
// token it obtained by refreshing after a 401.
type TokenProvider interface {
	AccessToken() (string, bool)
	RefreshToken() (string, bool)
	StoreAccessToken(access string) error
}

// Notifier receives session lifecycle signals raised by the transport. The
// session owner implements it; the SDK never imports the session layer.
type Notifier interface {
	// TokenRefreshed fires after a 401-triggered refresh succeeded and the
	// new access token was persisted.
	TokenRefreshed(access string)

	// LoggedOut fires when a 401 could not be recovered (no refresh token,
	// or the refresh itself was rejected).
	LoggedOut()
}

// SDKClient is a client for the estudio portal REST API. The token endpoints
// go through a bare HTTP client; every other resource goes through an
// authenticated client whose transport injects the bearer token and retries
// once after a 401-triggered refresh.
type SDKClient struct {
	BaseURL string

	// HTTPClient performs unauthenticated requests (login, refresh).
	HTTPClient *http.Client

	// authClient performs authenticated requests via authTransport.
	authClient *http.Client
}

// Options configures an SDKClient.
type Options struct {
	// Tokens supplies credentials for authenticated requests. When nil,
	// requests are sent unauthenticated and 401s are never retried.
	Tokens TokenProvider

	// Notifier receives transport-raised session signals. Optional.
	Notifier Notifier

	// Timeout bounds each HTTP request. Defaults to 30 seconds.
	Timeout time.Duration

	// RateLimit paces outgoing authenticated requests (requests per
	// second). Zero disables pacing.
	RateLimit rate.Limit
	Burst     int

	// Transport overrides the base RoundTripper, mainly for tests.
	Transport http.RoundTripper
}

// NewSDKClient creates a portal API client rooted at baseURL.
func NewSDKClient(baseURL string, opts Options) *SDKClient {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(opts.RateLimit, burst)
	}

	tokens := opts.Tokens
	if tokens == nil {
		tokens = noTokens{}
	}
	notify := opts.Notifier
	if notify == nil {
		notify = noNotify{}
	}

	c := &SDKClient{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}

	c.authClient = &http.Client{
		Timeout: timeout,
		Transport: &authTransport{
			base:    base,
			tokens:  tokens,
			notify:  notify,
			limiter: limiter,
			refresh: c.RefreshAccessToken,
		},
	}

	return c
}

// url builds a complete URL by appending the path to the base URL.
func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

type noTokens struct{}

func (noTokens) AccessToken() (string, bool)  { return "", false }
func (noTokens) RefreshToken() (string, bool) { return "", false }
func (noTokens) StoreAccessToken(string) error {
	return nil
}

type noNotify struct{}

func (noNotify) TokenRefreshed(string) {}
func (noNotify) LoggedOut()            {}
