package store

import "errors"

// Keys persisted by the session layer. The names mirror what the API's web
// front end keeps in browser storage so a session can be inspected with the
// same vocabulary on either surface.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

var ErrNotFound = errors.New("store: not found")

// Store is durable, synchronous key/value access to the persisted session
// state (access token, refresh token, cached user profile). Concrete drivers
// (sqlite) implement this. The session manager is the primary writer; the
// SDK transport additionally writes the access token on its refresh path.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Clear removes every persisted key.
	Clear() error

	// Close releases any underlying resources.
	Close() error
}
