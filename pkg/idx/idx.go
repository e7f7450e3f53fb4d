// Package idx generates lexicographically sortable request identifiers.
// Every outgoing API request carries one in its X-Request-Id header so a
// client-side log line can be matched against the API's access log.
package idx

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a new ULID string using the current UTC time and a shared
// monotonic entropy source. Safe for concurrent use.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy).String()
}

// Time extracts the embedded UTC timestamp from an ID, or the zero time if
// the ID is malformed.
func Time(id string) time.Time {
	u, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}
