package nav

import (
	"sync"

	"github.com/estudiopampa/portal/pkg/portalsdk"
)

// LoginPath is where unauthenticated visitors land.
const LoginPath = "/login"

// LandingPath is the home route for a role.
func LandingPath(role portalsdk.Role) string {
	switch role {
	case portalsdk.RoleAdmin:
		return "/admin"
	case portalsdk.RoleEmployee:
		return "/employee"
	default:
		return "/client"
	}
}

const (
	noticeLoginRequired = "please log in to continue"
	noticeNotAuthorized = "you are not authorized to view that page"
)

// Guard decides whether a user may enter a route, and with what notice.
// It remembers the last redirect target so a run of checks bouncing to the
// same place surfaces the notice once, not once per check.
type Guard struct {
	mu         sync.Mutex
	lastTarget string
}

func NewGuard() *Guard {
	return &Guard{}
}

// Reset re-arms the notice, forgetting the last redirect target. Callers
// hook it to session changes so a fresh login or logout surfaces the next
// redirect's notice again.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastTarget = ""
}

// Check evaluates route access for user (nil when logged out). It returns
// the redirect target and a user-facing notice, both empty when access is
// granted.
func (g *Guard) Check(route *Route, user *portalsdk.User) (redirect, notice string) {
	target, msg := g.decide(route, user)

	g.mu.Lock()
	defer g.mu.Unlock()

	if target == "" {
		g.lastTarget = ""
		return "", ""
	}
	if target == g.lastTarget {
		return target, ""
	}
	g.lastTarget = target
	return target, msg
}

func (g *Guard) decide(route *Route, user *portalsdk.User) (string, string) {
	if len(route.Allowed) == 0 {
		return "", ""
	}
	if user == nil {
		return LoginPath, noticeLoginRequired
	}
	for _, role := range route.Allowed {
		if user.Role == role {
			return "", ""
		}
	}
	return LandingPath(user.Role), noticeNotAuthorized
}
