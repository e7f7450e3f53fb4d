package nav

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/estudiopampa/portal/pkg/portalsdk"
)

// Handler runs the view behind a route.
type Handler func(ctx context.Context, args []string) error

// Route is a navigable destination. An empty Allowed list makes the route
// public; otherwise only the listed roles may enter.
type Route struct {
	Path    string
	Allowed []portalsdk.Role
	Handler Handler
}

// Resolution is the outcome of routing a path for a user: the route that
// will actually run (after any access redirects) and the notices collected
// along the way.
type Resolution struct {
	Route   *Route
	Path    string
	Notices []string
}

// Redirected reports whether the user ended up somewhere other than the
// path they asked for.
func (r *Resolution) Redirected(requested string) bool {
	return r.Path != requested
}

// maxRedirects bounds the guard-redirect chain. Two hops cover every legal
// case (guarded route -> role landing or login); anything longer is a
// misconfigured route table.
const maxRedirects = 4

// Router maps paths to routes and applies the access guard, following its
// redirects until a route the user may enter is found.
type Router struct {
	guard  *Guard
	log    *slog.Logger
	routes map[string]*Route
}

func NewRouter(guard *Guard, log *slog.Logger) *Router {
	return &Router{
		guard:  guard,
		log:    log,
		routes: make(map[string]*Route),
	}
}

// Handle registers a route. Registering the same path twice panics: the
// route table is static wiring, not runtime state.
func (r *Router) Handle(path string, allowed []portalsdk.Role, h Handler) {
	if _, exists := r.routes[path]; exists {
		panic(fmt.Sprintf("nav: duplicate route %q", path))
	}
	r.routes[path] = &Route{Path: path, Allowed: allowed, Handler: h}
}

// Routes returns the registered paths, for help output.
func (r *Router) Routes() []*Route {
	routes := make([]*Route, 0, len(r.routes))
	for _, route := range r.routes {
		routes = append(routes, route)
	}
	return routes
}

// Resolve routes path for user (nil when logged out), following guard
// redirects to the route that will actually run.
func (r *Router) Resolve(path string, user *portalsdk.User) (*Resolution, error) {
	res := &Resolution{Path: path}

	for hop := 0; ; hop++ {
		if hop > maxRedirects {
			return nil, fmt.Errorf("nav: redirect loop resolving %q", path)
		}

		route, ok := r.routes[res.Path]
		if !ok {
			return nil, fmt.Errorf("nav: unknown route %q", res.Path)
		}

		redirect, notice := r.guard.Check(route, user)
		if redirect == "" {
			res.Route = route
			return res, nil
		}

		r.log.Debug("route redirected", "from", res.Path, "to", redirect)
		if notice != "" {
			res.Notices = append(res.Notices, notice)
		}
		res.Path = redirect
	}
}
