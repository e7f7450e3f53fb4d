package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"golang.org/x/time/rate"

	"github.com/estudiopampa/portal/internal/portal/nav"
	"github.com/estudiopampa/portal/internal/portal/session"
	"github.com/estudiopampa/portal/internal/portal/store"
	"github.com/estudiopampa/portal/internal/portal/store/drivers/sqlite"
	"github.com/estudiopampa/portal/internal/portal/views"
	"github.com/estudiopampa/portal/pkg/cryptox"
	"github.com/estudiopampa/portal/pkg/portalsdk"
	"github.com/estudiopampa/portal/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the portal client together: the persisted session, the
// SDK with its auth transport, the route guard, and the views.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	bus     *session.Bus
	session *session.Manager
	sdk     *portalsdk.SDKClient
	router  *nav.Router
	views   *views.Views
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "portal",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("PORTAL_API_URL is required")
	}

	sealer, err := cryptox.NewSealer(cfg.MasterKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sealing key: %w", err)
	}

	db, err := sqlite.NewStore(cfg.StateFile, sealer)
	if err != nil {
		return nil, fmt.Errorf("failed to open session state: %w", err)
	}
	if err := db.ApplyMigrations(); err != nil {
		return nil, fmt.Errorf("failed to migrate session state: %w", err)
	}
	app.db = db

	app.bus = session.NewBus()
	app.session, err = session.NewManager(app.db, app.bus, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	app.sdk = portalsdk.NewSDKClient(cfg.APIBaseURL, portalsdk.Options{
		Tokens:    app.session,
		Notifier:  app.session,
		Timeout:   cfg.HTTPTimeout,
		RateLimit: rate.Limit(cfg.RateLimit),
		Burst:     cfg.RateBurst,
	})

	app.views = views.New(app.sdk, app.session, os.Stdin, os.Stdout, app.logger)
	app.initRoutes()

	return app, nil
}

func (app *Application) initRoutes() {
	staff := []portalsdk.Role{portalsdk.RoleAdmin, portalsdk.RoleEmployee}
	everyone := []portalsdk.Role{portalsdk.RoleAdmin, portalsdk.RoleEmployee, portalsdk.RoleClient}

	guard := nav.NewGuard()
	events, _ := app.bus.Subscribe()
	go func() {
		// Any session transition re-arms the guard's one-shot notice.
		for range events {
			guard.Reset()
		}
	}()

	app.router = nav.NewRouter(guard, app.logger)
	app.router.Handle("/login", nil, app.views.Login)
	app.router.Handle("/logout", nil, app.views.Logout)
	app.router.Handle("/whoami", nil, app.views.Whoami)
	app.router.Handle("/admin", []portalsdk.Role{portalsdk.RoleAdmin}, app.views.Dashboard)
	app.router.Handle("/employee", []portalsdk.Role{portalsdk.RoleEmployee}, app.views.Dashboard)
	app.router.Handle("/client", []portalsdk.Role{portalsdk.RoleClient}, app.views.Dashboard)
	app.router.Handle("/clients", staff, app.views.Clients)
	app.router.Handle("/employees", []portalsdk.Role{portalsdk.RoleAdmin}, app.views.Employees)
	app.router.Handle("/honorarios", everyone, app.views.Honorarios)
	app.router.Handle("/payments", everyone, app.views.Payments)
	app.router.Handle("/documents", everyone, app.views.Documents)
	app.router.Handle("/profile", everyone, app.views.Profile)
}

// Run dispatches one command and returns when its view finishes.
func (app *Application) Run(ctx context.Context, args []string) error {
	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close session state", "error", err)
		}
	}()

	command := "home"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}
	if command == "help" || command == "-h" || command == "--help" {
		app.usage()
		return nil
	}

	path := app.commandPath(command)
	if path == "" {
		app.usage()
		return fmt.Errorf("unknown command %q", command)
	}

	user := app.currentUser()
	res, err := app.router.Resolve(path, user)
	if err != nil {
		return err
	}
	for _, notice := range res.Notices {
		fmt.Fprintf(os.Stderr, "%s\n", notice)
	}

	return res.Route.Handler(ctx, args)
}

// commandPath maps a CLI command to its route. "home" goes to the role's
// landing route, or to login when logged out.
func (app *Application) commandPath(command string) string {
	if command == "home" {
		user, ok := app.session.CurrentUser()
		if !ok {
			return nav.LoginPath
		}
		return nav.LandingPath(user.Role)
	}

	path := "/" + command
	for _, route := range app.router.Routes() {
		if route.Path == path {
			return path
		}
	}
	return ""
}

func (app *Application) currentUser() *portalsdk.User {
	user, ok := app.session.CurrentUser()
	if !ok {
		return nil
	}
	return &user
}

func (app *Application) usage() {
	commands := make([]string, 0)
	for _, route := range app.router.Routes() {
		commands = append(commands, strings.TrimPrefix(route.Path, "/"))
	}
	sort.Strings(commands)

	fmt.Fprintf(os.Stderr, "usage: portal <command> [verb] [flags]\n\ncommands:\n")
	for _, command := range commands {
		fmt.Fprintf(os.Stderr, "  %s\n", command)
	}
	fmt.Fprintf(os.Stderr, "\nrun portal <command> -h for command flags\n")
}
