package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/eyescreen/eyescreen/config"
	"github.com/eyescreen/eyescreen/views"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var (
	ErrAlreadyMounted = errors.New("app already mounted")
	ErrNotMounted     = errors.New("app not mounted")
	ErrInvalidAnchor  = errors.New("invalid mount anchor")
)

var anchorID = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Plugin extends the app before it is mounted, the way a component library
// registers itself with the client.
type Plugin interface {
	Name() string
	Install(a *App) error
}

// App hosts the browser client. The endpoint is fixed at construction, so
// it is in place before any plugin or page can issue a request.
type App struct {
	endpoint config.Endpoint
	title    string
	quiet    bool
	e        *echo.Echo

	plugins     []Plugin
	stylesheets []string
	scripts     []string

	anchor       string
	mounted      bool
	assetVersion atomic.Int64
}

type Option func(*App)

func WithTitle(title string) Option {
	return func(a *App) { a.title = title }
}

// WithoutAccessLog drops the per-request log line.
func WithoutAccessLog() Option {
	return func(a *App) { a.quiet = true }
}

// New creates an unmounted app bound to endpoint.
func New(endpoint config.Endpoint, opts ...Option) *App {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	a := &App{endpoint: endpoint, title: "Eye Screening", e: e}
	for _, o := range opts {
		o(a)
	}
	if !a.quiet {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())
	return a
}

func (a *App) Endpoint() config.Endpoint { return a.endpoint }

// Echo exposes the router to plugins.
func (a *App) Echo() *echo.Echo { return a.e }

// Use registers a plugin. Plugins are installed in registration order when
// the app is mounted.
func (a *App) Use(p Plugin) error {
	if a.mounted {
		return fmt.Errorf("use %s: %w", p.Name(), ErrAlreadyMounted)
	}
	a.plugins = append(a.plugins, p)
	return nil
}

// AddStylesheet links href from the page shell.
func (a *App) AddStylesheet(href string) { a.stylesheets = append(a.stylesheets, href) }

// AddScript loads src as a module script after the mount anchor.
func (a *App) AddScript(src string) { a.scripts = append(a.scripts, src) }

// BumpAssetVersion invalidates cached asset links in the shell.
func (a *App) BumpAssetVersion() int64 { return a.assetVersion.Add(1) }

// Mount installs every plugin and attaches the client to the element
// selected by anchor ("#app" or "app").
func (a *App) Mount(anchor string) error {
	if a.mounted {
		return ErrAlreadyMounted
	}
	id := strings.TrimPrefix(anchor, "#")
	if !anchorID.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidAnchor, anchor)
	}
	for _, p := range a.plugins {
		if err := p.Install(a); err != nil {
			return fmt.Errorf("install %s: %w", p.Name(), err)
		}
	}

	a.e.GET("/", a.shell)
	a.e.GET("/index.html", a.shell)
	a.e.GET("/config.json", a.runtimeConfig)

	a.anchor = id
	a.mounted = true
	return nil
}

func (a *App) Mounted() bool { return a.mounted }

// ServeHTTP makes a mounted App usable as an http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.e.ServeHTTP(w, r)
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (a *App) Start(ctx context.Context, addr string) error {
	if !a.mounted {
		return ErrNotMounted
	}
	errCh := make(chan error, 1)
	go func() { errCh <- a.e.Start(addr) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Printf("shutting down %s", addr)
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.e.Shutdown(sctx)
	}
}

func (a *App) config() views.RuntimeConfig {
	return views.RuntimeConfig{BaseURL: a.endpoint.BaseURL(), Mode: a.endpoint.Mode().String()}
}

func (a *App) shell(c echo.Context) error {
	v := strconv.FormatInt(a.assetVersion.Load(), 10)
	return render(c, http.StatusOK, views.Shell(views.ShellProps{
		Title:       a.title,
		Anchor:      a.anchor,
		Config:      a.config(),
		Stylesheets: versioned(a.stylesheets, v),
		Scripts:     versioned(a.scripts, v),
	}))
}

func (a *App) runtimeConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, a.config())
}

func versioned(links []string, v string) []string {
	out := make([]string, len(links))
	for i, l := range links {
		sep := "?"
		if strings.Contains(l, "?") {
			sep = "&"
		}
		out[i] = l + sep + "v=" + v
	}
	return out
}
