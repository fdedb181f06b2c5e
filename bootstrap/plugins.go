package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"path"

	"github.com/eyescreen/eyescreen/db"
	"github.com/eyescreen/eyescreen/views"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// ComponentLibrary serves a bundle of stylesheets and scripts under Prefix
// and links them from the page shell.
type ComponentLibrary struct {
	FS          fs.FS
	Prefix      string // default "/assets"
	Stylesheets []string
	Scripts     []string
}

func (l ComponentLibrary) Name() string { return "component-library" }

func (l ComponentLibrary) Install(a *App) error {
	if l.FS == nil {
		return errors.New("no asset filesystem")
	}
	prefix := l.Prefix
	if prefix == "" {
		prefix = "/assets"
	}
	for _, name := range append(append([]string{}, l.Stylesheets...), l.Scripts...) {
		if _, err := fs.Stat(l.FS, name); err != nil {
			return fmt.Errorf("asset %s: %w", name, err)
		}
	}
	a.Echo().StaticFS(prefix, l.FS)
	for _, s := range l.Stylesheets {
		a.AddStylesheet(path.Join(prefix, s))
	}
	for _, s := range l.Scripts {
		a.AddScript(path.Join(prefix, s))
	}
	return nil
}

// APIProxy forwards /api to Upstream when the endpoint is relative, so
// same-origin requests from the page reach the backend. With an absolute
// endpoint the page calls the backend directly and nothing is installed.
type APIProxy struct {
	Upstream string
}

func (p APIProxy) Name() string { return "api-proxy" }

func (p APIProxy) Install(a *App) error {
	if !a.Endpoint().IsRelative() {
		log.Printf("api proxy off: client calls %s directly", a.Endpoint().BaseURL())
		return nil
	}
	u, err := url.Parse(p.Upstream)
	if err != nil {
		return fmt.Errorf("upstream: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("upstream %q: need scheme and host", p.Upstream)
	}
	proxy := middleware.ProxyWithConfig(middleware.ProxyConfig{
		Balancer: middleware.NewRoundRobinBalancer([]*middleware.ProxyTarget{{URL: u}}),
	})
	// the proxy middleware answers the request itself
	unreachable := func(c echo.Context) error { return echo.ErrNotFound }
	a.Echo().Any("/api", unreachable, proxy)
	a.Echo().Any("/api/*", unreachable, proxy)
	log.Printf("api proxy: /api -> %s", u)
	return nil
}

// HistoryPage renders the locally recorded runs at /history.
type HistoryPage struct {
	Repo  db.Repo
	Limit int
}

func (h HistoryPage) Name() string { return "history-page" }

func (h HistoryPage) Install(a *App) error {
	if h.Repo == nil {
		return errors.New("no history repo")
	}
	limit := h.Limit
	if limit <= 0 {
		limit = 50
	}
	a.Echo().GET("/history", func(c echo.Context) error {
		runs, err := h.Repo.ListRuns(c.Request().Context(), limit)
		if err != nil {
			log.Printf("history: list runs: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		return render(c, http.StatusOK, views.History(a.title+" · History", runs))
	})
	return nil
}
