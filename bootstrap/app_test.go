package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eyescreen/eyescreen/config"
	"github.com/eyescreen/eyescreen/views"
	. "github.com/onsi/gomega"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Code, rec.Body.String()
}

// recordingPlugin notes the order plugins are installed in.
type recordingPlugin struct {
	name  string
	order *[]string
	err   error
}

func (p recordingPlugin) Name() string { return p.name }

func (p recordingPlugin) Install(a *App) error {
	*p.order = append(*p.order, p.name)
	return p.err
}

func TestMountRendersShell(t *testing.T) {
	tests := []struct {
		name     string
		mode     config.Mode
		wantBase string
	}{
		{"production", config.Production, ""},
		{"development", config.Development, "http://localhost:5000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			app := New(config.NewEndpoint(tt.mode, ""), WithoutAccessLog())
			g.Expect(app.Mount("#app")).To(Succeed())

			code, body := get(t, app, "/")
			g.Expect(code).To(Equal(http.StatusOK))
			g.Expect(body).To(ContainSubstring(`<div id="app"></div>`))
			g.Expect(body).To(ContainSubstring(`"baseURL":"` + tt.wantBase + `"`))

			code, body = get(t, app, "/config.json")
			g.Expect(code).To(Equal(http.StatusOK))
			var cfg views.RuntimeConfig
			g.Expect(json.Unmarshal([]byte(body), &cfg)).To(Succeed())
			g.Expect(cfg.BaseURL).To(Equal(tt.wantBase))
			g.Expect(cfg.Mode).To(Equal(string(tt.mode)))
		})
	}
}

func TestMountAnchor(t *testing.T) {
	tests := []struct {
		anchor string
		ok     bool
	}{
		{"#app", true},
		{"app", true},
		{"#main-root_1", true},
		{"", false},
		{"#", false},
		{"#1app", false},
		{".app", false},
		{`#a"b`, false},
	}
	for _, tt := range tests {
		t.Run(tt.anchor, func(t *testing.T) {
			app := New(config.NewEndpoint(config.Development, ""), WithoutAccessLog())
			err := app.Mount(tt.anchor)
			if tt.ok && err != nil {
				t.Errorf("Mount(%q) = %v", tt.anchor, err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidAnchor) {
				t.Errorf("Mount(%q) = %v, want ErrInvalidAnchor", tt.anchor, err)
			}
		})
	}
}

func TestMountOnce(t *testing.T) {
	g := NewWithT(t)
	var order []string
	app := New(config.NewEndpoint(config.Development, ""), WithoutAccessLog())

	g.Expect(app.Mounted()).To(BeFalse())
	g.Expect(app.Start(context.Background(), "127.0.0.1:0")).To(MatchError(ErrNotMounted))

	g.Expect(app.Mount("#app")).To(Succeed())
	g.Expect(app.Mounted()).To(BeTrue())
	g.Expect(app.Mount("#app")).To(MatchError(ErrAlreadyMounted))

	err := app.Use(recordingPlugin{name: "late", order: &order})
	g.Expect(errors.Is(err, ErrAlreadyMounted)).To(BeTrue())
	g.Expect(order).To(BeEmpty())
}

func TestPluginsInstallInOrder(t *testing.T) {
	g := NewWithT(t)
	var order []string
	app := New(config.NewEndpoint(config.Production, ""), WithoutAccessLog())
	g.Expect(app.Use(recordingPlugin{name: "a", order: &order})).To(Succeed())
	g.Expect(app.Use(recordingPlugin{name: "b", order: &order})).To(Succeed())
	g.Expect(app.Use(recordingPlugin{name: "c", order: &order})).To(Succeed())

	g.Expect(app.Mount("app")).To(Succeed())
	g.Expect(order).To(Equal([]string{"a", "b", "c"}))
}

func TestPluginFailureAbortsMount(t *testing.T) {
	g := NewWithT(t)
	var order []string
	app := New(config.NewEndpoint(config.Development, ""), WithoutAccessLog())
	_ = app.Use(recordingPlugin{name: "broken", order: &order, err: errors.New("boom")})
	_ = app.Use(recordingPlugin{name: "after", order: &order})

	err := app.Mount("#app")
	g.Expect(err).To(MatchError(ContainSubstring("install broken: boom")))
	g.Expect(app.Mounted()).To(BeFalse())
	g.Expect(order).To(Equal([]string{"broken"}))
}

func TestStartServesUntilCancelled(t *testing.T) {
	g := NewWithT(t)
	app := New(config.NewEndpoint(config.Production, ""), WithoutAccessLog())
	g.Expect(app.Mount("#app")).To(Succeed())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Start(ctx, "127.0.0.1:0") }()

	g.Eventually(app.Echo().ListenerAddr).ShouldNot(BeNil())
	resp, err := http.Get("http://" + app.Echo().ListenerAddr().String() + "/config.json")
	g.Expect(err).NotTo(HaveOccurred())
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	g.Expect(strings.TrimSpace(string(body))).To(Equal(`{"baseURL":"","mode":"production"}`))

	cancel()
	g.Eventually(done).Should(Receive(BeNil()))
}
