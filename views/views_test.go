package views

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/eyescreen/eyescreen/db"
)

func renderString(t *testing.T, c interface {
	Render(context.Context, io.Writer) error
}) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestShell(t *testing.T) {
	html := renderString(t, Shell(ShellProps{
		Title:       "眼底检测",
		Anchor:      "app",
		Config:      RuntimeConfig{BaseURL: "", Mode: "production"},
		Stylesheets: []string{"/assets/library/index.css?v=1"},
		Scripts:     []string{"/assets/app.js"},
	}))

	checks := []string{
		`<title>眼底检测</title>`,
		`<link rel="stylesheet" href="/assets/library/index.css?v=1">`,
		`window.__EYESCREEN__ = {"baseURL":"","mode":"production"};`,
		`<div id="app"></div>`,
		`<script type="module" src="/assets/app.js"></script>`,
	}
	for _, c := range checks {
		if !strings.Contains(html, c) {
			t.Errorf("shell missing %q\n%s", c, html)
		}
	}
	// config must be set before the client script loads
	if strings.Index(html, ConfigGlobal) > strings.Index(html, "/assets/app.js") {
		t.Error("runtime config written after client script")
	}
}

func TestShellEscapesConfig(t *testing.T) {
	html := renderString(t, Shell(ShellProps{
		Anchor: "app",
		Config: RuntimeConfig{BaseURL: "http://x/</script><script>alert(1)</script>", Mode: "development"},
	}))
	if strings.Contains(html, "</script><script>alert(1)") {
		t.Errorf("config not escaped:\n%s", html)
	}
}

func TestShellEscapesAttributes(t *testing.T) {
	html := renderString(t, Shell(ShellProps{
		Anchor:  `app"><script>`,
		Scripts: []string{`/x.js" onload="alert(1)`},
	}))
	for _, bad := range []string{`app"><script>`, `onload="alert(1)`} {
		if strings.Contains(html, bad) {
			t.Errorf("unescaped %q in\n%s", bad, html)
		}
	}
	if !strings.Contains(html, `<div id="app&#34;&gt;&lt;script&gt;"></div>`) {
		t.Errorf("anchor not escaped:\n%s", html)
	}
}

func TestHistory(t *testing.T) {
	html := renderString(t, History("History", []db.Run{
		{ID: "r1", Kind: db.KindChat, Mode: "development", Subject: "<b>hi</b>", Result: "reply", CreatedAt: time.Now().Add(-2 * time.Minute)},
		{ID: "r2", Kind: db.KindBatch, Subject: "/srv", ExcelPath: "results/x.xlsx", Processed: 3, CreatedAt: time.Now()},
	}))
	for _, c := range []string{`id="run-r1"`, "&lt;b&gt;hi&lt;/b&gt;", "2 minutes ago", "results/x.xlsx"} {
		if !strings.Contains(html, c) {
			t.Errorf("history missing %q", c)
		}
	}
	if empty := renderString(t, History("History", nil)); !strings.Contains(empty, "No runs yet.") {
		t.Errorf("empty history = %s", empty)
	}
}
