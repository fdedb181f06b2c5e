package web

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedFS(t *testing.T) {
	fsys, err := FS(false, "")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"app.js", "library/index.css"} {
		if _, err := fs.Stat(fsys, name); err != nil {
			t.Errorf("embedded %s: %v", name, err)
		}
	}
}

func TestLiveFS(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "dist"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "dist", "app.js"), []byte("//live"), 0o644); err != nil {
		t.Fatal(err)
	}
	fsys, err := FS(true, dir)
	if err != nil {
		t.Fatal(err)
	}
	b, err := fs.ReadFile(fsys, "app.js")
	if err != nil || string(b) != "//live" {
		t.Errorf("ReadFile = %q, %v", b, err)
	}
}

// Without a runtime config the client falls back to the development backend.
func TestClientFallbackIsDevelopment(t *testing.T) {
	fsys, err := FS(false, "")
	if err != nil {
		t.Fatal(err)
	}
	b, err := fs.ReadFile(fsys, "app.js")
	if err != nil {
		t.Fatal(err)
	}
	want := `{ baseURL: "http://localhost:5000", mode: "development" }`
	if !strings.Contains(string(b), want) {
		t.Errorf("app.js fallback config missing %s", want)
	}
}
