// Package web holds the browser client's built assets.
package web

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed all:dist
var dist embed.FS

// FS returns the asset tree rooted at dist/. With live set the files are read
// from dir/dist on disk instead of the copy compiled into the binary.
func FS(live bool, dir string) (fs.FS, error) {
	if live {
		return os.DirFS(filepath.Join(dir, "dist")), nil
	}
	return fs.Sub(dist, "dist")
}
