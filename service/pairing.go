package service

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoPairs means no subfolder held both a left and a right eye image.
var ErrNoPairs = errors.New("no matching eye images")

var imageExts = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "bmp": true, "tiff": true,
}

// IsImageFile reports whether name carries one of the accepted image
// extensions. The check is case-insensitive and needs a dot.
func IsImageFile(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	return imageExts[strings.ToLower(name[i+1:])]
}

// Pair is the left/right image of one subfolder (one patient).
type Pair struct {
	Folder string
	Left   string
	Right  string
}

// side classifies a file name inside folder as "left", "right" or "".
// A name mentioning left is never treated as right.
func side(folder, name string) string {
	lower := strings.ToLower(name)
	sub := strings.ToLower(folder)
	switch {
	case strings.Contains(lower, sub+"_left") || strings.Contains(lower, "left"):
		if IsImageFile(lower) {
			return "left"
		}
	case strings.Contains(lower, sub+"_right") || strings.Contains(lower, "right"):
		if IsImageFile(lower) {
			return "right"
		}
	}
	return ""
}

// PairFolder scans the immediate subfolders of dir and returns one Pair per
// subfolder that holds both images. Symlinked folders and images are
// followed, dangling links are skipped. When several files match a side the
// last one in name order wins. Pairs are sorted by folder.
func PairFolder(dir string) ([]Pair, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var out []Pair
	for _, e := range entries {
		sub := filepath.Join(dir, e.Name())
		if fi, err := os.Stat(sub); err != nil || !fi.IsDir() {
			continue
		}
		files, err := os.ReadDir(sub)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", sub, err)
		}
		p := Pair{Folder: e.Name()}
		for _, f := range files {
			full := filepath.Join(sub, f.Name())
			if fi, err := os.Stat(full); err != nil || !fi.Mode().IsRegular() {
				continue
			}
			switch side(e.Name(), f.Name()) {
			case "left":
				p.Left = full
			case "right":
				p.Right = full
			}
		}
		if p.Left != "" && p.Right != "" {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Folder < out[j].Folder })
	return out, nil
}

// UploadFile is a file to send in a folder upload. Rel is the part name the
// backend expects: "<folder>/<subfolder>/<file>".
type UploadFile struct {
	Rel  string
	Path string
}

// CollectUploads lists the image files one level below dir's subfolders,
// keyed the way a browser folder picker names them.
func CollectUploads(dir string) ([]UploadFile, error) {
	pairs, err := PairFolder(dir)
	if err != nil {
		return nil, err
	}
	root := filepath.Base(filepath.Clean(dir))
	out := make([]UploadFile, 0, 2*len(pairs))
	for _, p := range pairs {
		for _, f := range []string{p.Left, p.Right} {
			out = append(out, UploadFile{
				Rel:  path.Join(root, p.Folder, filepath.Base(f)),
				Path: f,
			})
		}
	}
	return out, nil
}
