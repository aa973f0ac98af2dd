package portaransas

import (
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/eringen/portaransas/views"
)

// overlayFS serves files from upper, falling back to lower.
type overlayFS struct {
	upper, lower fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.upper.Open(name)
	if err == nil {
		return f, nil
	}
	return o.lower.Open(name)
}

// ReadDir merges both listings so walking the overlay sees every file.
func (o overlayFS) ReadDir(name string) ([]fs.DirEntry, error) {
	upper, uerr := fs.ReadDir(o.upper, name)
	lower, lerr := fs.ReadDir(o.lower, name)
	if uerr != nil && lerr != nil {
		return nil, lerr
	}
	seen := make(map[string]bool, len(upper))
	for _, e := range upper {
		seen[e.Name()] = true
	}
	out := upper
	for _, e := range lower {
		if !seen[e.Name()] {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(x, y fs.DirEntry) int { return strings.Compare(x.Name(), y.Name()) })
	return out, nil
}

// Assets returns the tree served under /public/: the bundled stylesheet and
// scripts, overlaid by the static directory when one is configured.
func (a *App) Assets() fs.FS {
	if a.staticDir == "" {
		return views.Assets()
	}
	return overlayFS{upper: os.DirFS(a.staticDir), lower: views.Assets()}
}

func (a *App) mountAssets() {
	a.Echo.StaticFS("/public", a.Assets())
}
