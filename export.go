package portaransas

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// ExportResult summarizes a static export.
type ExportResult struct {
	Pages    int
	Assets   int
	Duration time.Duration
}

// Export renders every path from Paths, plus sitemap.xml and robots.txt,
// into dir and copies the /public/ assets next to them. Pages are rendered
// by the app's own handler, up to workers at a time. Any response other
// than 200 fails the export, so a key that is enumerated but does not
// resolve can never be published.
func (a *App) Export(ctx context.Context, dir string, workers int) (ExportResult, error) {
	if err := a.Init(); err != nil {
		return ExportResult{}, err
	}
	if workers < 1 {
		workers = 1
	}
	start := time.Now()
	paths := append(a.Paths(), "/sitemap.xml", "/robots.txt")

	var pages atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			body, err := a.fetch(ctx, p)
			if err != nil {
				return err
			}
			if err := writeExported(dir, p, body); err != nil {
				return err
			}
			pages.Add(1)
			a.Log.Debug().Str("path", p).Int("bytes", len(body)).Msg("exported")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ExportResult{}, err
	}

	assets, err := copyAssets(a.Assets(), filepath.Join(dir, "public"))
	if err != nil {
		return ExportResult{}, fmt.Errorf("portaransas: export assets: %w", err)
	}
	res := ExportResult{Pages: int(pages.Load()), Assets: assets, Duration: time.Since(start)}
	a.Log.Info().
		Int("pages", res.Pages).
		Int("assets", res.Assets).
		Dur("took", res.Duration).
		Str("dir", dir).
		Msg("export complete")
	return res, nil
}

func (a *App) fetch(ctx context.Context, p string) ([]byte, error) {
	req := httptest.NewRequest(http.MethodGet, p, nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		return nil, fmt.Errorf("portaransas: export %s: status %d", p, rec.Code)
	}
	return rec.Body.Bytes(), nil
}

// writeExported maps a URL path onto a file: directory-style paths get an
// index.html, anything else keeps its name.
func writeExported(dir, p string, body []byte) error {
	rel := strings.TrimPrefix(p, "/")
	if rel == "" || strings.HasSuffix(rel, "/") {
		rel = path.Join(rel, "index.html")
	}
	dst := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, body, 0o644)
}

func copyAssets(src fs.FS, dst string) (int, error) {
	n := 0
	err := fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		out := filepath.Join(dst, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(out, 0o755)
		}
		data, err := fs.ReadFile(src, p)
		if err != nil {
			return err
		}
		n++
		return os.WriteFile(out, data, 0o644)
	})
	return n, err
}
