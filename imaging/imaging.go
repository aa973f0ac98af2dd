// Package imaging resizes and re-encodes listing photos for the site's
// static image directory.
package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// Defaults for Options.
const (
	DefaultMaxWidth = 1600
	DefaultQuality  = 80
)

// Options control Process and OptimizeDir.
type Options struct {
	MaxWidth    int // images wider than this are scaled down
	Quality     int // JPEG quality, 1-100
	Concurrency int // OptimizeDir workers; defaults to GOMAXPROCS
}

func (o *Options) setDefaults() {
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.GOMAXPROCS(0)
	}
}

// Result describes one processed image.
type Result struct {
	Source string
	Output string
	Width  int
	Height int
	Before int64
	After  int64
}

// Process decodes an image from src, scales it down to opts.MaxWidth when it
// is wider, and encodes it as JPEG.
func Process(src io.Reader, opts Options) ([]byte, image.Rectangle, error) {
	opts.setDefaults()
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > opts.MaxWidth {
		h = h * opts.MaxWidth / w
		w = opts.MaxWidth
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// JPEG has no alpha; flatten onto white
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), dst.Bounds(), nil
}

// IsImage reports whether name has an extension Process can decode.
func IsImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}

// OutputName maps a source path relative to the input root onto its
// optimized file name: the same directories, a slugified base and ".jpg".
func OutputName(rel string) string {
	dir, file := filepath.Split(rel)
	base := strings.TrimSuffix(file, filepath.Ext(file))
	slug := slugify(base)
	if slug == "" {
		slug = "image"
	}
	return filepath.Join(dir, slug+".jpg")
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// OptimizeDir processes every image under srcDir into dstDir in parallel.
// The first failure cancels the remaining work and is returned.
func OptimizeDir(ctx context.Context, srcDir, dstDir string, opts Options, logger zerolog.Logger) ([]Result, error) {
	opts.setDefaults()

	var files []string
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsImage(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", srcDir, err)
	}

	var (
		mu      sync.Mutex
		results = make([]Result, 0, len(files))
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for _, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := optimizeFile(srcDir, dstDir, path, opts)
			if err != nil {
				return err
			}
			logger.Info().
				Str("src", res.Source).
				Str("out", res.Output).
				Int("width", res.Width).
				Int64("before", res.Before).
				Int64("after", res.After).
				Msg("optimized image")
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func optimizeFile(srcDir, dstDir, path string, opts Options) (Result, error) {
	rel, err := filepath.Rel(srcDir, path)
	if err != nil {
		return Result{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return Result{}, err
	}

	data, bounds, err := Process(f, opts)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", rel, err)
	}
	out := filepath.Join(dstDir, OutputName(rel))
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return Result{}, err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return Result{}, err
	}
	return Result{
		Source: path,
		Output: out,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Before: info.Size(),
		After:  int64(len(data)),
	}, nil
}
