// Package corpus lists, orders and reads image files on the local filesystem.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"
	"github.com/maruel/natural"

	"github.com/kailas-cloud/smartsample/internal/domain"
)

// DefaultExtensions are the file extensions picked up by Scan when no include
// pattern is given.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// Repo reads images from disk.
type Repo struct {
	extensions map[string]bool
}

// New creates a corpus repository accepting the given extensions
// (DefaultExtensions when empty).
func New(extensions ...string) *Repo {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	ext := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		ext[e] = true
	}
	return &Repo{extensions: ext}
}

// Scan lists image files under root in folder-major natural order.
// IDs are file paths.
func (r *Repo) Scan(ctx context.Context, root string, opts domain.ScanFilter) ([]domain.Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("scan %s: %w", root, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory", root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && !opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		ok, err := r.accept(filepath.ToSlash(rel), opts)
		if err != nil {
			return err
		}
		if ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return Order(paths), nil
}

func (r *Repo) accept(rel string, opts domain.ScanFilter) (bool, error) {
	for _, p := range opts.Exclude {
		ok, err := doublestar.Match(p, rel)
		if err != nil {
			return false, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
		if ok {
			return false, nil
		}
	}
	if len(opts.Include) == 0 {
		return r.extensions[strings.ToLower(filepath.Ext(rel))], nil
	}
	for _, p := range opts.Include {
		ok, err := doublestar.Match(p, rel)
		if err != nil {
			return false, fmt.Errorf("include pattern %q: %w", p, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Order sorts paths folder-major, then by natural order of the file name,
// and assigns consecutive Order keys. Paths are used as IDs unchanged.
func Order(paths []string) []domain.Source {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := filepath.Dir(sorted[i]), filepath.Dir(sorted[j])
		if di != dj {
			return natural.Less(di, dj)
		}
		return natural.Less(filepath.Base(sorted[i]), filepath.Base(sorted[j]))
	})
	items := make([]domain.Source, len(sorted))
	for i, p := range sorted {
		items[i] = domain.Source{ID: p, Order: i}
	}
	return items
}

// Order is the method form of the package-level Order.
func (r *Repo) Order(paths []string) []domain.Source { return Order(paths) }

// Read returns the file contents for an ID produced by Scan or Order.
func (r *Repo) Read(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", id, err)
	}
	return data, nil
}
