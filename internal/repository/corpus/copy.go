package corpus

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyTo copies the files behind ids into dst, creating it if needed.
// Files are flattened into dst; a name already taken in this batch is
// prefixed with its parent folder. Returns the written paths in ids order.
func (r *Repo) CopyTo(ctx context.Context, ids []string, dst string) ([]string, error) {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dst, err)
	}

	taken := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		name := filepath.Base(id)
		if taken[name] {
			name = filepath.Base(filepath.Dir(id)) + "_" + name
		}
		for i := 2; taken[name]; i++ {
			name = fmt.Sprintf("%d_%s", i, filepath.Base(id))
		}
		taken[name] = true

		target := filepath.Join(dst, name)
		if err := copyFile(id, target); err != nil {
			return out, err
		}
		out = append(out, target)
	}
	return out, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(f, in); err != nil {
		_ = f.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	return nil
}
