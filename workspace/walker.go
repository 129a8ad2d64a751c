package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrBadRoot marks an unusable workspace directory. It is only returned
// during startup validation; everything after that degrades per-file.
var ErrBadRoot = errors.New("workspace does not exist or is not a directory")

type ScanOptions struct {
	IncludeGlobs   []string
	IgnoreDirs     []string
	FollowSymlinks bool
	MaxBytes       int64 // 0 means unlimited
}

// Scan enumerates files under root matching the include globs, honoring the
// ignore and size rules. The result holds absolute paths sorted by their
// root-relative slash form, with duplicates across patterns collapsed.
func Scan(root string, opts ScanOptions, log *slog.Logger) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadRoot, root)
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrBadRoot, root)
	}

	ignore := make(map[string]struct{}, len(opts.IgnoreDirs))
	for _, d := range opts.IgnoreDirs {
		ignore[d] = struct{}{}
	}

	seen := make(map[string]struct{})
	var rels []string
	fsys := os.DirFS(abs)

	for _, pattern := range opts.IncludeGlobs {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			log.Warn("skipping include pattern", "pattern", pattern, "error", err)
			continue
		}

		for _, rel := range matches {
			if _, ok := seen[rel]; ok {
				continue
			}

			if !accept(abs, rel, ignore, opts) {
				continue
			}

			seen[rel] = struct{}{}
			rels = append(rels, rel)
		}
	}

	sort.Strings(rels)

	paths := make([]string, len(rels))
	for i, rel := range rels {
		paths[i] = filepath.Join(abs, filepath.FromSlash(rel))
	}

	return paths, nil
}

func accept(root, rel string, ignore map[string]struct{}, opts ScanOptions) bool {
	for _, seg := range strings.Split(rel, "/") {
		if _, ok := ignore[seg]; ok {
			return false
		}
	}

	full := filepath.Join(root, filepath.FromSlash(rel))
	lst, err := os.Lstat(full)
	if err != nil {
		// The file may have vanished between glob and stat.
		return false
	}

	if lst.Mode()&fs.ModeSymlink != 0 && !opts.FollowSymlinks {
		return false
	}

	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	if opts.MaxBytes > 0 && info.Size() > opts.MaxBytes {
		return false
	}

	return true
}
