package workspace

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createFile(t *testing.T, root, name, content string) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	return full
}

func defaultOpts() ScanOptions {
	return ScanOptions{
		IncludeGlobs: []string{"**/*.pdf"},
		IgnoreDirs:   []string{".git", ".svn", "__pycache__"},
	}
}

func Test_Scan_SortedAndIdempotent(t *testing.T) {
	tmp := t.TempDir()
	createFile(t, tmp, "zeta.pdf", "z")
	createFile(t, tmp, "docs/alpha.pdf", "a")
	createFile(t, tmp, "docs/beta.pdf", "b")
	createFile(t, tmp, "notes.txt", "n")

	paths, err := Scan(tmp, defaultOpts(), discardLog())
	require.NoError(t, err)

	want := []string{
		filepath.Join(tmp, "docs", "alpha.pdf"),
		filepath.Join(tmp, "docs", "beta.pdf"),
		filepath.Join(tmp, "zeta.pdf"),
	}
	assert.Equal(t, want, paths)

	again, err := Scan(tmp, defaultOpts(), discardLog())
	require.NoError(t, err)
	assert.Equal(t, paths, again)
}

func Test_Scan_NoDuplicatesAcrossPatterns(t *testing.T) {
	tmp := t.TempDir()
	createFile(t, tmp, "docs/report.pdf", "r")

	opts := defaultOpts()
	opts.IncludeGlobs = []string{"**/*.pdf", "docs/*.pdf"}

	paths, err := Scan(tmp, opts, discardLog())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tmp, "docs", "report.pdf")}, paths)
}

func Test_Scan_IgnoredDirs(t *testing.T) {
	tmp := t.TempDir()
	createFile(t, tmp, "keep.pdf", "k")
	createFile(t, tmp, ".git/objects/blob.pdf", "g")
	createFile(t, tmp, "nested/__pycache__/cached.pdf", "c")

	paths, err := Scan(tmp, defaultOpts(), discardLog())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tmp, "keep.pdf")}, paths)
}

func Test_Scan_MaxBytes(t *testing.T) {
	tmp := t.TempDir()
	createFile(t, tmp, "small.pdf", "1234")
	createFile(t, tmp, "large.pdf", "123456789")

	opts := defaultOpts()
	opts.MaxBytes = 5

	paths, err := Scan(tmp, opts, discardLog())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tmp, "small.pdf")}, paths)
}

func Test_Scan_Symlinks(t *testing.T) {
	tmp := t.TempDir()
	target := createFile(t, tmp, "real.pdf", "r")
	require.NoError(t, os.Symlink(target, filepath.Join(tmp, "link.pdf")))

	paths, err := Scan(tmp, defaultOpts(), discardLog())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tmp, "real.pdf")}, paths)

	opts := defaultOpts()
	opts.FollowSymlinks = true
	paths, err = Scan(tmp, opts, discardLog())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(tmp, "link.pdf"),
		filepath.Join(tmp, "real.pdf"),
	}, paths)
}

func Test_Scan_BadPatternSkipped(t *testing.T) {
	tmp := t.TempDir()
	createFile(t, tmp, "keep.pdf", "k")

	opts := defaultOpts()
	opts.IncludeGlobs = []string{"[", "**/*.pdf"}

	paths, err := Scan(tmp, opts, discardLog())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tmp, "keep.pdf")}, paths)
}

func Test_Scan_DirectoriesExcluded(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmp, "folder.pdf"), 0o755))
	createFile(t, tmp, "file.pdf", "f")

	paths, err := Scan(tmp, defaultOpts(), discardLog())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tmp, "file.pdf")}, paths)
}

func Test_Scan_BadRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"), defaultOpts(), discardLog())
	assert.ErrorIs(t, err, ErrBadRoot)

	file := createFile(t, t.TempDir(), "file.pdf", "f")
	_, err = Scan(file, defaultOpts(), discardLog())
	assert.ErrorIs(t, err, ErrBadRoot)
}
