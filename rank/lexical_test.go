package rank

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gamma-omg/research-mcp/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testFile struct {
	name    string
	modTime time.Time
}

func buildIndex(t *testing.T, files []testFile) *workspace.Index {
	t.Helper()
	tmp := t.TempDir()

	paths := make([]string, 0, len(files))
	for _, f := range files {
		full := filepath.Join(tmp, filepath.FromSlash(f.name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
		if !f.modTime.IsZero() {
			require.NoError(t, os.Chtimes(full, f.modTime, f.modTime))
		}
		paths = append(paths, full)
	}

	idx := workspace.NewIndex(discardLog())
	require.NoError(t, idx.Rebuild(tmp, paths))
	return idx
}

func Test_Tokenize(t *testing.T) {
	assert.Equal(t,
		map[string]struct{}{"report": {}, "1": {}, "pdf": {}},
		Tokenize("Report 1.PDF"))
	assert.Empty(t, Tokenize("!!! ???"))
	assert.Empty(t, Tokenize(""))
}

func Test_Overlap_EmptyQuery(t *testing.T) {
	idx := buildIndex(t, []testFile{{name: "report.pdf"}})

	_, err := Overlap("", idx)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = Overlap("?!...", idx)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func Test_Overlap_NoResources(t *testing.T) {
	idx := buildIndex(t, nil)

	_, err := Overlap("report", idx)
	assert.ErrorIs(t, err, ErrNoResources)
}

func Test_Overlap_RanksByTokenOverlap(t *testing.T) {
	idx := buildIndex(t, []testFile{
		{name: "docs/report 1.pdf"},
		{name: "notes/draft.pdf"},
	})

	matches, err := Overlap("report", idx)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "report 1.pdf", matches[0].Filename)
	assert.Equal(t, 1, matches[0].Overlap)

	// Zero-overlap candidates stay ranked, not filtered.
	assert.Equal(t, "draft.pdf", matches[1].Filename)
	assert.Equal(t, 0, matches[1].Overlap)
}

func Test_Overlap_TieBreakByModTime(t *testing.T) {
	old := time.Now().Add(-time.Hour)
	idx := buildIndex(t, []testFile{
		{name: "a/report old.pdf", modTime: old},
		{name: "b/report new.pdf", modTime: old.Add(30 * time.Minute)},
	})

	matches, err := Overlap("report", idx)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "report new.pdf", matches[0].Filename)
	assert.Equal(t, "report old.pdf", matches[1].Filename)
}

func Test_Overlap_TieBreakByNameLength(t *testing.T) {
	same := time.Now().Add(-time.Hour).Truncate(time.Second)
	idx := buildIndex(t, []testFile{
		{name: "report extended.pdf", modTime: same},
		{name: "report.pdf", modTime: same},
	})

	matches, err := Overlap("report", idx)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "report.pdf", matches[0].Filename)
	assert.Equal(t, "report extended.pdf", matches[1].Filename)
}

func Test_Overlap_TieBreakByURI(t *testing.T) {
	same := time.Now().Add(-time.Hour).Truncate(time.Second)
	idx := buildIndex(t, []testFile{
		{name: "b/report.pdf", modTime: same},
		{name: "a/report.pdf", modTime: same},
	})

	matches, err := Overlap("report", idx)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "workspace://a/report.pdf", matches[0].URI)
	assert.Equal(t, "workspace://b/report.pdf", matches[1].URI)
}

func Test_Overlap_CapsAtMaxResults(t *testing.T) {
	var files []testFile
	for i := 0; i < MaxResults+5; i++ {
		files = append(files, testFile{name: fmt.Sprintf("report %02d.pdf", i)})
	}
	idx := buildIndex(t, files)

	matches, err := Overlap("report", idx)
	require.NoError(t, err)
	assert.Len(t, matches, MaxResults)
}

func Test_FormatMatches(t *testing.T) {
	out := FormatMatches([]Match{
		{Filename: "report 1.pdf", Overlap: 1},
		{Filename: "draft.pdf", Overlap: 0},
	})

	want := "Top candidates:\n" +
		"0- filename: `report 1.pdf` --- (overlap 1)\n" +
		"1- filename: `draft.pdf` --- (overlap 0)"
	assert.Equal(t, want, out)
}
