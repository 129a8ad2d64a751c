// Package rank scores indexed resources against free-text queries and
// renders ranked candidate lists.
package rank

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/gamma-omg/research-mcp/workspace"
)

// MaxResults caps every ranked list returned to the caller.
const MaxResults = 10

var (
	ErrEmptyQuery  = errors.New("query is empty")
	ErrNoResources = errors.New("no resources available")
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Tokenize lower-cases text and collects maximal alphanumeric runs into a
// set. Duplicates collapse; order is irrelevant.
func Tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, t := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		tokens[t] = struct{}{}
	}

	return tokens
}

// Match is one ranked lexical candidate.
type Match struct {
	URI      string
	Filename string
	Overlap  int
}

// Overlap ranks every indexed record by the token overlap between the query
// and the record's basename. Zero-overlap records stay in the list. The sort
// key (-overlap, -modtime, len(filename), uri) is a strict total order, so
// the result is deterministic for a fixed index.
func Overlap(query string, idx *workspace.Index) ([]Match, error) {
	qTokens := Tokenize(query)
	if len(qTokens) == 0 {
		return nil, ErrEmptyQuery
	}

	if idx.Len() == 0 {
		return nil, ErrNoResources
	}

	type candidate struct {
		match   Match
		modTime int64
	}

	records := idx.All()
	candidates := make([]candidate, 0, len(records))
	for _, r := range records {
		filename := path.Base(r.Name)
		overlap := 0
		for t := range Tokenize(filename) {
			if _, ok := qTokens[t]; ok {
				overlap++
			}
		}

		candidates = append(candidates, candidate{
			match:   Match{URI: r.URI, Filename: filename, Overlap: overlap},
			modTime: r.ModTime,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.match.Overlap != b.match.Overlap {
			return a.match.Overlap > b.match.Overlap
		}
		if a.modTime != b.modTime {
			return a.modTime > b.modTime
		}
		if len(a.match.Filename) != len(b.match.Filename) {
			return len(a.match.Filename) < len(b.match.Filename)
		}
		return a.match.URI < b.match.URI
	})

	if len(candidates) > MaxResults {
		candidates = candidates[:MaxResults]
	}

	matches := make([]Match, len(candidates))
	for i, c := range candidates {
		matches[i] = c.match
	}

	return matches, nil
}

// FormatMatches renders the ranked list with 0-based positions.
func FormatMatches(matches []Match) string {
	lines := make([]string, 0, len(matches)+1)
	lines = append(lines, "Top candidates:")
	for i, m := range matches {
		lines = append(lines, fmt.Sprintf("%d- filename: `%s` --- (overlap %d)", i, m.Filename, m.Overlap))
	}

	return strings.Join(lines, "\n")
}
