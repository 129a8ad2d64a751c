package rank

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoBackend   = errors.New("vector store not available")
	ErrNoNeighbors = errors.New("no relevant documents")
)

// Neighbor is one nearest-neighbor hit from the similarity backend, in the
// order the backend returned it.
type Neighbor struct {
	ID          string
	Filename    string
	Distance    float64
	HasDistance bool
}

// Similarity converts a backend distance into a score. This is the fixed
// linear transform 1-d, not a normalized probability; bounds depend on the
// backend's distance metric.
func Similarity(n Neighbor) float64 {
	if !n.HasDistance {
		return 0.0
	}

	return 1.0 - n.Distance
}

// DisplayName prefers backend filename metadata, falling back to the raw
// document identifier.
func DisplayName(n Neighbor) string {
	if n.Filename != "" {
		return n.Filename
	}

	return n.ID
}

// FormatNeighbors renders the backend's ranked neighbors, capped at
// MaxResults, with 0-based positions and similarity to 3 decimal places.
func FormatNeighbors(neighbors []Neighbor) string {
	if len(neighbors) > MaxResults {
		neighbors = neighbors[:MaxResults]
	}

	lines := make([]string, 0, len(neighbors)+1)
	lines = append(lines, "Top candidates:")
	for i, n := range neighbors {
		lines = append(lines, fmt.Sprintf("%d- filename: `%s` --- (similarity %.3f)", i, DisplayName(n), Similarity(n)))
	}

	return strings.Join(lines, "\n")
}
