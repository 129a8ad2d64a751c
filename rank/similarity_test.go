package rank

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Similarity(t *testing.T) {
	assert.InDelta(t, 0.9, Similarity(Neighbor{Distance: 0.1, HasDistance: true}), 1e-9)
	assert.InDelta(t, 0.6, Similarity(Neighbor{Distance: 0.4, HasDistance: true}), 1e-9)
	assert.Equal(t, 0.0, Similarity(Neighbor{}))
}

func Test_DisplayName(t *testing.T) {
	assert.Equal(t, "paper.pdf", DisplayName(Neighbor{ID: "chunk-1", Filename: "paper.pdf"}))
	assert.Equal(t, "chunk-1", DisplayName(Neighbor{ID: "chunk-1"}))
}

func Test_FormatNeighbors(t *testing.T) {
	out := FormatNeighbors([]Neighbor{
		{ID: "id-1", Filename: "close.pdf", Distance: 0.1, HasDistance: true},
		{ID: "id-2", Filename: "far.pdf", Distance: 0.4, HasDistance: true},
		{ID: "id-3"},
	})

	want := "Top candidates:\n" +
		"0- filename: `close.pdf` --- (similarity 0.900)\n" +
		"1- filename: `far.pdf` --- (similarity 0.600)\n" +
		"2- filename: `id-3` --- (similarity 0.000)"
	assert.Equal(t, want, out)
}

func Test_FormatNeighbors_CapsAtMaxResults(t *testing.T) {
	neighbors := make([]Neighbor, MaxResults+3)
	for i := range neighbors {
		neighbors[i] = Neighbor{ID: "n", Distance: 0.5, HasDistance: true}
	}

	out := FormatNeighbors(neighbors)
	assert.Len(t, strings.Split(out, "\n"), MaxResults+1)
}
