package docstore

type Doc struct {
	File   string
	Crc    uint32
	Chunks []string
}

// Neighbor is one nearest-neighbor hit returned by the vector store, with
// the raw distance (0 = identical) when the store reported one.
type Neighbor struct {
	ID          string
	File        string
	Text        string
	Distance    float64
	HasDistance bool
}

type InjestedDoc struct {
	File string
	Crc  uint32
}
