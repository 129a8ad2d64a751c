package docstore

import (
	"context"
	"errors"
	"fmt"
	"path"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
)

const (
	FilePath = "file_path"
	FileName = "filename"
	FileCrc  = "file_crc"
)

type ChromaStoreConfig struct {
	BaseURL       string
	Collection    string // empty selects the first collection found
	EmbeddingFunc embeddings.EmbeddingFunction
	Results       int
	RequestSize   int
	Reset         bool
}

type ChromaStore struct {
	results     int
	requestSize int
	col         chroma.Collection
}

// NewChromaStore connects to a Chroma server and binds the configured
// collection, or the first listed one when no name is given. The connection
// is made once; a failure here leaves similarity search unavailable for the
// process lifetime.
func NewChromaStore(ctx context.Context, cfg ChromaStoreConfig) (*ChromaStore, error) {
	client, err := chroma.NewHTTPClient(chroma.WithBaseURL(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}

	name := cfg.Collection
	if name == "" {
		cols, err := client.ListCollections(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list collections: %w", err)
		}
		if len(cols) == 0 && !cfg.Reset {
			return nil, errors.New("no collections found in the vector store")
		}
		if len(cols) > 0 {
			name = cols[0].Name()
		} else {
			name = "documents"
		}
	}

	if cfg.Reset {
		// The collection may not exist yet, which is fine.
		_ = client.DeleteCollection(ctx, name)
	}

	col, err := client.GetOrCreateCollection(ctx, name,
		chroma.WithEmbeddingFunctionCreate(cfg.EmbeddingFunc))
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", name, err)
	}

	return &ChromaStore{
		results:     cfg.Results,
		requestSize: cfg.RequestSize,
		col:         col,
	}, nil
}

// Injest adds a document's chunks in buckets that stay within the configured
// request size, so oversized documents do not blow a single Add call.
func (ds *ChromaStore) Injest(ctx context.Context, doc Doc) error {
	for _, bucket := range ds.buckets(doc.Chunks) {
		metadatas := make([]chroma.DocumentMetadata, len(bucket))
		for i := range bucket {
			metadatas[i] = chroma.NewDocumentMetadata(
				chroma.NewStringAttribute(FilePath, doc.File),
				chroma.NewStringAttribute(FileName, path.Base(doc.File)),
				chroma.NewIntAttribute(FileCrc, int64(doc.Crc)),
			)
		}

		err := ds.col.Add(ctx,
			chroma.WithTexts(bucket...),
			chroma.WithIDGenerator(chroma.NewULIDGenerator()),
			chroma.WithMetadatas(metadatas...),
		)
		if err != nil {
			return fmt.Errorf("failed to add chunks for %s: %w", doc.File, err)
		}
	}

	return nil
}

func (ds *ChromaStore) buckets(chunks []string) [][]string {
	if ds.requestSize <= 0 {
		return [][]string{chunks}
	}

	var out [][]string
	var cur []string
	size := 0
	for _, c := range chunks {
		if len(cur) > 0 && size+len(c) > ds.requestSize {
			out = append(out, cur)
			cur = nil
			size = 0
		}

		cur = append(cur, c)
		size += len(c)
	}

	if len(cur) > 0 {
		out = append(out, cur)
	}

	return out
}

// Retrieve returns up to the configured number of nearest neighbors for the
// query, preserving the store's ordering.
func (ds *ChromaStore) Retrieve(ctx context.Context, query string) ([]Neighbor, error) {
	r, err := ds.col.Query(ctx,
		chroma.WithQueryTexts(query),
		chroma.WithNResults(ds.results),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve texts: %w", err)
	}

	docGroups := r.GetDocumentsGroups()
	if len(docGroups) == 0 {
		return nil, nil
	}

	docs := docGroups[0]
	ids := firstGroup(r.GetIDGroups())
	metadatas := firstGroup(r.GetMetadatasGroups())
	distances := firstGroup(r.GetDistancesGroups())

	res := make([]Neighbor, 0, len(docs))
	for i := range len(docs) {
		n := Neighbor{Text: docs[i].ContentString()}
		if i < len(ids) {
			n.ID = string(ids[i])
		}
		if i < len(metadatas) {
			n.File, _ = metadatas[i].GetString(FileName)
		}
		if i < len(distances) {
			n.Distance = float64(distances[i])
			n.HasDistance = true
		}

		res = append(res, n)
	}

	return res, nil
}

func firstGroup[T any](groups []T) T {
	if len(groups) == 0 {
		var zero T
		return zero
	}

	return groups[0]
}

func (ds *ChromaStore) Forget(ctx context.Context, doc InjestedDoc) error {
	err := ds.col.Delete(ctx, chroma.WithWhereDelete(chroma.EqString(FilePath, doc.File)))
	if err != nil {
		return fmt.Errorf("failed to forget doc %s: %w", doc.File, err)
	}

	return nil
}

func (ds *ChromaStore) GetInjested(ctx context.Context) ([]InjestedDoc, error) {
	res, err := ds.col.Get(ctx)
	if err != nil {
		return nil, err
	}

	return injestedDocs(res.GetMetadatas()), nil
}

// injestedDocs decodes one record per distinct path/CRC pair. The CRC is
// stored as an int attribute; a record whose CRC is missing or mistyped
// decodes as zero, which reads as changed and gets the document re-ingested
// on the next sync.
func injestedDocs(metadata []chroma.DocumentMetadata) []InjestedDoc {
	var docs []InjestedDoc
	seen := make(map[InjestedDoc]struct{})

	for _, meta := range metadata {
		path, _ := meta.GetString(FilePath)
		crc, _ := meta.GetInt(FileCrc)
		doc := InjestedDoc{
			File: path,
			Crc:  uint32(crc),
		}

		if _, ok := seen[doc]; ok {
			continue
		}

		seen[doc] = struct{}{}
		docs = append(docs, doc)
	}

	return docs
}
