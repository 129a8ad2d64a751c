package workspace

import (
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	URIScheme   = "workspace://"
	defaultMime = "application/pdf"
)

// ResourceRecord describes one indexed file. Name is the root-relative
// slash path and doubles as the display name, so files with identical
// basenames stay distinguishable.
type ResourceRecord struct {
	URI     string
	Name    string
	Path    string
	Size    int64
	ModTime int64
	Mime    string
}

// Index maps resource URIs to records for one workspace generation. It is
// owned by the caller and rebuilt wholesale; there is no incremental diffing
// and no persistence.
type Index struct {
	log     *slog.Logger
	root    string
	records map[string]*ResourceRecord
	uris    []string
}

func NewIndex(log *slog.Logger) *Index {
	return &Index{
		log:     log,
		records: make(map[string]*ResourceRecord),
	}
}

// Rebuild discards every existing entry and repopulates the index from the
// scanned paths. Files that fail to stat are skipped, never fatal.
func (idx *Index) Rebuild(root string, paths []string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBadRoot, root)
	}

	idx.root = abs
	idx.records = make(map[string]*ResourceRecord, len(paths))
	idx.uris = idx.uris[:0]

	for _, p := range paths {
		rel, err := filepath.Rel(abs, p)
		if err != nil {
			idx.log.Warn("skipping file outside workspace", "path", p)
			continue
		}

		info, err := os.Stat(p)
		if err != nil {
			idx.log.Warn("skipping unreadable file", "path", p, "error", err)
			continue
		}

		name := filepath.ToSlash(rel)
		uri := BuildURI(name)
		idx.records[uri] = &ResourceRecord{
			URI:     uri,
			Name:    name,
			Path:    p,
			Size:    info.Size(),
			ModTime: info.ModTime().Unix(),
			Mime:    guessMime(name),
		}
		idx.uris = append(idx.uris, uri)
	}

	sort.Strings(idx.uris)
	return nil
}

func (idx *Index) Lookup(uri string) (*ResourceRecord, bool) {
	r, ok := idx.records[uri]
	return r, ok
}

// All returns the records in lexicographic URI order.
func (idx *Index) All() []*ResourceRecord {
	res := make([]*ResourceRecord, 0, len(idx.uris))
	for _, uri := range idx.uris {
		res = append(res, idx.records[uri])
	}

	return res
}

func (idx *Index) Len() int {
	return len(idx.records)
}

func (idx *Index) Root() string {
	return idx.root
}

// BuildURI turns a root-relative slash path into a workspace URI,
// percent-encoding everything unsafe while keeping / as a separator.
//
//	docs/report 1.pdf -> workspace://docs/report%201.pdf
func BuildURI(rel string) string {
	segs := strings.Split(rel, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}

	return URIScheme + strings.Join(segs, "/")
}

// ResolveURI decodes a workspace URI back to an absolute path under root.
func ResolveURI(root, uri string) (string, error) {
	enc, ok := strings.CutPrefix(uri, URIScheme)
	if !ok {
		return "", fmt.Errorf("not a workspace uri: %s", uri)
	}

	segs := strings.Split(enc, "/")
	for i, s := range segs {
		dec, err := url.PathUnescape(s)
		if err != nil {
			return "", fmt.Errorf("malformed uri %s: %w", uri, err)
		}
		segs[i] = dec
	}

	return filepath.Join(root, filepath.FromSlash(strings.Join(segs, "/"))), nil
}

func guessMime(name string) string {
	m := mime.TypeByExtension(filepath.Ext(name))
	if m == "" {
		return defaultMime
	}

	return m
}
