package main

import (
	"context"
	"fmt"
	"hash/crc32"
	"log/slog"

	"github.com/gamma-omg/research-mcp/docstore"
)

type IngestStore interface {
	Injest(ctx context.Context, doc docstore.Doc) error
	Forget(ctx context.Context, doc docstore.InjestedDoc) error
	GetInjested(ctx context.Context) ([]docstore.InjestedDoc, error)
}

type FileReader interface {
	CanRead(path string) bool
	ReadText(path string) (string, error)
}

// DocSync keeps the vector store in step with the workspace: new or changed
// documents get ingested, removed or stale ones forgotten. Change detection
// is a CRC over the extracted text, so touch-only saves do not re-ingest.
type DocSync struct {
	log        *slog.Logger
	store      IngestStore
	chunkifier Chunkifier
	readers    []FileReader
	scan       func() ([]string, error)
}

type DiskDoc struct {
	File string
	Crc  uint32
}

type diskDocs map[string]DiskDoc
type dbDocs map[string]docstore.InjestedDoc

func (ds *DocSync) RegisterReader(readers ...FileReader) {
	ds.readers = append(ds.readers, readers...)
}

func (ds *DocSync) Sync(ctx context.Context) error {
	disk, err := ds.collectDocs()
	if err != nil {
		return err
	}

	diskMap := make(diskDocs)
	for _, d := range disk {
		diskMap[d.File] = d
	}

	db, err := ds.store.GetInjested(ctx)
	if err != nil {
		return err
	}

	dbMap := make(dbDocs)
	for _, d := range db {
		dbMap[d.File] = d
	}

	// Forget first: the store deletes by file path, so a changed document
	// must shed its stale chunks before the new ones go in.
	err = ds.forgetRemovedDocuments(ctx, diskMap, dbMap)
	if err != nil {
		return err
	}

	err = ds.injestNewDocuments(ctx, diskMap, dbMap)
	if err != nil {
		return err
	}

	return nil
}

func (ds *DocSync) collectDocs() ([]DiskDoc, error) {
	paths, err := ds.scan()
	if err != nil {
		return nil, err
	}

	docs := make([]DiskDoc, 0, len(paths))
	for _, path := range paths {
		reader, err := ds.findReader(path)
		if err != nil {
			ds.log.Warn("unsupported file", "path", path)
			continue
		}

		text, err := reader.ReadText(path)
		if err != nil {
			ds.log.Warn("failed to read file", "path", path, "error", err)
			continue
		}

		docs = append(docs, DiskDoc{
			File: path,
			Crc:  crc32.Checksum([]byte(text), crc32.IEEETable),
		})
	}

	return docs, nil
}

func (ds *DocSync) injestNewDocuments(ctx context.Context, disk diskDocs, db dbDocs) error {
	for _, diskDoc := range disk {
		dbDoc, ok := db[diskDoc.File]
		if ok && dbDoc.Crc == diskDoc.Crc {
			continue
		}

		reader, err := ds.findReader(diskDoc.File)
		if err != nil {
			return fmt.Errorf("failed to find reader for document %s: %w", diskDoc.File, err)
		}

		text, err := reader.ReadText(diskDoc.File)
		if err != nil {
			return fmt.Errorf("failed to read document %s: %w", diskDoc.File, err)
		}

		err = ds.store.Injest(ctx, docstore.Doc{
			File:   diskDoc.File,
			Crc:    diskDoc.Crc,
			Chunks: ds.chunkifier.Chunkify(text),
		})
		if err != nil {
			return fmt.Errorf("failed to store document %s: %w", diskDoc.File, err)
		}
	}

	return nil
}

func (ds *DocSync) forgetRemovedDocuments(ctx context.Context, disk diskDocs, db dbDocs) error {
	for _, dbDoc := range db {
		diskDoc, ok := disk[dbDoc.File]
		if ok && diskDoc.Crc == dbDoc.Crc {
			continue
		}

		err := ds.store.Forget(ctx, dbDoc)
		if err != nil {
			return fmt.Errorf("failed to remove document %s from store: %w", dbDoc.File, err)
		}
	}

	return nil
}

func (ds *DocSync) findReader(file string) (FileReader, error) {
	for _, r := range ds.readers {
		if r.CanRead(file) {
			return r, nil
		}
	}

	return nil, fmt.Errorf("unable to find reader for file: %s", file)
}
