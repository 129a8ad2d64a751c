package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/gamma-omg/research-mcp/docstore"
	"github.com/gamma-omg/research-mcp/rank"
	"github.com/gamma-omg/research-mcp/workspace"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type docRetriever interface {
	Retrieve(ctx context.Context, query string) ([]docstore.Neighbor, error)
}

// locator answers a free-text query with user-facing ranked text. Every
// failure state resolves to a string; nothing is raised past the tool.
type locator func(ctx context.Context, query string) string

const (
	msgEmptyQuery  = "Query is empty."
	msgNoResources = "No resources available to search."
	msgNoBackend   = "Vector store collection not available. Please check the database path."
	msgNoDocuments = "No relevant documents found in the database."
)

// NewResearchServer builds the MCP server, registers the tool handlers and
// returns the resource registrar that keeps the server's resource list in
// step with the index.
func NewResearchServer(idx *workspace.Index, locate locator, content *ContentReader, log *slog.Logger) (*server.MCPServer, *resourceRegistrar) {
	srv := server.NewMCPServer("research-assistant", "0.1.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, true))

	registerLocateTool(srv, locate)
	registerContentTool(srv, content)

	resources := newResourceRegistrar(srv, idx, log)
	resources.sync()

	return srv, resources
}

func registerLocateTool(srv *server.MCPServer, locate locator) {
	tool := mcp.NewTool("locate_relevant_resources",
		mcp.WithDescription("Locate the workspace documents most relevant to a free-text query"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		))

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(locate(ctx, q)), nil
	})
}

func registerContentTool(srv *server.MCPServer, content *ContentReader) {
	tool := mcp.NewTool("obtain_resource_content",
		mcp.WithDescription("Obtain the text content of a file resource by its path"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path, relative to the workspace root or absolute"),
		))

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, err := request.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(content.Obtain(p)), nil
	})
}

// resourceRegistrar mirrors the index's records into the server's resource
// list. All resources share one read handler that resolves the requested URI
// through the index, so no per-file closures are generated.
type resourceRegistrar struct {
	srv        *server.MCPServer
	idx        *workspace.Index
	log        *slog.Logger
	registered map[string]struct{}
}

func newResourceRegistrar(srv *server.MCPServer, idx *workspace.Index, log *slog.Logger) *resourceRegistrar {
	return &resourceRegistrar{
		srv:        srv,
		idx:        idx,
		log:        log,
		registered: make(map[string]struct{}),
	}
}

// sync registers resources for records new to the current index generation
// and drops the ones whose files are gone. It runs once at startup and again
// after every index rebuild.
func (r *resourceRegistrar) sync() {
	current := make(map[string]struct{}, r.idx.Len())
	for _, rec := range r.idx.All() {
		current[rec.URI] = struct{}{}
		if _, ok := r.registered[rec.URI]; ok {
			continue
		}

		res := mcp.NewResource(rec.URI, rec.Name,
			mcp.WithResourceDescription(path.Base(rec.Name)),
			mcp.WithMIMEType(rec.Mime))
		r.srv.AddResource(res, r.read)
		r.registered[rec.URI] = struct{}{}
	}

	for uri := range r.registered {
		if _, ok := current[uri]; ok {
			continue
		}

		r.srv.RemoveResource(uri)
		delete(r.registered, uri)
	}

	r.log.Info("registered workspace resources", "count", len(r.registered))
}

func (r *resourceRegistrar) read(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	rec, ok := r.idx.Lookup(request.Params.URI)
	if !ok {
		return nil, fmt.Errorf("unknown resource: %s", request.Params.URI)
	}

	buf, err := os.ReadFile(rec.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resource %s: %w", request.Params.URI, err)
	}

	return []mcp.ResourceContents{
		mcp.BlobResourceContents{
			URI:      rec.URI,
			MIMEType: rec.Mime,
			Blob:     base64.StdEncoding.EncodeToString(buf),
		},
	}, nil
}

func lexicalLocator(idx *workspace.Index) locator {
	return func(_ context.Context, query string) string {
		matches, err := rank.Overlap(query, idx)
		switch {
		case errors.Is(err, rank.ErrEmptyQuery):
			return msgEmptyQuery
		case errors.Is(err, rank.ErrNoResources):
			return msgNoResources
		case err != nil:
			return fmt.Sprintf("Error searching resources: %s", err)
		}

		return rank.FormatMatches(matches)
	}
}

func similarityLocator(store docRetriever) locator {
	return func(ctx context.Context, query string) string {
		if strings.TrimSpace(query) == "" {
			return msgEmptyQuery
		}
		if store == nil {
			return msgNoBackend
		}

		neighbors, err := store.Retrieve(ctx, query)
		if err != nil {
			return fmt.Sprintf("Error querying vector store: %s", err)
		}
		if len(neighbors) == 0 {
			return msgNoDocuments
		}

		ranked := make([]rank.Neighbor, len(neighbors))
		for i, n := range neighbors {
			ranked[i] = rank.Neighbor{
				ID:          n.ID,
				Filename:    n.File,
				Distance:    n.Distance,
				HasDistance: n.HasDistance,
			}
		}

		return rank.FormatNeighbors(ranked)
	}
}
