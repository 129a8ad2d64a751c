package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	gemini "github.com/amikos-tech/chroma-go/pkg/embeddings/gemini"
	openai "github.com/amikos-tech/chroma-go/pkg/embeddings/openai"
	"github.com/gamma-omg/research-mcp/docstore"
	"github.com/gamma-omg/research-mcp/readers"
	"github.com/gamma-omg/research-mcp/workspace"
	"github.com/mark3labs/mcp-go/server"
)

func createEmbeddingFunction(cfg *Config) (embeddings.EmbeddingFunction, error) {
	if cfg.OpenAI != nil {
		ef, err := openai.NewOpenAIEmbeddingFunction(
			cfg.OpenAI.ApiKey,
			openai.WithModel(openai.EmbeddingModel(cfg.OpenAI.Model)))
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI embedding function: %w", err)
		}

		return ef, nil
	}

	if cfg.Gemini != nil {
		ef, err := gemini.NewGeminiEmbeddingFunction(
			gemini.WithAPIKey(cfg.Gemini.ApiKey),
			gemini.WithDefaultModel(embeddings.EmbeddingModel(cfg.Gemini.Model)))
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini embedding function: %w", err)
		}

		return ef, nil
	}

	return nil, errors.New("invalid embeddings provider configuration")
}

func initDocStore(cfg *Config, reset bool) (*docstore.ChromaStore, error) {
	ef, err := createEmbeddingFunction(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding function: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := docstore.NewChromaStore(ctx, docstore.ChromaStoreConfig{
		BaseURL:       cfg.ChromaAddr,
		Collection:    cfg.Collection,
		EmbeddingFunc: ef,
		Results:       cfg.Results,
		RequestSize:   cfg.RequestSize,
		Reset:         reset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Chroma doc store: %w", err)
	}

	return store, nil
}

func newLogger(cfg *Config) (*slog.Logger, io.Closer, error) {
	if cfg.LogFile == "" {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), nil, nil
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return slog.New(slog.NewJSONHandler(logFile, nil)), logFile, nil
}

func main() {
	reset := flag.Bool("reset", false, "Reinitialize the vector store collection from scratch if set")
	cfgPath := flag.String("config", "cfg/config.yaml", "Configuration file for the MCP server")
	flag.Parse()

	cfg, err := readConfig(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, logCloser, err := newLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	scanOpts := workspace.ScanOptions{
		IncludeGlobs:   cfg.IncludeGlobs,
		IgnoreDirs:     cfg.IgnoreDirs,
		FollowSymlinks: cfg.FollowSymlinks,
		MaxBytes:       cfg.MaxFileBytes,
	}
	scan := func() ([]string, error) {
		return workspace.Scan(cfg.WorkspaceRoot, scanOpts, logger)
	}

	// An unusable workspace root is the one fatal condition after startup
	// parsing; everything later degrades per file.
	paths, err := scan()
	if err != nil {
		log.Fatal(err)
	}

	idx := workspace.NewIndex(logger)
	if err := idx.Rebuild(cfg.WorkspaceRoot, paths); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var locate locator
	var sync *DocSync
	if cfg.Search == searchSimilarity {
		store, err := initDocStore(cfg, *reset)
		if err != nil {
			// The tool stays registered and reports the backend as
			// unavailable until the process restarts.
			logger.Error("vector store unavailable", "error", err)
			locate = similarityLocator(nil)
		} else {
			locate = similarityLocator(store)
			sync = &DocSync{
				log:   logger,
				store: store,
				chunkifier: &DefaultChunkfier{
					chunkSize:    cfg.ChunkSize,
					chunkOverlap: cfg.ChunkOverlap,
				},
				scan: scan,
			}
			sync.RegisterReader(&readers.TxtFileReader{}, &readers.UniversalFileReader{})

			go func() {
				if err := sync.Sync(ctx); err != nil {
					logger.Error("initial document sync failed", "error", err)
				}
			}()
		}
	} else {
		locate = lexicalLocator(idx)
	}

	content := &ContentReader{
		root:  idx.Root(),
		limit: cfg.LimitText,
		pdf:   &readers.PdfFileReader{},
	}

	srv, resources := NewResearchServer(idx, locate, content, logger)

	watcher := &Watcher{
		log:      logger,
		root:     idx.Root(),
		debounce: time.Duration(cfg.MergeEventsMs) * time.Millisecond,
		refresh: func(ctx context.Context) error {
			paths, err := scan()
			if err != nil {
				return err
			}
			if err := idx.Rebuild(cfg.WorkspaceRoot, paths); err != nil {
				return err
			}
			resources.sync()
			if sync != nil {
				return sync.Sync(ctx)
			}
			return nil
		},
	}
	if err := watcher.Watch(ctx); err != nil {
		logger.Warn("workspace watching disabled", "error", err)
	}

	if cfg.ServerAddr != "" {
		sse := server.NewSSEServer(srv, server.WithBaseURL(fmt.Sprintf("http://%s", cfg.ServerAddr)))
		log.Println(sse.Start(cfg.ServerAddr))
		return
	}

	if err := server.ServeStdio(srv); err != nil {
		log.Fatal(err)
	}
}
