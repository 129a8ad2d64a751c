package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	searchLexical    = "lexical"
	searchSimilarity = "similarity"
)

type Config struct {
	LogFile        string   `yaml:"log"`
	WorkspaceRoot  string   `yaml:"workspace_root"`
	IncludeGlobs   []string `yaml:"include_globs"`
	IgnoreDirs     []string `yaml:"ignore_dirs"`
	FollowSymlinks bool     `yaml:"follow_symlinks"`
	MaxFileBytes   int64    `yaml:"max_file_bytes"`
	LimitText      int      `yaml:"limit_text"`
	Search         string   `yaml:"search"`
	Results        int      `yaml:"results"`
	ServerAddr     string   `yaml:"server_addr"`
	MergeEventsMs  int      `yaml:"write_debounce_ms"`
	ChunkSize      int      `yaml:"chunk_size"`
	ChunkOverlap   int      `yaml:"chunk_overlap"`
	RequestSize    int      `yaml:"request_size"`
	ChromaAddr     string   `yaml:"chroma_addr"`
	Collection     string   `yaml:"collection"`
	OpenAI         *struct {
		Model  string `yaml:"model"`
		ApiKey string `yaml:"api_key"`
	} `yaml:"open_ai"`
	Gemini *struct {
		Model  string `yaml:"model"`
		ApiKey string `yaml:"api_key"`
	}
}

func readConfig(cfgPath string) (*Config, error) {
	cfgFile, err := os.Open(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open config file: %w", err)
	}
	defer cfgFile.Close()

	cfg := &Config{}
	dec := yaml.NewDecoder(cfgFile)
	err = dec.Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	applyDefaults(cfg)
	if cfg.Search != searchLexical && cfg.Search != searchSimilarity {
		return nil, fmt.Errorf("unknown search mode: %s", cfg.Search)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.IncludeGlobs) == 0 {
		cfg.IncludeGlobs = []string{"**/*.pdf"}
	}
	if len(cfg.IgnoreDirs) == 0 {
		cfg.IgnoreDirs = []string{".git", ".svn", "__pycache__"}
	}
	if cfg.Search == "" {
		cfg.Search = searchLexical
	}
	if cfg.Results <= 0 {
		cfg.Results = 10
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 2000
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = 0
	}
}
