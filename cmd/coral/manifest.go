package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"coral/internal/compiler"
	"coral/internal/types"
)

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Package packageConfig `toml:"package"`
	Build   buildConfig   `toml:"build"`
}

type packageConfig struct {
	Name string `toml:"name"`
}

type buildConfig struct {
	Target        string `toml:"target"`
	NoTreeShaking bool   `toml:"no_tree_shaking"`
	NoAssert      bool   `toml:"no_assert"`
	NoMemory      bool   `toml:"no_memory"`
	ImportMemory  bool   `toml:"import_memory"`
	MemoryBase    uint32 `toml:"memory_base"`
	AllocateImpl  string `toml:"allocate_impl"`
	FreeImpl      string `toml:"free_impl"`
	SourceMap     bool   `toml:"source_map"`
}

// findCoralToml walks up from startDir looking for a coral.toml.
func findCoralToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "coral.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadProjectManifest loads the nearest manifest, when one exists.
func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findCoralToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	var cfg projectConfig
	if _, err := toml.DecodeFile(manifestPath, &cfg); err != nil {
		return nil, true, fmt.Errorf("failed to parse %q: %w", manifestPath, err)
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// options maps the manifest build section onto compiler options.
func (m *projectManifest) options() (compiler.Options, error) {
	opts := compiler.Defaults()
	if m == nil {
		return opts, nil
	}
	cfg := m.Config.Build
	switch cfg.Target {
	case "", "wasm32":
	case "wasm64":
		opts.Target = types.WASM64
	default:
		return opts, fmt.Errorf("unknown target %q in %s", cfg.Target, m.Path)
	}
	opts.NoTreeShaking = cfg.NoTreeShaking
	opts.NoAssert = cfg.NoAssert
	opts.NoMemory = cfg.NoMemory
	opts.ImportMemory = cfg.ImportMemory
	opts.MemoryBase = cfg.MemoryBase
	if cfg.AllocateImpl != "" {
		opts.AllocateImpl = cfg.AllocateImpl
	}
	if cfg.FreeImpl != "" {
		opts.FreeImpl = cfg.FreeImpl
	}
	opts.SourceMap = cfg.SourceMap
	return opts, nil
}
