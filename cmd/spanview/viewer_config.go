package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// viewerConfig is the optional viewer.toml, discovered upward from the
// working directory. Every field has a usable default; flags override
// whatever the file sets.
type viewerConfig struct {
	Viewer viewerSection `toml:"viewer"`
}

type viewerSection struct {
	MinSpanWidth int  `toml:"min_span_width"`
	BarWidth     int  `toml:"bar_width"`
	ExpandAll    bool `toml:"expand_all"`
}

func defaultViewerConfig() viewerConfig {
	return viewerConfig{
		Viewer: viewerSection{
			MinSpanWidth: 1,
			BarWidth:     40,
		},
	}
}

func findViewerToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "viewer.toml")
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

// loadViewerConfig returns the discovered configuration, or defaults
// when no viewer.toml exists between the working directory and root.
func loadViewerConfig(startDir string) (viewerConfig, error) {
	cfg := defaultViewerConfig()

	path, ok, err := findViewerToml(startDir)
	if err != nil || !ok {
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if cfg.Viewer.MinSpanWidth < 1 {
		cfg.Viewer.MinSpanWidth = 1
	}
	if cfg.Viewer.BarWidth < 1 {
		cfg.Viewer.BarWidth = defaultViewerConfig().Viewer.BarWidth
	}
	return cfg, nil
}
