package config

import "context"

// Loader is the interface for a format-specific metadata loader.
type Loader interface {
	// LoadTargets reads every target definition found under paths (files
	// or directories) into one name-keyed map.
	LoadTargets(ctx context.Context, paths ...string) (map[string]*Target, error)

	// LoadProfile reads one build profile file.
	LoadProfile(ctx context.Context, path string) (*Profile, error)

	// LoadOverlay reads an application overlay file.
	LoadOverlay(ctx context.Context, path string) (*Overlay, error)
}
