package app

import (
	"errors"
	"fmt"

	"github.com/vk/mbedpio/internal/profile"
)

// Config holds everything an App needs for one build.
type Config struct {
	FrameworkDir string
	ProjectDir   string
	BuildDir     string
	// ProjectSrcDir is added to the host include path when set.
	ProjectSrcDir string

	Target string
	// Roots default to the framework's source folders.
	Roots []string
	// Profile defaults to the one selected by Defines.
	Profile    string
	Toolchain  string
	IgnoreDirs []string
	// Defines are the project's own preprocessor definitions.
	Defines []string
	// CPP preprocesses the linker script. When empty it is derived from
	// GDB, and preprocessing is skipped when both are empty.
	CPP string
	GDB string
	// RestrictInactiveOnly applies the target's size restriction to merges
	// without an active region.
	RestrictInactiveOnly bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.FrameworkDir == "" {
		return nil, errors.New("FrameworkDir is a required configuration field and cannot be empty")
	}
	if cfg.BuildDir == "" {
		return nil, errors.New("BuildDir is a required configuration field and cannot be empty")
	}
	if cfg.Target == "" {
		return nil, errors.New("Target is a required configuration field and cannot be empty")
	}
	if cfg.Profile != "" {
		name, err := profile.ParseName(cfg.Profile)
		if err != nil {
			return nil, err
		}
		cfg.Profile = string(name)
	}
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}
	return &cfg, nil
}
