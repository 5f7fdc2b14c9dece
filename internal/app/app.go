package app

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/vk/mbedpio/internal/buildconfig"
	"github.com/vk/mbedpio/internal/ctxlog"
	"github.com/vk/mbedpio/internal/profile"
)

// ErrNotExtracted is returned by steps that need a configuration before
// Extract has succeeded.
var ErrNotExtracted = errors.New("build configuration not extracted yet")

// App encapsulates one build's configuration, logger and results.
type App struct {
	logger    *slog.Logger
	config    *Config
	extractor *buildconfig.Extractor
	build     *buildconfig.BuildConfiguration
}

// NewApp returns an App logging to outW.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := NewLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	ext := buildconfig.NewExtractor(cfg.FrameworkDir, cfg.ProjectDir, cfg.BuildDir)
	if cfg.Toolchain != "" {
		ext.Toolchain = cfg.Toolchain
	}
	ext.IgnoreDirs = cfg.IgnoreDirs
	ext.Defines = cfg.Defines
	cpp := cfg.CPP
	if cpp == "" && cfg.GDB != "" {
		cpp = buildconfig.CPPFromGDB(cfg.GDB)
	}
	if cpp != "" {
		ext.Preprocessor = buildconfig.NewPreprocessor(cpp)
	}

	return &App{
		logger:    logger,
		config:    cfg,
		extractor: ext,
	}
}

// Extractor exposes the extractor so callers (and tests) can swap its
// loader or inspector before the first Extract.
func (a *App) Extractor() *buildconfig.Extractor { return a.extractor }

// Configuration returns the extracted configuration, or nil.
func (a *App) Configuration() *buildconfig.BuildConfiguration { return a.build }

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger.With("target", a.config.Target))
}

// Extract runs configuration extraction and keeps the result.
func (a *App) Extract(ctx context.Context) (*buildconfig.BuildConfiguration, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	cfg, err := a.extractor.Extract(ctx, buildconfig.Request{
		Target:  a.config.Target,
		Roots:   a.config.Roots,
		Profile: profile.Name(a.config.Profile),
	})
	if err != nil {
		return nil, err
	}
	a.build = cfg
	return cfg, nil
}
