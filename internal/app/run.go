package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/mbedpio/internal/buildconfig"
	"github.com/vk/mbedpio/internal/hostenv"
	"github.com/vk/mbedpio/internal/regions"
)

// Run extracts the configuration and renders the host environment.
func (a *App) Run(ctx context.Context) (*buildconfig.BuildConfiguration, *hostenv.Environment, error) {
	a.logger.Debug("App.Run method started.")

	cfg, err := a.Extract(ctx)
	if err != nil {
		return nil, nil, err
	}
	env, err := a.HostEnv(ctx)
	if err != nil {
		return nil, nil, err
	}

	a.logger.Debug("App.Run method finished.")
	return cfg, env, nil
}

// HostEnv renders the host environment of the extracted configuration.
func (a *App) HostEnv(ctx context.Context) (*hostenv.Environment, error) {
	if a.build == nil {
		return nil, ErrNotExtracted
	}
	return hostenv.Build(a.context(ctx), a.build, hostenv.Options{
		FrameworkDir:  a.config.FrameworkDir,
		BuildDir:      a.config.BuildDir,
		ProjectSrcDir: a.config.ProjectSrcDir,
	})
}

// NeedsMerging reports whether the linked application must be merged with
// other regions.
func (a *App) NeedsMerging() bool {
	return a.build != nil && a.build.HasRegions()
}

// HasTargetHook reports whether the target post-processes its firmware.
func (a *App) HasTargetHook() bool {
	return a.build != nil && a.build.Hook != nil
}

// MergeApps merges the linked application app into firmware. Relative
// region files are taken from the framework.
func (a *App) MergeApps(ctx context.Context, app, firmware string) (*regions.MergeResult, error) {
	if a.build == nil {
		return nil, ErrNotExtracted
	}
	list := make([]regions.Region, len(a.build.Regions))
	for i, r := range a.build.Regions {
		if r.Filename != "" && !filepath.IsAbs(r.Filename) {
			r.Filename = filepath.Join(a.config.FrameworkDir, r.Filename)
		}
		list[i] = r
	}
	return regions.MergeApps(a.context(ctx), list, app, firmware, a.config.BuildDir, regions.MergeOptions{
		Target:               a.config.Target,
		RestrictSize:         a.build.RestrictSize,
		RestrictInactiveOnly: a.config.RestrictInactiveOnly,
		UpdateExt:            a.build.OutputExtUpdate,
	})
}

// ApplyHook runs the target's post-binary hook on firmware.
func (a *App) ApplyHook(ctx context.Context, elfPath, firmware string) error {
	if a.build == nil {
		return ErrNotExtracted
	}
	if a.build.Hook == nil {
		return nil
	}
	if err := a.build.Hook(a.context(ctx), a.build.Regions, elfPath, firmware); err != nil {
		return fmt.Errorf("post-binary hook %s failed: %w", a.build.PostBinaryHook, err)
	}
	return nil
}

// Finalize runs the post-link steps: the region merge when the target has
// regions, then the hook on <progname>.hex in the build dir, converted from
// app when the merge produced no hex image.
func (a *App) Finalize(ctx context.Context, elfPath, app, firmware string) error {
	if a.NeedsMerging() {
		if _, err := a.MergeApps(ctx, app, firmware); err != nil {
			return err
		}
	}
	if !a.HasTargetHook() {
		return nil
	}

	prog := strings.TrimSuffix(filepath.Base(elfPath), filepath.Ext(elfPath))
	hexPath := filepath.Join(a.config.BuildDir, prog+".hex")
	if _, err := os.Stat(hexPath); err != nil {
		img, err := regions.LoadFile(app, 0)
		if err != nil {
			return err
		}
		if err := regions.WriteFile(hexPath, img); err != nil {
			return err
		}
	}
	return a.ApplyHook(ctx, elfPath, hexPath)
}
