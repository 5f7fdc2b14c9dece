package buildconfig

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/mbedpio/internal/builderr"
	"github.com/vk/mbedpio/internal/classify"
	"github.com/vk/mbedpio/internal/config"
	"github.com/vk/mbedpio/internal/ctxlog"
	"github.com/vk/mbedpio/internal/flags"
	"github.com/vk/mbedpio/internal/fsutil"
	"github.com/vk/mbedpio/internal/hcl"
	"github.com/vk/mbedpio/internal/ignore"
	"github.com/vk/mbedpio/internal/inspect"
	"github.com/vk/mbedpio/internal/profile"
	"github.com/vk/mbedpio/internal/regions"
	"github.com/vk/mbedpio/internal/targets"
)

// SourceFolders are the framework directories scanned when a request names
// no roots.
var SourceFolders = []string{
	"cmsis", "connectivity", "drivers", "events", "features",
	"hal", "platform", "rtos", "storage", "targets",
}

// OverlayFile is the application overlay looked up in the project dir.
const OverlayFile = "mbed_app"

// Extractor runs configuration extraction against one framework checkout.
type Extractor struct {
	// FrameworkDir is the root of the framework package.
	FrameworkDir string
	// ProjectDir holds the application overlay and the ignore file.
	ProjectDir string
	// BuildDir receives generated files.
	BuildDir string
	// Toolchain defaults to GCC_ARM.
	Toolchain string
	// TargetFiles are the metadata files; defaults to targets/targets.hcl
	// (or .json) below the framework.
	TargetFiles []string
	// IgnoreDirs are directory names pruned everywhere.
	IgnoreDirs []string
	// Defines are the project's own definitions, checked for deprecated
	// options and used to pick the profile when a request names none.
	Defines []string

	Loader    config.Loader
	Inspector inspect.Inspector
	// Preprocessor expands the linker script. Nil leaves it untouched.
	Preprocessor *Preprocessor
}

// NewExtractor returns an Extractor with the HCL loader and the native
// inspector.
func NewExtractor(frameworkDir, projectDir, buildDir string) *Extractor {
	return &Extractor{
		FrameworkDir: frameworkDir,
		ProjectDir:   projectDir,
		BuildDir:     buildDir,
		Toolchain:    inspect.DefaultToolchain,
		Loader:       hcl.NewLoader(),
		Inspector:    inspect.NewNative(),
	}
}

// Request selects what to extract.
type Request struct {
	Target string
	// Roots default to SourceFolders below the framework.
	Roots []string
	// OverlayPath defaults to mbed_app.hcl or mbed_app.json in the
	// project dir. An absent file is not an error.
	OverlayPath string
	// Profile defaults to the one selected by the project defines.
	Profile profile.Name
}

// Extract produces the BuildConfiguration of req. No partial result is
// returned on error.
func (e *Extractor) Extract(ctx context.Context, req Request) (*BuildConfiguration, error) {
	ctx = ctxlog.With(ctx, "target", req.Target)
	logger := ctxlog.FromContext(ctx)
	logger.Info("Collecting framework sources.")

	WarnDeprecated(ctx, e.Defines)

	resolved, err := e.resolveTarget(ctx, req.Target)
	if err != nil {
		return nil, err
	}

	overlay, err := e.loadOverlay(ctx, req.OverlayPath)
	if err != nil {
		return nil, builderr.Config(req.Target, builderr.StageOverlay, err)
	}
	resolved = resolved.ApplyOverrides(overlay.OverridesFor(req.Target))

	profName := req.Profile
	if profName == "" {
		profName = profile.FromDefines(e.Defines)
	}
	prof, err := profile.Load(ctx, e.Loader, e.FrameworkDir, profName)
	if err != nil {
		return nil, builderr.Config(req.Target, builderr.StageProfile, err)
	}

	matcher := &ignore.Matcher{}
	if e.ProjectDir != "" {
		matcher, err = ignore.Load(ctx, filepath.Join(e.ProjectDir, ignore.FileName))
		if err != nil {
			return nil, builderr.Config(req.Target, builderr.StageClassify, err)
		}
	}

	roots := req.Roots
	if len(roots) == 0 {
		for _, f := range SourceFolders {
			if p := filepath.Join(e.FrameworkDir, f); fsutil.IsDir(p) {
				roots = append(roots, p)
			}
		}
	}

	rep, err := e.Inspector.Inspect(ctx, inspect.Request{
		Target:     resolved,
		Toolchain:  e.toolchain(),
		Roots:      roots,
		Overlay:    overlay,
		Profile:    prof,
		IgnoreDirs: e.IgnoreDirs,
		Ignore:     matcher,
		Base:       e.FrameworkDir,
	})
	if err != nil {
		return nil, builderr.Config(req.Target, builderr.StageInspect, err)
	}

	var hook regions.Hook
	if resolved.PostBinaryHook != "" {
		hook, err = regions.LookupHook(resolved.PostBinaryHook)
		if err != nil {
			return nil, builderr.Config(req.Target, builderr.StageHook, err)
		}
	}

	bundle := flags.NewBundle(rep.Flags).Sorted()
	cfg := &BuildConfiguration{
		Target:          req.Target,
		Profile:         string(profName),
		Toolchain:       e.toolchain(),
		IncludeDirs:     FixPaths(e.FrameworkDir, rep.IncludeDirs),
		Objects:         FixPaths(e.FrameworkDir, rep.Objects),
		Flags:           make(map[string][]string, len(flags.Roles)),
		SysLibs:         append([]string(nil), SysLibs...),
		Symbols:         NormalizeSymbols(append(append([]string(nil), rep.Symbols...), bundle.DefinitionStrings()...)),
		HexFiles:        FixPaths(e.FrameworkDir, rep.HexFiles),
		BinFiles:        FixPaths(e.FrameworkDir, rep.BinFiles),
		Regions:         append([]regions.Region(nil), resolved.Regions...),
		RestrictSize:    resolved.RestrictSize,
		PostBinaryHook:  resolved.PostBinaryHook,
		OutputExtUpdate: strings.TrimPrefix(resolved.OutputExtUpdate, "."),
		Bundle:          bundle,
		Hook:            hook,
	}
	if cfg.OutputExtUpdate == "" {
		cfg.OutputExtUpdate = regions.DefaultUpdateExt
	}
	for _, role := range flags.Roles {
		cfg.Flags[string(role)] = append([]string{}, bundle.Flags[role]...)
	}

	cfg.Sources, err = e.filterSources(ctx, matcher, rep)
	if err != nil {
		return nil, builderr.Config(req.Target, builderr.StageClassify, err)
	}

	var libDirs []string
	for _, lib := range rep.Libraries {
		cfg.Libraries = append(cfg.Libraries, filepath.Base(lib))
		libDirs = append(libDirs, filepath.Dir(lib))
	}
	cfg.LibDirs = flags.Unique(FixPaths(e.FrameworkDir, libDirs))

	if resolved.AuxBinary != nil {
		cfg.AuxBinary = e.findAuxBinary(ctx, rep.Dirs, resolved.AuxBinary.Name)
	}

	cfg.LinkerScript, err = e.linkerScript(ctx, rep.LinkerScript, cfg.RoleFlags(flags.Linker))
	if err != nil {
		return nil, builderr.Config(req.Target, builderr.StageLdScript, err)
	}

	logger.Info("Build configuration extracted.",
		"profile", cfg.Profile,
		"sources", len(cfg.Sources),
		"include_dirs", len(cfg.IncludeDirs),
		"regions", len(cfg.Regions),
	)
	return cfg, nil
}

func (e *Extractor) toolchain() string {
	if e.Toolchain == "" {
		return inspect.DefaultToolchain
	}
	return e.Toolchain
}

func (e *Extractor) resolveTarget(ctx context.Context, name string) (*targets.Resolved, error) {
	files := e.TargetFiles
	if len(files) == 0 {
		for _, ext := range hcl.Extensions {
			if p := filepath.Join(e.FrameworkDir, "targets", "targets"+ext); fsutil.IsFile(p) {
				files = append(files, p)
			}
		}
		if len(files) == 0 {
			return nil, builderr.Config(name, builderr.StageMetadata,
				fmt.Errorf("no target metadata found in %s", filepath.Join(e.FrameworkDir, "targets")))
		}
	}

	defs, err := e.Loader.LoadTargets(ctx, files...)
	if err != nil {
		return nil, builderr.Config(name, builderr.StageMetadata, err)
	}
	resolved, err := targets.DB(defs).Resolve(name)
	if err != nil {
		return nil, builderr.Config(name, builderr.StageMetadata,
			fmt.Errorf("failed to extract configuration, it might not be supported by this framework release: %w", err))
	}
	if !resolved.Public {
		return nil, builderr.Config(name, builderr.StageMetadata,
			fmt.Errorf("target %s is not public and cannot be built directly", name))
	}
	return resolved, nil
}

func (e *Extractor) loadOverlay(ctx context.Context, path string) (*config.Overlay, error) {
	if path == "" && e.ProjectDir != "" {
		for _, ext := range hcl.Extensions {
			if p := filepath.Join(e.ProjectDir, OverlayFile+ext); fsutil.IsFile(p) {
				path = p
				break
			}
		}
	}
	if path == "" || !fsutil.IsFile(path) {
		ctxlog.FromContext(ctx).Debug("No application overlay.", "path", path)
		return &config.Overlay{}, nil
	}
	return e.Loader.LoadOverlay(ctx, path)
}

// filterSources lists the sources (assembly, C, then C++) relative to the
// framework and drops the ones the ignore file excludes.
func (e *Extractor) filterSources(ctx context.Context, m *ignore.Matcher, rep *inspect.Report) ([]string, error) {
	var all []string
	for _, lang := range []string{inspect.LangAsm, inspect.LangC, inspect.LangCXX} {
		all = append(all, FixPaths(e.FrameworkDir, rep.Sources[lang])...)
	}
	if m.Empty() {
		return all, nil
	}

	var kept []string
	for _, src := range all {
		if !filepath.IsAbs(src) {
			ignored, err := m.Ignored(src)
			if err != nil {
				return nil, err
			}
			if ignored {
				ctxlog.FromContext(ctx).Debug("Source excluded by ignore file.", "path", src)
				continue
			}
		}
		kept = append(kept, src)
	}
	return kept, nil
}

// findAuxBinary locates the auxiliary binary by file name. A missing file
// is not fatal; the firmware is linked without it.
func (e *Extractor) findAuxBinary(ctx context.Context, res *classify.Result, name string) string {
	if res != nil {
		if p, ok := res.FindFile(name, classify.Other, classify.IncludeOnly, classify.Source); ok {
			return FixPath(e.FrameworkDir, p)
		}
	}
	ctxlog.FromContext(ctx).Warn("Cannot find auxiliary binary; firmware will be linked without it.", "name", name)
	return ""
}

func (e *Extractor) linkerScript(ctx context.Context, script string, ldflags []string) (string, error) {
	if script == "" {
		ctxlog.FromContext(ctx).Warn("Couldn't find linker script file.")
		return "", nil
	}
	if e.Preprocessor == nil {
		return FixPath(e.FrameworkDir, script), nil
	}
	return e.Preprocessor.Run(ctx, script, e.BuildDir, ldflags)
}
