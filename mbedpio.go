package mbedpio

import (
	"context"
	"io"

	"github.com/vk/mbedpio/internal/app"
	"github.com/vk/mbedpio/internal/buildconfig"
	"github.com/vk/mbedpio/internal/builderr"
	"github.com/vk/mbedpio/internal/flags"
	"github.com/vk/mbedpio/internal/hcl"
	"github.com/vk/mbedpio/internal/hostenv"
	"github.com/vk/mbedpio/internal/labels"
	"github.com/vk/mbedpio/internal/regions"
	"github.com/vk/mbedpio/internal/targets"
)

type (
	Config             = app.Config
	App                = app.App
	BuildConfiguration = buildconfig.BuildConfiguration
	Environment        = hostenv.Environment
	Region             = regions.Region
	MergeOptions       = regions.MergeOptions
	MergeResult        = regions.MergeResult
	Hook               = regions.Hook
	LabelSet           = labels.Set
	FlagSplit          = flags.Split
	ConfigError        = builderr.ConfigError
	LayoutError        = builderr.LayoutError
)

// New validates cfg and returns an App logging to w.
func New(w io.Writer, cfg Config) (*App, error) {
	c, err := app.NewConfig(cfg)
	if err != nil {
		return nil, err
	}
	return app.NewApp(w, c), nil
}

// LabelsFromSymbols derives the target and toolchain label sets from
// preprocessor symbols.
func LabelsFromSymbols(symbols []string) LabelSet {
	return labels.FromSymbols(symbols)
}

// Consolidate splits C and C++ flags into shared and exclusive sets.
func Consolidate(cflags, cxxflags []string) FlagSplit {
	return flags.Consolidate(cflags, cxxflags)
}

// NormalizeSymbols prepares symbols for publication.
func NormalizeSymbols(symbols []string) []string {
	return buildconfig.NormalizeSymbols(symbols)
}

// ResolveAuxBinary loads target metadata from paths and returns the name of
// the auxiliary binary the target inherits through its primary parents.
func ResolveAuxBinary(ctx context.Context, target string, paths ...string) (string, bool, error) {
	defs, err := hcl.NewLoader().LoadTargets(ctx, paths...)
	if err != nil {
		return "", false, err
	}
	aux, ok := targets.DB(defs).ResolveAuxBinary(target)
	return aux.Name, ok, nil
}

// MergeApps merges app with the other regions into firmware and extracts
// the update image into buildDir.
func MergeApps(ctx context.Context, list []Region, app, firmware, buildDir string, opts MergeOptions) (*MergeResult, error) {
	return regions.MergeApps(ctx, list, app, firmware, buildDir, opts)
}

// LookupHook returns a registered post-binary hook by name.
func LookupHook(name string) (Hook, error) {
	return regions.LookupHook(name)
}
