// Package profile selects and loads build profiles.
package profile

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/mbedpio/internal/config"
	"github.com/vk/mbedpio/internal/fsutil"
)

// Name is one of the fixed build profiles.
type Name string

const (
	Debug   Name = "debug"
	Develop Name = "develop"
	Release Name = "release"
)

// Names lists the known profiles.
var Names = []Name{Debug, Develop, Release}

// Dir is where profiles live, relative to the framework root.
var Dir = filepath.Join("tools", "profiles")

// ParseName validates a profile name, case-insensitively.
func ParseName(s string) (Name, error) {
	for _, n := range Names {
		if strings.EqualFold(s, string(n)) {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown build profile %q (known: debug, develop, release)", s)
}

// FromDefines picks the profile requested through project defines.
// MBED_BUILD_PROFILE_RELEASE wins over MBED_BUILD_PROFILE_DEBUG; develop is
// the default.
func FromDefines(defines []string) Name {
	has := make(map[string]bool, len(defines))
	for _, d := range defines {
		name, _, _ := strings.Cut(strings.TrimPrefix(d, "-D"), "=")
		has[name] = true
	}
	switch {
	case has["MBED_BUILD_PROFILE_RELEASE"]:
		return Release
	case has["MBED_BUILD_PROFILE_DEBUG"]:
		return Debug
	}
	return Develop
}

// Path finds the profile file below frameworkDir, preferring HCL over JSON.
func Path(frameworkDir string, name Name) (string, error) {
	for _, ext := range []string{".hcl", ".json"} {
		p := filepath.Join(frameworkDir, Dir, string(name)+ext)
		if fsutil.IsFile(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("build profile %q not found in %s", name, filepath.Join(frameworkDir, Dir))
}

// Load locates and decodes a profile.
func Load(ctx context.Context, loader config.Loader, frameworkDir string, name Name) (*config.Profile, error) {
	path, err := Path(frameworkDir, name)
	if err != nil {
		return nil, err
	}
	return loader.LoadProfile(ctx, path)
}

// Flags returns the flags of toolchain, falling back to the first of
// aliases present in the profile.
func Flags(p *config.Profile, toolchain string, aliases ...string) (*config.ToolchainFlags, error) {
	for _, tc := range append([]string{toolchain}, aliases...) {
		if f, ok := p.Toolchains[tc]; ok {
			return f, nil
		}
	}
	return nil, fmt.Errorf("build profile %q has no flags for toolchain %s", p.Name, toolchain)
}
