package buildconfig

import (
	"github.com/vk/mbedpio/internal/flags"
	"github.com/vk/mbedpio/internal/hcl"
	"github.com/vk/mbedpio/internal/regions"
)

// SysLibs are the toolchain's system libraries, in link order.
var SysLibs = []string{"stdc++", "supc++", "m", "c", "gcc", "nosys"}

// BuildConfiguration is everything the host build tool needs for one
// target. Paths inside the framework are relative to its root. It is
// produced once per extraction and owned by the caller.
type BuildConfiguration struct {
	Target         string              `cty:"target"`
	Profile        string              `cty:"profile"`
	Toolchain      string              `cty:"toolchain"`
	Sources        []string            `cty:"src_files"`
	IncludeDirs    []string            `cty:"inc_dirs"`
	LinkerScript   string              `cty:"ldscript"`
	Objects        []string            `cty:"objs"`
	Flags          map[string][]string `cty:"build_flags"`
	Libraries      []string            `cty:"libs"`
	LibDirs        []string            `cty:"lib_paths"`
	SysLibs        []string            `cty:"syslibs"`
	Symbols        []string            `cty:"build_symbols"`
	HexFiles       []string            `cty:"hex"`
	BinFiles       []string            `cty:"bin"`
	AuxBinary      string              `cty:"aux_binary"`
	Regions        []regions.Region    `cty:"regions"`
	RestrictSize   *uint32             `cty:"restrict_size"`
	PostBinaryHook string              `cty:"post_binary_hook"`
	// OutputExtUpdate is the update image extension, without the dot.
	OutputExtUpdate string `cty:"output_ext_update"`

	// Bundle is the consolidated flag set behind Flags.
	Bundle flags.Bundle
	// Hook is the resolved post-binary hook, nil when the target has none.
	Hook regions.Hook
}

// HasRegions reports whether the firmware must be merged after linking.
func (c *BuildConfiguration) HasRegions() bool { return len(c.Regions) > 0 }

// RoleFlags returns the flags of one role.
func (c *BuildConfiguration) RoleFlags(role flags.Role) []string {
	return c.Flags[string(role)]
}

// Marshal renders the configuration as JSON. Equal configurations always
// produce identical bytes.
func (c *BuildConfiguration) Marshal() ([]byte, error) {
	return hcl.NewConverter().ToJSON(c)
}
