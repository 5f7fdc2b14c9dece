package schema

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// --- Target Metadata ---

// AuxBinary names a precompiled blob that must accompany the application.
type AuxBinary struct {
	Name   string `hcl:"name"`
	Offset int64  `hcl:"offset,optional"`
}

// Region is one slice of the firmware layout declared by a target.
type Region struct {
	Name   string `hcl:"name,label"`
	Offset int64  `hcl:"offset"`
	Length int64  `hcl:"length"`
	Active bool   `hcl:"active,optional"`
	File   string `hcl:"file,optional"`
}

// Target represents a `target` block. List attributes come in three forms:
// the plain form replaces the inherited value, the _add and _remove forms
// adjust it.
type Target struct {
	Name     string   `hcl:"name,label"`
	Inherits []string `hcl:"inherits,optional"`
	Core     string   `hcl:"core,optional"`
	Public   *bool    `hcl:"public,optional"`

	ExtraLabels       []string `hcl:"extra_labels,optional"`
	ExtraLabelsAdd    []string `hcl:"extra_labels_add,optional"`
	ExtraLabelsRemove []string `hcl:"extra_labels_remove,optional"`

	Macros       []string `hcl:"macros,optional"`
	MacrosAdd    []string `hcl:"macros_add,optional"`
	MacrosRemove []string `hcl:"macros_remove,optional"`

	DeviceHas       []string `hcl:"device_has,optional"`
	DeviceHasAdd    []string `hcl:"device_has_add,optional"`
	DeviceHasRemove []string `hcl:"device_has_remove,optional"`

	Features       []string `hcl:"features,optional"`
	FeaturesAdd    []string `hcl:"features_add,optional"`
	FeaturesRemove []string `hcl:"features_remove,optional"`

	SupportedToolchains []string `hcl:"supported_toolchains,optional"`
	RestrictSize        *int64   `hcl:"restrict_size,optional"`
	PostBinaryHook      string   `hcl:"post_binary_hook,optional"`
	OutputExtUpdate     string   `hcl:"output_ext_update,optional"`

	AuxBinary *AuxBinary `hcl:"aux_binary,block"`
	Regions   []*Region  `hcl:"region,block"`
}

// TargetsConfig represents the top-level structure of a target metadata file.
type TargetsConfig struct {
	Targets []*Target `hcl:"target,block"`
	Body    hcl.Body  `hcl:",remain"`
}

// --- Build Profiles ---

// ToolchainFlags holds the baseline flags of one toolchain in a profile.
type ToolchainFlags struct {
	Name   string   `hcl:"name,label"`
	Common []string `hcl:"common,optional"`
	Asm    []string `hcl:"asm,optional"`
	C      []string `hcl:"c,optional"`
	CXX    []string `hcl:"cxx,optional"`
	Ld     []string `hcl:"ld,optional"`
}

// ProfileConfig represents the top-level structure of a build profile file.
type ProfileConfig struct {
	Toolchains []*ToolchainFlags `hcl:"toolchain,block"`
	Body       hcl.Body          `hcl:",remain"`
}

// --- Application Overlay ---

// ConfigParam is an application configuration parameter that becomes a
// macro.
type ConfigParam struct {
	Name      string     `hcl:"name,label"`
	Value     *cty.Value `hcl:"value,optional"`
	MacroName string     `hcl:"macro_name,optional"`
	Help      string     `hcl:"help,optional"`
}

// ExtraFlags are flags appended to the profile's baseline.
type ExtraFlags struct {
	Common []string `hcl:"common,optional"`
	Asm    []string `hcl:"asm,optional"`
	C      []string `hcl:"c,optional"`
	CXX    []string `hcl:"cxx,optional"`
	Ld     []string `hcl:"ld,optional"`
}

// TargetOverride adjusts targets matching its label ("*" matches all).
type TargetOverride struct {
	Target         string   `hcl:"target,label"`
	MacrosAdd      []string `hcl:"macros_add,optional"`
	ExtraLabelsAdd []string `hcl:"extra_labels_add,optional"`
	FeaturesAdd    []string `hcl:"features_add,optional"`
	DeviceHasAdd   []string `hcl:"device_has_add,optional"`
	RestrictSize   *int64   `hcl:"restrict_size,optional"`
}

// OverlayConfig represents the top-level structure of an application
// overlay file.
type OverlayConfig struct {
	Macros    []string          `hcl:"macros,optional"`
	Params    []*ConfigParam    `hcl:"config,block"`
	Flags     *ExtraFlags       `hcl:"flags,block"`
	Overrides []*TargetOverride `hcl:"target_override,block"`
	Body      hcl.Body          `hcl:",remain"`
}
