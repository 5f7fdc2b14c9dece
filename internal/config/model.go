package config

import "github.com/zclconf/go-cty/cty"

// ListAttr is a cumulative list attribute of a target. Set replaces the
// inherited value when IsSet; Add and Remove adjust it.
type ListAttr struct {
	Set    []string
	IsSet  bool
	Add    []string
	Remove []string
}

// AuxBinary names a precompiled blob and its flash offset.
type AuxBinary struct {
	Name   string
	Offset uint32
}

// Region is one slice of a target's firmware layout.
type Region struct {
	Name   string
	Offset uint32
	Length uint32
	Active bool
	File   string
}

// Target is the format-agnostic representation of a `target` block.
type Target struct {
	Name     string
	Inherits []string
	Core     string
	Public   *bool

	ExtraLabels ListAttr
	Macros      ListAttr
	DeviceHas   ListAttr
	Features    ListAttr

	SupportedToolchains []string
	RestrictSize        *uint32
	PostBinaryHook      string
	OutputExtUpdate     string

	AuxBinary *AuxBinary
	Regions   []Region
}

// --- Build Profiles ---

// ToolchainFlags are the baseline flags of one toolchain, by role.
type ToolchainFlags struct {
	Common []string
	Asm    []string
	C      []string
	CXX    []string
	Ld     []string
}

// Profile is one build profile file.
type Profile struct {
	Name       string
	Toolchains map[string]*ToolchainFlags
}

// --- Application Overlay ---

// Param is an application configuration parameter rendered as a macro.
// Value is null for a parameter declared without one.
type Param struct {
	Name      string
	Value     cty.Value
	MacroName string
}

// TargetOverride adjusts targets whose name matches Target ("*" for all).
type TargetOverride struct {
	Target         string
	MacrosAdd      []string
	ExtraLabelsAdd []string
	FeaturesAdd    []string
	DeviceHasAdd   []string
	RestrictSize   *uint32
}

// Overlay is the application-level configuration merged over the target.
type Overlay struct {
	Macros    []string
	Params    []Param
	Flags     ToolchainFlags
	Overrides []TargetOverride
}

// OverridesFor returns the overrides applying to target, wildcard first.
func (o *Overlay) OverridesFor(target string) []TargetOverride {
	if o == nil {
		return nil
	}
	var out []TargetOverride
	for _, ov := range o.Overrides {
		if ov.Target == "*" {
			out = append(out, ov)
		}
	}
	for _, ov := range o.Overrides {
		if ov.Target == target {
			out = append(out, ov)
		}
	}
	return out
}
