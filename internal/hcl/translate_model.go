// This file contains the logic for translating HCL schema structs (from the
// schema package) into the format-agnostic configuration model defined in
// the config package.

package hcl

import (
	"fmt"
	"math"

	"github.com/vk/mbedpio/internal/config"
	"github.com/vk/mbedpio/internal/flags"
	"github.com/vk/mbedpio/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// translateTarget converts the HCL-specific target schema into the agnostic model.
func translateTarget(s *schema.Target) (*config.Target, error) {
	t := &config.Target{
		Name:                s.Name,
		Inherits:            s.Inherits,
		Core:                s.Core,
		Public:              s.Public,
		ExtraLabels:         listAttr(s.ExtraLabels, s.ExtraLabelsAdd, s.ExtraLabelsRemove),
		Macros:              listAttr(s.Macros, s.MacrosAdd, s.MacrosRemove),
		DeviceHas:           listAttr(s.DeviceHas, s.DeviceHasAdd, s.DeviceHasRemove),
		Features:            listAttr(s.Features, s.FeaturesAdd, s.FeaturesRemove),
		SupportedToolchains: s.SupportedToolchains,
		PostBinaryHook:      s.PostBinaryHook,
		OutputExtUpdate:     s.OutputExtUpdate,
	}

	if s.RestrictSize != nil {
		v, err := toUint32(*s.RestrictSize, "restrict_size")
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", s.Name, err)
		}
		t.RestrictSize = &v
	}
	if s.AuxBinary != nil {
		off, err := toUint32(s.AuxBinary.Offset, "aux_binary.offset")
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", s.Name, err)
		}
		t.AuxBinary = &config.AuxBinary{Name: s.AuxBinary.Name, Offset: off}
	}
	for _, r := range s.Regions {
		off, err := toUint32(r.Offset, "region."+r.Name+".offset")
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", s.Name, err)
		}
		length, err := toUint32(r.Length, "region."+r.Name+".length")
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", s.Name, err)
		}
		t.Regions = append(t.Regions, config.Region{
			Name:   r.Name,
			Offset: off,
			Length: length,
			Active: r.Active,
			File:   r.File,
		})
	}
	return t, nil
}

// translateProfile converts the HCL-specific profile schema into the agnostic model.
func translateProfile(s *schema.ProfileConfig) *config.Profile {
	p := &config.Profile{Toolchains: make(map[string]*config.ToolchainFlags)}
	for _, tc := range s.Toolchains {
		p.Toolchains[tc.Name] = &config.ToolchainFlags{
			Common: tc.Common,
			Asm:    tc.Asm,
			C:      tc.C,
			CXX:    tc.CXX,
			Ld:     tc.Ld,
		}
	}
	return p
}

// translateOverlay converts the HCL-specific overlay schema into the agnostic model.
func translateOverlay(s *schema.OverlayConfig) (*config.Overlay, error) {
	o := &config.Overlay{Macros: s.Macros}

	for _, p := range s.Params {
		param := config.Param{Name: p.Name, MacroName: p.MacroName, Value: cty.NilVal}
		if p.Value != nil && !p.Value.IsNull() {
			if _, err := flags.ValueString(*p.Value); err != nil {
				return nil, fmt.Errorf("config parameter %q: %w", p.Name, err)
			}
			param.Value = *p.Value
		}
		o.Params = append(o.Params, param)
	}

	if s.Flags != nil {
		o.Flags = config.ToolchainFlags{
			Common: s.Flags.Common,
			Asm:    s.Flags.Asm,
			C:      s.Flags.C,
			CXX:    s.Flags.CXX,
			Ld:     s.Flags.Ld,
		}
	}

	for _, ov := range s.Overrides {
		out := config.TargetOverride{
			Target:         ov.Target,
			MacrosAdd:      ov.MacrosAdd,
			ExtraLabelsAdd: ov.ExtraLabelsAdd,
			FeaturesAdd:    ov.FeaturesAdd,
			DeviceHasAdd:   ov.DeviceHasAdd,
		}
		if ov.RestrictSize != nil {
			v, err := toUint32(*ov.RestrictSize, "restrict_size")
			if err != nil {
				return nil, fmt.Errorf("target_override %q: %w", ov.Target, err)
			}
			out.RestrictSize = &v
		}
		o.Overrides = append(o.Overrides, out)
	}
	return o, nil
}

func listAttr(set, add, remove []string) config.ListAttr {
	return config.ListAttr{Set: set, IsSet: set != nil, Add: add, Remove: remove}
}

func toUint32(v int64, attr string) (uint32, error) {
	if v < 0 || v > math.MaxUint32 {
		return 0, fmt.Errorf("%s: %d is outside the 32-bit address space", attr, v)
	}
	return uint32(v), nil
}
