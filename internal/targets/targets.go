package targets

import (
	"fmt"

	"github.com/vk/mbedpio/internal/config"
	"github.com/vk/mbedpio/internal/regions"
)

// baseTarget is the conventional root of the hierarchy. It never appears as
// a label.
const baseTarget = "Target"

// DB is a read-only, name-keyed view of the loaded target metadata.
type DB map[string]*config.Target

// Resolved is a target with inheritance applied. It is built once per
// extraction and never mutated afterwards.
type Resolved struct {
	Name                string
	Order               []string
	Core                string
	ExtraLabels         []string
	Macros              []string
	DeviceHas           []string
	Features            []string
	SupportedToolchains []string
	RestrictSize        *uint32
	PostBinaryHook      string
	OutputExtUpdate     string
	AuxBinary           *config.AuxBinary
	Regions             []regions.Region
	// Public is false for base targets that only exist to be inherited.
	// It is never inherited itself.
	Public bool
}

// Labels returns the target labels: the resolution order (without the base
// target), then the core labels, then the extra labels.
func (r *Resolved) Labels() []string {
	var out []string
	for _, n := range r.Order {
		if n != baseTarget {
			out = append(out, n)
		}
	}
	out = append(out, CoreLabels(r.Core)...)
	out = append(out, r.ExtraLabels...)
	return uniq(out)
}

// HasRegions reports whether the target uses a region-based layout.
func (r *Resolved) HasRegions() bool { return len(r.Regions) > 0 }

// Order returns name followed by its ancestors, depth first in declaration
// order, each target once. Every target on the way must exist.
func (db DB) Order(name string) ([]string, error) {
	if _, ok := db[name]; !ok {
		return nil, fmt.Errorf("unknown target %q", name)
	}

	var order []string
	visited := map[string]struct{}{}
	stack := []string{name}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[cur]; ok {
			continue
		}
		t := db[cur]
		visited[cur] = struct{}{}
		order = append(order, cur)
		for i := len(t.Inherits) - 1; i >= 0; i-- {
			parent := t.Inherits[i]
			if _, ok := db[parent]; !ok {
				return nil, fmt.Errorf("target %q inherits from unknown target %q", cur, parent)
			}
			if _, seen := visited[parent]; !seen {
				stack = append(stack, parent)
			}
		}
	}
	return order, nil
}

// Resolve applies inheritance to the named target.
func (db DB) Resolve(name string) (*Resolved, error) {
	order, err := db.Order(name)
	if err != nil {
		return nil, err
	}
	chain := make([]*config.Target, len(order))
	for i, n := range order {
		chain[i] = db[n]
	}

	r := &Resolved{
		Name:        name,
		Order:       order,
		Public:      chain[0].Public == nil || *chain[0].Public,
		ExtraLabels: cumulative(chain, func(t *config.Target) config.ListAttr { return t.ExtraLabels }),
		Macros:      cumulative(chain, func(t *config.Target) config.ListAttr { return t.Macros }),
		DeviceHas:   cumulative(chain, func(t *config.Target) config.ListAttr { return t.DeviceHas }),
		Features:    cumulative(chain, func(t *config.Target) config.ListAttr { return t.Features }),
	}
	for _, t := range chain {
		if r.Core == "" {
			r.Core = t.Core
		}
		if r.SupportedToolchains == nil && t.SupportedToolchains != nil {
			r.SupportedToolchains = t.SupportedToolchains
		}
		if r.RestrictSize == nil && t.RestrictSize != nil {
			v := *t.RestrictSize
			r.RestrictSize = &v
		}
		if r.PostBinaryHook == "" {
			r.PostBinaryHook = t.PostBinaryHook
		}
		if r.OutputExtUpdate == "" {
			r.OutputExtUpdate = t.OutputExtUpdate
		}
		if r.Regions == nil && len(t.Regions) > 0 {
			for _, reg := range t.Regions {
				r.Regions = append(r.Regions, regions.Region{
					Name:     reg.Name,
					Offset:   reg.Offset,
					Length:   reg.Length,
					Active:   reg.Active,
					Filename: reg.File,
				})
			}
		}
	}
	if aux, ok := db.ResolveAuxBinary(name); ok {
		r.AuxBinary = &aux
	}
	return r, nil
}

// ResolveAuxBinary returns the auxiliary binary of the nearest target on
// the primary-parent chain that declares one. An unknown target anywhere on
// the chain, an empty inherits list or a cycle all end the search with
// ok == false.
func (db DB) ResolveAuxBinary(name string) (aux config.AuxBinary, ok bool) {
	visited := map[string]struct{}{}
	for {
		if _, seen := visited[name]; seen {
			return config.AuxBinary{}, false
		}
		visited[name] = struct{}{}

		t, found := db[name]
		if !found {
			return config.AuxBinary{}, false
		}
		if t.AuxBinary != nil {
			return *t.AuxBinary, true
		}
		if len(t.Inherits) == 0 {
			return config.AuxBinary{}, false
		}
		name = t.Inherits[0]
	}
}

// ApplyOverrides returns a copy of r adjusted by application overrides.
func (r *Resolved) ApplyOverrides(overrides []config.TargetOverride) *Resolved {
	out := *r
	out.Macros = append([]string(nil), r.Macros...)
	out.ExtraLabels = append([]string(nil), r.ExtraLabels...)
	out.Features = append([]string(nil), r.Features...)
	out.DeviceHas = append([]string(nil), r.DeviceHas...)
	out.Regions = append([]regions.Region(nil), r.Regions...)
	for _, ov := range overrides {
		out.Macros = uniq(append(out.Macros, ov.MacrosAdd...))
		out.ExtraLabels = uniq(append(out.ExtraLabels, ov.ExtraLabelsAdd...))
		out.Features = uniq(append(out.Features, ov.FeaturesAdd...))
		out.DeviceHas = uniq(append(out.DeviceHas, ov.DeviceHasAdd...))
		if ov.RestrictSize != nil {
			v := *ov.RestrictSize
			out.RestrictSize = &v
		}
	}
	return &out
}

// cumulative computes a list attribute over chain (nearest first).
func cumulative(chain []*config.Target, get func(*config.Target) config.ListAttr) []string {
	def := len(chain)
	var value []string
	for i, t := range chain {
		if a := get(t); a.IsSet {
			def = i
			value = append([]string(nil), a.Set...)
			break
		}
	}
	for i := def - 1; i >= 0; i-- {
		a := get(chain[i])
		value = append(value, a.Add...)
		if len(a.Remove) > 0 {
			value = remove(value, a.Remove)
		}
	}
	return uniq(value)
}

func remove(list, drop []string) []string {
	d := make(map[string]struct{}, len(drop))
	for _, s := range drop {
		d[s] = struct{}{}
	}
	var out []string
	for _, s := range list {
		if _, ok := d[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

func uniq(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	var out []string
	for _, s := range list {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
