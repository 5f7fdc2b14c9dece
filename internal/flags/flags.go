// Package flags consolidates per-language compiler flags into the bundle the
// host build tool consumes.
package flags

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Role identifies which tool a flag sequence is handed to.
type Role string

const (
	Assembler Role = "asm"
	C         Role = "c"
	CXX       Role = "cxx"
	Common    Role = "common"
	Linker    Role = "ld"
)

// Roles lists every role in emission order.
var Roles = []Role{Assembler, C, CXX, Common, Linker}

const definePrefix = "-D"

// Split is the result of consolidating C and C++ flags.
type Split struct {
	Common      []string
	COnly       []string
	CXXOnly     []string
	Definitions []string
}

// Consolidate treats cflags and cxxflags as sets and splits them into flags
// shared by both languages and flags exclusive to one. Shared -D tokens are
// reported as Definitions instead of Common. Every output is sorted.
func Consolidate(cflags, cxxflags []string) Split {
	c := toSet(cflags)
	cxx := toSet(cxxflags)

	var s Split
	for f := range c {
		if _, ok := cxx[f]; !ok {
			s.COnly = append(s.COnly, f)
			continue
		}
		if strings.HasPrefix(f, definePrefix) {
			s.Definitions = append(s.Definitions, f)
		} else {
			s.Common = append(s.Common, f)
		}
	}
	for f := range cxx {
		if _, ok := c[f]; !ok {
			s.CXXOnly = append(s.CXXOnly, f)
		}
	}
	sort.Strings(s.Common)
	sort.Strings(s.COnly)
	sort.Strings(s.CXXOnly)
	sort.Strings(s.Definitions)
	return s
}

// C rebuilds the C flag set the split was produced from.
func (s Split) C() []string {
	return concat(s.Common, s.Definitions, s.COnly)
}

// CXX rebuilds the C++ flag set the split was produced from.
func (s Split) CXX() []string {
	return concat(s.Common, s.Definitions, s.CXXOnly)
}

// Symbol is a preprocessor definition. Value is null for a bare name, a
// cty.Number for a canonical decimal integer and a cty.String otherwise.
type Symbol struct {
	Name  string
	Value cty.Value
}

// ParseSymbol reads NAME, NAME=value or -DNAME=value. Values keep their
// spelling: 010, 0x10 and +5 stay strings.
func ParseSymbol(def string) Symbol {
	def = strings.TrimPrefix(def, definePrefix)
	name, value, ok := strings.Cut(def, "=")
	if !ok {
		return Symbol{Name: name, Value: cty.NilVal}
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil && strconv.FormatInt(n, 10) == value {
		return Symbol{Name: name, Value: cty.NumberIntVal(n)}
	}
	return Symbol{Name: name, Value: cty.StringVal(value)}
}

// String renders the symbol as NAME or NAME=value.
func (s Symbol) String() string {
	if s.Value.IsNull() {
		return s.Name
	}
	v, err := ValueString(s.Value)
	if err != nil {
		return s.Name
	}
	return s.Name + "=" + v
}

// ValueString renders a primitive cty value the way it appears on the right
// hand side of a macro definition. Booleans become 1 and 0.
func ValueString(v cty.Value) (string, error) {
	if v.IsNull() {
		return "", nil
	}
	if !v.IsKnown() {
		return "", fmt.Errorf("value is not known")
	}
	switch v.Type() {
	case cty.String:
		return v.AsString(), nil
	case cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			i, _ := bf.Int(nil)
			return i.String(), nil
		}
		return bf.Text('g', -1), nil
	case cty.Bool:
		if v.True() {
			return "1", nil
		}
		return "0", nil
	}
	return "", fmt.Errorf("unsupported value type %s", v.Type().FriendlyName())
}

// Bundle maps each role to its duplicate-free flags plus the definitions
// lifted out of the shared flags.
type Bundle struct {
	Flags       map[Role][]string
	Definitions []Symbol
}

// NewBundle builds a bundle from raw per-role flags. C and C++ flags are
// consolidated; asm and ld flags are deduplicated keeping first occurrence.
// Tokens listed in drop (e.g. "-c") are removed from every role.
func NewBundle(raw map[Role][]string, drop ...string) Bundle {
	dropped := toSet(drop)
	filter := func(in []string) []string {
		var out []string
		for _, f := range in {
			if _, ok := dropped[f]; !ok {
				out = append(out, f)
			}
		}
		return out
	}

	split := Consolidate(filter(concat(raw[Common], raw[C])), filter(concat(raw[Common], raw[CXX])))

	b := Bundle{Flags: map[Role][]string{
		Assembler: Unique(filter(raw[Assembler])),
		C:         split.COnly,
		CXX:       split.CXXOnly,
		Common:    split.Common,
		Linker:    Unique(filter(raw[Linker])),
	}}
	for _, d := range split.Definitions {
		b.Definitions = append(b.Definitions, ParseSymbol(d))
	}
	return b
}

// Sorted returns a copy of the bundle with every role sorted, the form the
// extractor publishes so cache keys stay stable.
func (b Bundle) Sorted() Bundle {
	out := Bundle{Flags: make(map[Role][]string, len(b.Flags)), Definitions: append([]Symbol(nil), b.Definitions...)}
	for role, fs := range b.Flags {
		cp := append([]string{}, fs...)
		sort.Strings(cp)
		out.Flags[role] = cp
	}
	sort.Slice(out.Definitions, func(i, j int) bool { return out.Definitions[i].Name < out.Definitions[j].Name })
	return out
}

// DefinitionStrings renders Definitions as NAME[=value] strings.
func (b Bundle) DefinitionStrings() []string {
	out := make([]string, 0, len(b.Definitions))
	for _, d := range b.Definitions {
		out = append(out, d.String())
	}
	return out
}

// Unique drops repeated tokens, keeping the first occurrence.
func Unique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, f := range in {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func toSet(in []string) map[string]struct{} {
	m := make(map[string]struct{}, len(in))
	for _, f := range in {
		m[f] = struct{}{}
	}
	return m
}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
