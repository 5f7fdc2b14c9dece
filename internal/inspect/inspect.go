// Package inspect computes what the toolchain would see for one target:
// the preprocessor symbols, the retained directories and the files grouped
// by role.
package inspect

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/vk/mbedpio/internal/classify"
	"github.com/vk/mbedpio/internal/config"
	"github.com/vk/mbedpio/internal/ctxlog"
	"github.com/vk/mbedpio/internal/flags"
	"github.com/vk/mbedpio/internal/ignore"
	"github.com/vk/mbedpio/internal/labels"
	"github.com/vk/mbedpio/internal/profile"
	"github.com/vk/mbedpio/internal/targets"
)

// DefaultToolchain is the only toolchain the framework builds with.
const DefaultToolchain = "GCC_ARM"

// toolchainLabels maps a toolchain to the TOOLCHAIN_ labels it implies.
var toolchainLabels = map[string][]string{
	"GCC_ARM": {"GCC_ARM", "GCC"},
}

// Source languages.
const (
	LangAsm = "asm"
	LangC   = "c"
	LangCXX = "cpp"
)

var langByExt = map[string]string{
	".c":  LangC,
	".cc": LangCXX, ".cpp": LangCXX, ".cxx": LangCXX,
	".s": LangAsm, ".S": LangAsm, ".asm": LangAsm, ".ASM": LangAsm,
	".sx": LangAsm, ".spp": LangAsm, ".SPP": LangAsm,
}

// Request describes one inspection.
type Request struct {
	Target     *targets.Resolved
	Toolchain  string
	Roots      []string
	Overlay    *config.Overlay
	Profile    *config.Profile
	IgnoreDirs []string
	Ignore     *ignore.Matcher
	// Base anchors ignore patterns; usually the framework root.
	Base string
}

// Report is the raw outcome of an inspection. Paths are absolute or
// relative exactly as the roots were given.
type Report struct {
	Symbols      []string
	Labels       labels.Set
	Dirs         *classify.Result
	Sources      map[string][]string
	IncludeDirs  []string
	Libraries    []string
	Objects      []string
	HexFiles     []string
	BinFiles     []string
	LinkerScript string
	Flags        map[flags.Role][]string
}

// Inspector produces a Report. The native implementation reads the tree
// directly; tests substitute fakes.
type Inspector interface {
	Inspect(ctx context.Context, req Request) (*Report, error)
}

// Native inspects the source tree on disk.
type Native struct {
	// Now stamps MBED_BUILD_TIMESTAMP. Defaults to time.Now.
	Now func() time.Time
}

var _ Inspector = (*Native)(nil)

// NewNative returns an inspector using the wall clock.
func NewNative() *Native {
	return &Native{Now: time.Now}
}

// Inspect implements Inspector.
func (n *Native) Inspect(ctx context.Context, req Request) (*Report, error) {
	logger := ctxlog.FromContext(ctx)
	if req.Target == nil {
		return nil, fmt.Errorf("no target to inspect")
	}
	toolchain := req.Toolchain
	if toolchain == "" {
		toolchain = DefaultToolchain
	}
	if sup := req.Target.SupportedToolchains; len(sup) > 0 && !slices.Contains(sup, toolchain) {
		return nil, fmt.Errorf("target %s does not support toolchain %s (supported: %s)",
			req.Target.Name, toolchain, strings.Join(sup, ", "))
	}

	symbols := n.symbols(req, toolchain)
	set := labels.FromSymbols(symbols)
	logger.Debug("Computed label set.", "target_labels", set.TargetLabels(), "toolchain_labels", set.ToolchainLabels())

	dirs, err := classify.Walk(ctx, req.Roots, set, classify.Options{
		IgnoreDirs: req.IgnoreDirs,
		Ignore:     req.Ignore,
		Base:       req.Base,
	})
	if err != nil {
		return nil, err
	}

	rep := &Report{
		Symbols:      symbols,
		Labels:       set,
		Dirs:         dirs,
		Sources:      map[string][]string{},
		LinkerScript: dirs.LinkerScript,
	}
	for _, d := range dirs.Dirs {
		if d.Kind == classify.Source || d.Kind == classify.IncludeOnly {
			rep.IncludeDirs = append(rep.IncludeDirs, d.Path)
		}
		for _, f := range d.Files {
			path := filepath.Join(d.Path, f)
			ext := filepath.Ext(f)
			if lang, ok := langByExt[ext]; ok {
				rep.Sources[lang] = append(rep.Sources[lang], path)
				continue
			}
			switch strings.ToLower(ext) {
			case ".a":
				rep.Libraries = append(rep.Libraries, path)
			case ".o":
				rep.Objects = append(rep.Objects, path)
			case ".hex":
				rep.HexFiles = append(rep.HexFiles, path)
			case ".bin":
				rep.BinFiles = append(rep.BinFiles, path)
			}
		}
	}

	rep.Flags, err = profileFlags(req.Profile, req.Overlay, toolchain)
	if err != nil {
		return nil, err
	}

	logger.Debug("Inspection complete.",
		"symbols", len(rep.Symbols),
		"include_dirs", len(rep.IncludeDirs),
		"c_sources", len(rep.Sources[LangC]),
		"cpp_sources", len(rep.Sources[LangCXX]),
		"asm_sources", len(rep.Sources[LangAsm]),
	)
	return rep, nil
}

// symbols lists every definition the compiler would receive for the
// target, before normalization.
func (n *Native) symbols(req Request, toolchain string) []string {
	t := req.Target
	var out []string
	for _, l := range t.Labels() {
		out = append(out, labels.TargetPrefix+l)
	}
	tcLabels, ok := toolchainLabels[toolchain]
	if !ok {
		tcLabels = []string{toolchain}
	}
	for _, l := range tcLabels {
		out = append(out, labels.ToolchainPrefix+l)
	}
	for _, d := range t.DeviceHas {
		out = append(out, "DEVICE_"+d+"=1")
	}
	for _, f := range t.Features {
		out = append(out, "FEATURE_"+f+"=1")
	}
	out = append(out, "TARGET_LIKE_MBED", "__MBED__=1")
	out = append(out, targets.CoreMacros(t.Core)...)
	out = append(out, t.Macros...)

	if req.Overlay != nil {
		out = append(out, req.Overlay.Macros...)
		for _, p := range req.Overlay.Params {
			out = append(out, paramSymbol(p))
		}
	}

	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	ts := float64(now().UnixNano()) / float64(time.Second)
	out = append(out, "MBED_BUILD_TIMESTAMP="+strconv.FormatFloat(ts, 'f', 2, 64))
	return flags.Unique(out)
}

// ParamMacro returns the macro name of an application parameter.
func ParamMacro(p config.Param) string {
	if p.MacroName != "" {
		return p.MacroName
	}
	name := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(p.Name))
	return "MBED_CONF_APP_" + name
}

func paramSymbol(p config.Param) string {
	return flags.Symbol{Name: ParamMacro(p), Value: p.Value}.String()
}

// profileFlags merges profile and overlay flags per role.
func profileFlags(p *config.Profile, o *config.Overlay, toolchain string) (map[flags.Role][]string, error) {
	raw := map[flags.Role][]string{}
	if p != nil {
		tf, err := profile.Flags(p, toolchain, toolchainLabels[toolchain]...)
		if err != nil {
			return nil, err
		}
		addRoles(raw, tf)
	}
	if o != nil {
		addRoles(raw, &o.Flags)
	}
	return raw, nil
}

func addRoles(raw map[flags.Role][]string, f *config.ToolchainFlags) {
	raw[flags.Common] = append(raw[flags.Common], f.Common...)
	raw[flags.Assembler] = append(raw[flags.Assembler], f.Asm...)
	raw[flags.C] = append(raw[flags.C], f.C...)
	raw[flags.CXX] = append(raw[flags.CXX], f.CXX...)
	raw[flags.Linker] = append(raw[flags.Linker], f.Ld...)
}
