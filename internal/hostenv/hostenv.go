// Package hostenv renders a BuildConfiguration as the variables a
// SCons-style host build tool appends to its environment.
package hostenv

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/vk/mbedpio/internal/buildconfig"
	"github.com/vk/mbedpio/internal/ctxlog"
	"github.com/vk/mbedpio/internal/flags"
	"github.com/vk/mbedpio/internal/fsutil"
)

// ConfigHeader is force-included into every translation unit.
const ConfigHeader = "mbed_config.h"

// compileOnly is dropped from compile roles; the host adds it itself.
const compileOnly = "-c"

// Options locate the directories the host tool works with.
type Options struct {
	FrameworkDir  string
	BuildDir      string
	ProjectSrcDir string
}

// SourceGroup is one framework library built from a filtered directory.
type SourceGroup struct {
	Name   string
	Dir    string
	Filter []string
}

// Environment holds the host variables for one build.
type Environment struct {
	ASFlags    []string
	CFlags     []string
	CXXFlags   []string
	CCFlags    []string
	LinkFlags  []string
	CPPDefines []string
	CPPPath    []string
	LibPath    []string
	Libs       []string

	// ResponseFile lists the include directories, one flag per line.
	ResponseFile string
	// LDScript is the linker script to link with, or empty.
	LDScript string
	// AuxBinary is the absolute path of the auxiliary binary, or empty.
	AuxBinary string
	Sources   []SourceGroup
}

// Build derives the host environment from cfg and writes the include
// response file into the build dir.
func Build(ctx context.Context, cfg *buildconfig.BuildConfiguration, opts Options) (*Environment, error) {
	logger := ctxlog.FromContext(ctx)
	fw := opts.FrameworkDir

	env := &Environment{
		ASFlags:    without(cfg.RoleFlags(flags.Assembler), compileOnly),
		CFlags:     without(cfg.RoleFlags(flags.C), compileOnly),
		CXXFlags:   without(cfg.RoleFlags(flags.CXX), compileOnly),
		CCFlags:    append([]string{"-include" + ConfigHeader}, cfg.RoleFlags(flags.Common)...),
		LinkFlags:  append([]string(nil), cfg.RoleFlags(flags.Linker)...),
		CPPDefines: append([]string(nil), cfg.Symbols...),
		CPPPath:    []string{fw, opts.BuildDir},
		Libs:       append(append(append([]string(nil), cfg.Libraries...), cfg.SysLibs...), "c", "gcc"),
	}
	if opts.ProjectSrcDir != "" {
		env.CPPPath = append(env.CPPPath, opts.ProjectSrcDir)
	}

	incFlags, rsp, err := includeFlags(cfg.IncludeDirs, fw, opts.BuildDir)
	if err != nil {
		return nil, fmt.Errorf("failed to write include response file: %w", err)
	}
	env.CCFlags = append(env.CCFlags, incFlags...)
	env.ResponseFile = rsp
	env.ASFlags = append(env.ASFlags, env.CCFlags...)

	for _, p := range cfg.LibDirs {
		env.LibPath = append(env.LibPath, inFramework(fw, p))
	}

	if cfg.LinkerScript != "" {
		env.LDScript = inFramework(fw, cfg.LinkerScript)
	}
	if cfg.AuxBinary != "" {
		p := inFramework(fw, cfg.AuxBinary)
		if fsutil.IsFile(p) {
			env.AuxBinary = p
		} else {
			logger.Warn("Cannot find auxiliary binary; firmware will be linked without it.", "path", p)
		}
	}

	env.Sources = SourceGroups(fw, cfg.Sources)
	logger.Debug("Host environment built.", "include_dirs", len(cfg.IncludeDirs), "libraries", len(env.Sources))
	return env, nil
}

// includeFlags moves the include directories into a response file, keyed
// by the MD5 of its content, so compile commands stay short.
func includeFlags(dirs []string, fw, buildDir string) ([]string, string, error) {
	var lines []string
	for _, d := range dirs {
		if filepath.IsAbs(d) {
			continue
		}
		inc := filepath.Join(fw, d)
		lines = append(lines, "-iwithprefixbefore"+strings.Replace(inc, fw, "", 1))
	}
	data := strings.Join(lines, "\n")
	sum := md5.Sum([]byte(data))
	path := filepath.Join(buildDir, "longinc-"+hex.EncodeToString(sum[:]))

	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return nil, "", err
	}
	if !fsutil.IsFile(path) {
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			return nil, "", err
		}
	}
	return []string{"-iprefix", fw, "@" + path}, path, nil
}

// SourceGroups splits framework sources by their first path element. Each
// group excludes everything and re-includes its own files.
func SourceGroups(fw string, sources []string) []SourceGroup {
	byName := map[string]*SourceGroup{}
	for _, src := range sources {
		if filepath.IsAbs(src) {
			continue
		}
		parts := strings.Split(filepath.ToSlash(src), "/")
		if len(parts) < 2 {
			continue
		}
		g, ok := byName[parts[0]]
		if !ok {
			g = &SourceGroup{Name: parts[0], Dir: filepath.Join(fw, parts[0]), Filter: []string{"-<*>"}}
			byName[parts[0]] = g
		}
		g.Filter = append(g.Filter, "+<"+strings.Join(parts[1:], "/")+">")
	}

	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]SourceGroup, 0, len(names))
	for _, n := range names {
		out = append(out, *byName[n])
	}
	return out
}

func inFramework(fw, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(fw, p)
}

func without(in []string, drop string) []string {
	out := slices.Clone(in)
	return slices.DeleteFunc(out, func(s string) bool { return s == drop })
}
