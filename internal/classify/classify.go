// Package classify walks SDK source trees, prunes subtrees that do not apply
// to the active target and toolchain, and classifies what remains.
package classify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/mbedpio/internal/ctxlog"
	"github.com/vk/mbedpio/internal/fsutil"
	"github.com/vk/mbedpio/internal/ignore"
	"github.com/vk/mbedpio/internal/labels"
)

// Kind is the classification of a retained directory.
type Kind int

const (
	Other Kind = iota
	Source
	IncludeOnly
	Empty
)

func (k Kind) String() string {
	switch k {
	case Source:
		return "source"
	case IncludeOnly:
		return "include"
	case Empty:
		return "empty"
	}
	return "other"
}

// Extension sets. Keys carry the leading dot.
var (
	SourceExts = extSet(".c", ".cc", ".cpp", ".cxx", ".s", ".S", ".asm", ".ASM", ".sx", ".spp", ".SPP")
	HeaderExts = extSet(".h", ".hh", ".hpp", ".hxx")
)

const (
	testDirName     = "TESTS"
	hiddenPrefix    = "."
	linkerScriptDir = "TOOLCHAIN_GCC_ARM"
	linkerScriptExt = ".ld"
)

// Dir is one retained directory.
type Dir struct {
	Path  string
	Kind  Kind
	Files []string
}

// Result is the outcome of one classification pass.
type Result struct {
	Dirs []Dir
	// LinkerScript is the last linker script discovered, or empty.
	LinkerScript string
}

// Options tunes a walk.
type Options struct {
	// IgnoreDirs are directory names pruned wherever they appear.
	IgnoreDirs []string
	// Ignore prunes directories whose path relative to Base it excludes.
	Ignore *ignore.Matcher
	// Base anchors paths handed to Ignore. Defaults to each root.
	Base string
}

// Walk classifies every directory reachable from roots that survives
// pruning. Roots are visited in order, subdirectories in lexical order, and
// a pruned directory is never read. A missing root is an error.
func Walk(ctx context.Context, roots []string, set labels.Set, opts Options) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	ignored := make(map[string]struct{}, len(opts.IgnoreDirs))
	for _, d := range opts.IgnoreDirs {
		ignored[d] = struct{}{}
	}

	res := &Result{}
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("source root %s: %w", root, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("source root %s is not a directory", root)
		}

		base := opts.Base
		if base == "" {
			base = root
		}

		// Depth-first, pre-order. Children are pushed in reverse so they pop
		// in lexical order.
		stack := []string{root}
		for len(stack) > 0 {
			dir := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			subdirs, files, err := fsutil.Entries(dir)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", dir, err)
			}

			res.Dirs = append(res.Dirs, Dir{Path: dir, Kind: kindOf(files), Files: files})

			if strings.Contains(dir, linkerScriptDir) {
				for _, f := range files {
					if strings.HasSuffix(strings.ToLower(f), linkerScriptExt) {
						res.LinkerScript = filepath.Join(dir, f)
						break
					}
				}
			}

			var keep []string
			for _, name := range subdirs {
				child := filepath.Join(dir, name)
				prune, err := pruned(name, child, base, set, ignored, opts.Ignore)
				if err != nil {
					return nil, err
				}
				if prune {
					logger.Debug("Pruned directory.", "path", child)
					continue
				}
				keep = append(keep, child)
			}
			for i := len(keep) - 1; i >= 0; i-- {
				stack = append(stack, keep[i])
			}
		}
	}

	logger.Debug("Classification complete.", "dirs", len(res.Dirs), "linker_script", res.LinkerScript)
	return res, nil
}

func pruned(name, path, base string, set labels.Set, ignored map[string]struct{}, m *ignore.Matcher) (bool, error) {
	if !set.Keeps(name) {
		return true, nil
	}
	if strings.EqualFold(name, testDirName) || strings.HasPrefix(name, hiddenPrefix) {
		return true, nil
	}
	if _, ok := ignored[name]; ok {
		return true, nil
	}
	if m.Empty() {
		return false, nil
	}
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false, nil
	}
	return m.Ignored(rel)
}

func kindOf(files []string) Kind {
	if len(files) == 0 {
		return Empty
	}
	hasHeader := false
	for _, f := range files {
		if fsutil.HasExt(f, SourceExts) {
			return Source
		}
		if fsutil.HasExt(f, HeaderExts) {
			hasHeader = true
		}
	}
	if hasHeader {
		return IncludeOnly
	}
	return Other
}

// ByKind returns the paths of the directories of kind k, in walk order.
func (r *Result) ByKind(k Kind) []string {
	var out []string
	for _, d := range r.Dirs {
		if d.Kind == k {
			out = append(out, d.Path)
		}
	}
	return out
}

// FindFile returns the first directory, searching kinds in the given order,
// that holds a file called name.
func (r *Result) FindFile(name string, kinds ...Kind) (string, bool) {
	for _, k := range kinds {
		for _, d := range r.Dirs {
			if d.Kind != k {
				continue
			}
			for _, f := range d.Files {
				if f == name {
					return filepath.Join(d.Path, f), true
				}
			}
		}
	}
	return "", false
}

func extSet(exts ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		m[e] = struct{}{}
	}
	return m
}
