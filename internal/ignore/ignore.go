// Package ignore loads .mbedignore exclusion patterns and answers whether a
// framework-relative path is excluded by them.
package ignore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/moby/patternmatcher"
	"github.com/moby/patternmatcher/ignorefile"
	"github.com/vk/mbedpio/internal/ctxlog"
)

// FileName is the conventional name of the pattern file in a project.
const FileName = ".mbedignore"

// frameworkPrefixes are dropped from the start of each pattern, so patterns
// written against either checkout name apply to the framework root.
var frameworkPrefixes = []string{"mbed-os/", "framework-mbed/"}

// Matcher decides exclusion for paths relative to the framework root. The
// zero value (and a nil *Matcher) ignores nothing.
type Matcher struct {
	patterns []string
	pm       *patternmatcher.PatternMatcher
}

// New compiles patterns into a Matcher.
func New(patterns []string) (*Matcher, error) {
	cleaned := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		cleaned = append(cleaned, stripFrameworkPrefix(p))
	}
	if len(cleaned) == 0 {
		return &Matcher{}, nil
	}
	pm, err := patternmatcher.New(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid ignore pattern: %w", err)
	}
	return &Matcher{patterns: cleaned, pm: pm}, nil
}

// Parse reads patterns in .mbedignore syntax from r.
func Parse(r io.Reader) (*Matcher, error) {
	patterns, err := ignorefile.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read ignore patterns: %w", err)
	}
	return New(patterns)
}

// Load reads the pattern file at path. A missing file is logged and yields
// an empty matcher.
func Load(ctx context.Context, path string) (*Matcher, error) {
	logger := ctxlog.FromContext(ctx)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("No ignore file found; nothing will be excluded.", "path", path)
			return &Matcher{}, nil
		}
		return nil, fmt.Errorf("failed to open ignore file %s: %w", path, err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Info("Loaded ignore patterns.", "path", path, "count", len(m.patterns))
	return m, nil
}

// Patterns returns the compiled patterns after prefix stripping.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.patterns...)
}

// Empty reports whether the matcher has no patterns.
func (m *Matcher) Empty() bool {
	return m == nil || m.pm == nil
}

// Ignored reports whether rel, or one of its parent directories, is
// excluded. rel is slash- or OS-separated and relative to the framework root.
func (m *Matcher) Ignored(rel string) (bool, error) {
	if m.Empty() {
		return false, nil
	}
	rel = filepath.Clean(filepath.FromSlash(rel))
	return m.pm.MatchesOrParentMatches(rel)
}

func stripFrameworkPrefix(p string) string {
	for _, prefix := range frameworkPrefixes {
		p = strings.Replace(p, prefix, "", 1)
	}
	return p
}
