package buildconfig

import (
	"context"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/vk/mbedpio/internal/ctxlog"
)

// timestampSymbol changes on every build and is never published.
const timestampSymbol = "MBED_BUILD_TIMESTAMP"

// NormalizeSymbols drops the build timestamp, escapes quotes in header-name
// values and sorts the result. Applying it twice changes nothing.
func NormalizeSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if strings.Contains(s, timestampSymbol) {
			continue
		}
		if strings.Contains(s, `"`) && strings.Contains(s, ".h") {
			s = escapeQuotes(s)
		}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// escapeQuotes prefixes every unescaped double quote with a backslash.
func escapeQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		if s[i] == '"' && (i == 0 || s[i-1] != '\\') {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// FixPath makes path relative to the framework root when it runs through a
// directory named like the root; the leading part up to and including that
// element is dropped. Other relative paths are joined onto the root and
// absolute ones are kept.
func FixPath(frameworkDir, path string) string {
	if path == "" {
		return ""
	}
	base := filepath.Base(frameworkDir)
	parts := strings.Split(filepath.ToSlash(path), "/")
	for i, p := range parts {
		if p == base {
			return filepath.Join(parts[i+1:]...)
		}
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(frameworkDir, path)
}

// FixPaths applies FixPath and drops paths that end up empty.
func FixPaths(frameworkDir string, paths []string) []string {
	var out []string
	for _, p := range paths {
		if fixed := FixPath(frameworkDir, p); fixed != "" {
			out = append(out, fixed)
		}
	}
	return out
}

// DeprecatedOptions are project defines that no longer do anything.
var DeprecatedOptions = []string{
	"PIO_FRAMEWORK_MBED_FILESYSTEM_PRESENT",
	"PIO_FRAMEWORK_MBED_EVENTS_PRESENT",
}

// WarnDeprecated logs one warning per deprecated option found in defines
// and returns the ones it found.
func WarnDeprecated(ctx context.Context, defines []string) []string {
	var found []string
	for _, d := range defines {
		name, _, _ := strings.Cut(strings.TrimPrefix(d, "-D"), "=")
		if slices.Contains(DeprecatedOptions, name) && !slices.Contains(found, name) {
			ctxlog.FromContext(ctx).Warn("Option is obsolete; use the application configuration file or a standalone library.", "option", name)
			found = append(found, name)
		}
	}
	return found
}
