// Package labels derives the target and toolchain labels that gate which
// SDK subtrees take part in a build.
package labels

import (
	"sort"
	"strings"
)

// Prefixes recognised on symbol names and directory names.
const (
	TargetPrefix    = "TARGET_"
	ToolchainPrefix = "TOOLCHAIN_"
)

// Set holds the labels active for one classification pass.
type Set struct {
	Target    map[string]struct{}
	Toolchain map[string]struct{}
}

// New returns an empty label set.
func New() Set {
	return Set{
		Target:    make(map[string]struct{}),
		Toolchain: make(map[string]struct{}),
	}
}

// FromSymbols extracts labels from preprocessor symbol definitions. Only the
// name part of a NAME=value definition is considered.
func FromSymbols(symbols []string) Set {
	s := New()
	for _, sym := range symbols {
		name, _, _ := strings.Cut(sym, "=")
		name = strings.TrimPrefix(strings.TrimSpace(name), "-D")
		switch {
		case strings.HasPrefix(name, TargetPrefix):
			s.Target[name[len(TargetPrefix):]] = struct{}{}
		case strings.HasPrefix(name, ToolchainPrefix):
			s.Toolchain[name[len(ToolchainPrefix):]] = struct{}{}
		}
	}
	return s
}

// HasTarget reports whether label is an active target label.
func (s Set) HasTarget(label string) bool {
	_, ok := s.Target[label]
	return ok
}

// HasToolchain reports whether label is an active toolchain label.
func (s Set) HasToolchain(label string) bool {
	_, ok := s.Toolchain[label]
	return ok
}

// Keeps reports whether a directory name survives label filtering. Names
// without a label prefix always survive.
func (s Set) Keeps(dirName string) bool {
	switch {
	case strings.HasPrefix(dirName, TargetPrefix):
		return s.HasTarget(dirName[len(TargetPrefix):])
	case strings.HasPrefix(dirName, ToolchainPrefix):
		return s.HasToolchain(dirName[len(ToolchainPrefix):])
	}
	return true
}

// TargetLabels returns the target labels sorted.
func (s Set) TargetLabels() []string { return sortedKeys(s.Target) }

// ToolchainLabels returns the toolchain labels sorted.
func (s Set) ToolchainLabels() []string { return sortedKeys(s.Toolchain) }

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
