package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/mbedpio/internal/config"
	"github.com/vk/mbedpio/internal/ctxlog"
	"github.com/vk/mbedpio/internal/fsutil"
	"github.com/vk/mbedpio/internal/schema"
)

// Extensions recognised when a directory is given to LoadTargets.
var Extensions = []string{".hcl", ".json"}

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL metadata loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// LoadTargets decodes every `target` block found under paths. A target
// defined twice is an error. A path that does not exist is an error too:
// the metadata source is mandatory.
func (l *Loader) LoadTargets(ctx context.Context, paths ...string) (map[string]*config.Target, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Target loader started.", "path_count", len(paths))

	files, err := l.findAllFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered target metadata files.", "count", len(files))

	parser := hclparse.NewParser()
	targets := make(map[string]*config.Target)
	origin := make(map[string]string)

	for _, file := range files {
		var root schema.TargetsConfig
		if err := l.decodeFile(parser, file, &root); err != nil {
			return nil, err
		}
		for _, t := range root.Targets {
			if prev, dup := origin[t.Name]; dup {
				return nil, fmt.Errorf("target %q defined in both %s and %s", t.Name, prev, file)
			}
			def, err := translateTarget(t)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			targets[def.Name] = def
			origin[def.Name] = file
		}
	}

	logger.Debug("Target loading complete.", "targets", len(targets))
	return targets, nil
}

// LoadProfile decodes a build profile file.
func (l *Loader) LoadProfile(ctx context.Context, path string) (*config.Profile, error) {
	var root schema.ProfileConfig
	if err := l.decodeFile(hclparse.NewParser(), path, &root); err != nil {
		return nil, err
	}
	p := translateProfile(&root)
	p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	ctxlog.FromContext(ctx).Debug("Build profile loaded.", "path", path, "toolchains", len(p.Toolchains))
	return p, nil
}

// LoadOverlay decodes an application overlay file.
func (l *Loader) LoadOverlay(ctx context.Context, path string) (*config.Overlay, error) {
	var root schema.OverlayConfig
	if err := l.decodeFile(hclparse.NewParser(), path, &root); err != nil {
		return nil, err
	}
	o, err := translateOverlay(&root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ctxlog.FromContext(ctx).Debug("Application overlay loaded.", "path", path, "macros", len(o.Macros), "params", len(o.Params))
	return o, nil
}

// decodeFile parses file with the syntax matching its extension and decodes
// the body into target.
func (l *Loader) decodeFile(parser *hclparse.Parser, file string, target any) error {
	var (
		f     *hcl.File
		diags hcl.Diagnostics
	)
	if filepath.Ext(file) == ".json" {
		f, diags = parser.ParseJSONFile(file)
	} else {
		f, diags = parser.ParseHCLFile(file)
	}
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse %s: %w", file, diags)
	}

	diags = gohcl.DecodeBody(f.Body, nil, target)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode %s: %w", file, diags)
	}
	return nil
}

// findAllFiles expands directories to the metadata files they contain and
// returns a flat, duplicate-free list.
func (l *Loader) findAllFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			add(path)
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, Extensions...)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	return allFiles, nil
}
