// Package buildconfig turns a target name and the framework's source roots
// into the BuildConfiguration a host build tool consumes.
//
// Extraction runs the whole pipeline once: load metadata, resolve the
// target, pick the build profile, inspect the tree, consolidate flags and
// normalize what comes out so that two extractions of the same inputs
// serialize to identical bytes. Any fatal problem is returned as a
// *builderr.ConfigError; missing optional resources are logged as warnings.
package buildconfig
