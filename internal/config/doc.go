// Package config defines the format-agnostic model of the framework
// metadata (targets, build profiles and the application overlay), along
// with the Loader interface that concrete formats implement.
//
// The model is the single source of truth for the `targets`, `inspect` and
// `buildconfig` packages. The HCL implementation, which also reads the HCL
// JSON syntax, lives in the `hcl` package.
package config
