// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. Files ending in .json are read with the HCL JSON syntax, every
// other file with the native syntax; both decode through the same schema
// structs and are translated into the format-agnostic config model.
package hcl
