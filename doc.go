// Package mbedpio resolves the build configuration of an mbed target for a
// PlatformIO-style host build tool and assembles the final firmware from
// the target's memory regions.
//
// A typical host calls New, then App.Run to obtain the BuildConfiguration
// and the host Environment, compiles and links on its own, and finally
// calls App.Finalize to merge regions and run the target's post-binary
// hook. The standalone functions expose the individual algorithms.
package mbedpio
