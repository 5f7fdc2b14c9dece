// Package app wires the packages of the module into the lifecycle a host
// build tool drives: extract the configuration, emit the host environment,
// and after linking merge the firmware and run the post-binary hook. It is
// decoupled from any specific host.
package app
