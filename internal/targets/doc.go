// Package targets resolves board metadata through the target inheritance
// graph.
//
// Two kinds of lookup exist. Resolve walks every ancestor (depth first,
// declaration order, each target once) and merges attributes the way the
// framework's target database does: scalars come from the nearest target
// that defines them, list attributes start from the nearest plain
// definition and are then adjusted by the _add and _remove forms of every
// closer target. ResolveAuxBinary follows only the primary parent, which is
// how the auxiliary binary association has always been looked up.
//
// Both lookups are loops with a visited set, so a cyclic metadata file
// cannot hang or overflow the stack.
package targets
