// Package regions assembles the final firmware image of region-based
// targets and post-processes it.
//
// A target with regions splits flash into named slices (bootloader,
// application, update payload). Merge places each region's file at its
// offset, pads gaps with 0xFF for binary outputs and enforces the target's
// size restriction. MergeApps additionally extracts the update image. The
// optional post-binary hooks of hooks.go patch the merged image in place.
package regions
