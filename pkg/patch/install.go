// Package patch implements the post-link image transforms and installs them
// as hooks for the targets that need them.
package patch

import (
	"github.com/provide-io/flashkit/go/flashkit/pkg/hooks"
	"github.com/provide-io/flashkit/go/flashkit/pkg/target"
)

// HooksEnabled reports whether post-link hooks run for tc. Only the ARM
// compiler drivers produce the split or plain images these hooks expect.
func HooksEnabled(tc target.Toolchain) bool {
	switch tc.Driver() {
	case target.DriverARMStd, target.DriverARMMicro:
		return true
	}
	return false
}

// Install registers the post-link hook desc owns for tc. It returns the
// number of hooks registered.
func Install(reg *hooks.Registry, desc *target.Descriptor, tc target.Toolchain, codec HexCodec) int {
	if !HooksEnabled(tc) {
		return 0
	}
	switch desc.PostLink() {
	case target.PatchRegions:
		reg.Register(tc, hooks.StagePostLink, ConcatRegionsHook)
	case target.PatchSoftDevice:
		reg.Register(tc, hooks.StagePostLink, NewSoftDevicePatcher(codec).Hook)
	default:
		return 0
	}
	return 1
}
