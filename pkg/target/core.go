package target

import (
	"fmt"

	ferrors "github.com/provide-io/flashkit/go/flashkit/pkg/errors"
)

// Core identifies the ARM core a target is built around.
type Core string

const (
	CoreARM7      Core = "ARM7TDMI-S"
	CoreCortexM0  Core = "Cortex-M0"
	CoreCortexM0P Core = "Cortex-M0+"
	CoreCortexM3  Core = "Cortex-M3"
	CoreCortexM4  Core = "Cortex-M4"
	CoreCortexM4F Core = "Cortex-M4F"
)

// coreLabels maps a core to the short label used for source selection.
// The M4F shares the M4 label: both build the same TARGET_M4 sources.
var coreLabels = map[Core]string{
	CoreARM7:      "ARM7",
	CoreCortexM0:  "M0",
	CoreCortexM0P: "M0P",
	CoreCortexM3:  "M3",
	CoreCortexM4:  "M4",
	CoreCortexM4F: "M4",
}

// CoreLabel returns the short label for core.
func CoreLabel(core Core) (string, error) {
	label, ok := coreLabels[core]
	if !ok {
		return "", fmt.Errorf("%w: %q", ferrors.ErrUnknownCore, string(core))
	}
	return label, nil
}

// ParseCore accepts either the full core name or its short label.
func ParseCore(s string) (Core, error) {
	if _, ok := coreLabels[Core(s)]; ok {
		return Core(s), nil
	}
	for core, label := range coreLabels {
		// M4 is ambiguous; the plain core wins
		if label == s && core != CoreCortexM4F {
			return core, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ferrors.ErrUnknownCore, s)
}
