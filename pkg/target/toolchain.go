package target

import (
	"fmt"
	"strings"

	ferrors "github.com/provide-io/flashkit/go/flashkit/pkg/errors"
)

// Toolchain names a compiler/linker configuration a target can be built with.
type Toolchain string

const (
	ToolchainARM         Toolchain = "ARM"
	ToolchainUARM        Toolchain = "uARM"
	ToolchainGCCARM      Toolchain = "GCC_ARM"
	ToolchainGCCCS       Toolchain = "GCC_CS"
	ToolchainGCCCR       Toolchain = "GCC_CR"
	ToolchainGCCCWEWL    Toolchain = "GCC_CW_EWL"
	ToolchainGCCCWNewlib Toolchain = "GCC_CW_NEWLIB"
	ToolchainIAR         Toolchain = "IAR"
)

// Driver names the toolchain implementation that actually runs. The two ARM
// compiler flavours share a driver family with different library sets.
type Driver string

const (
	DriverARMStd   Driver = "ARM_STD"
	DriverARMMicro Driver = "ARM_MICRO"
)

var knownToolchains = map[string]Toolchain{
	"ARM":           ToolchainARM,
	"UARM":          ToolchainUARM,
	"GCC_ARM":       ToolchainGCCARM,
	"GCC_CS":        ToolchainGCCCS,
	"GCC_CR":        ToolchainGCCCR,
	"GCC_CW_EWL":    ToolchainGCCCWEWL,
	"GCC_CW_NEWLIB": ToolchainGCCCWNewlib,
	"IAR":           ToolchainIAR,
	// driver spellings
	"ARM_STD":   ToolchainARM,
	"ARM_MICRO": ToolchainUARM,
}

// ParseToolchain resolves a toolchain name case-insensitively. Driver names
// (ARM_STD, ARM_MICRO) are accepted as aliases.
func ParseToolchain(s string) (Toolchain, error) {
	tc, ok := knownToolchains[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ferrors.ErrUnknownToolchain, s)
	}
	return tc, nil
}

// ParseToolchains resolves a list of names, failing on the first unknown one.
func ParseToolchains(names []string) ([]Toolchain, error) {
	out := make([]Toolchain, 0, len(names))
	for _, name := range names {
		tc, err := ParseToolchain(name)
		if err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, nil
}

// Driver returns the driver that builds with tc.
func (tc Toolchain) Driver() Driver {
	switch tc {
	case ToolchainARM:
		return DriverARMStd
	case ToolchainUARM:
		return DriverARMMicro
	default:
		return Driver(tc)
	}
}

func (tc Toolchain) String() string { return string(tc) }
