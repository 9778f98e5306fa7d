// Package target models hardware build targets and the catalog that holds them.
package target

import (
	"fmt"
	"slices"
	"time"

	ferrors "github.com/provide-io/flashkit/go/flashkit/pkg/errors"
)

// PatchKind selects the post-link transform a target needs.
type PatchKind string

const (
	PatchNone       PatchKind = ""
	PatchRegions    PatchKind = "regions"
	PatchSoftDevice PatchKind = "softdevice"
)

// ParsePatchKind accepts "", "none", "regions" or "softdevice".
func ParsePatchKind(s string) (PatchKind, error) {
	switch s {
	case "", "none":
		return PatchNone, nil
	case string(PatchRegions):
		return PatchRegions, nil
	case string(PatchSoftDevice):
		return PatchSoftDevice, nil
	default:
		return PatchNone, fmt.Errorf("%w: unknown post_link %q", ferrors.ErrInvalidDescriptor, s)
	}
}

// Program cycle defaults: how long to wait after copying an image to the board.
const (
	ProgramCycleDefault     = 1500 * time.Millisecond
	ProgramCycleDiskVirtual = 4 * time.Second
)

// Config holds the fields a Descriptor is built from.
type Config struct {
	Name                string
	Core                Core
	IsDiskVirtual       bool
	SupportedToolchains []Toolchain
	DefaultToolchain    Toolchain
	ExtraLabels         []string
	Macros              []string
	PostLink            PatchKind

	// ProgramCycle overrides the disk-derived program cycle when non-zero.
	ProgramCycle time.Duration
}

func (c Config) clone() Config {
	c.SupportedToolchains = slices.Clone(c.SupportedToolchains)
	c.ExtraLabels = slices.Clone(c.ExtraLabels)
	c.Macros = slices.Clone(c.Macros)
	return c
}

// Descriptor is the read-only capability record of one target. Accessors
// return copies, so a descriptor can be shared between concurrent builds.
type Descriptor struct {
	cfg Config
}

// New validates cfg and returns a descriptor owning a private copy of it.
//
// An empty DefaultToolchain resolves to ARM when the target supports it and to
// the first supported toolchain otherwise.
func New(cfg Config) (*Descriptor, error) {
	cfg = cfg.clone()

	if cfg.Name == "" {
		return nil, fmt.Errorf("%w: empty name", ferrors.ErrInvalidDescriptor)
	}
	if _, err := CoreLabel(cfg.Core); err != nil {
		return nil, fmt.Errorf("%w: target %s: %w", ferrors.ErrInvalidDescriptor, cfg.Name, err)
	}
	if len(cfg.SupportedToolchains) == 0 {
		return nil, fmt.Errorf("%w: target %s: no supported toolchains", ferrors.ErrInvalidDescriptor, cfg.Name)
	}
	cfg.SupportedToolchains = dedupe(cfg.SupportedToolchains)

	if cfg.DefaultToolchain == "" {
		cfg.DefaultToolchain = cfg.SupportedToolchains[0]
		if slices.Contains(cfg.SupportedToolchains, ToolchainARM) {
			cfg.DefaultToolchain = ToolchainARM
		}
	}
	if !slices.Contains(cfg.SupportedToolchains, cfg.DefaultToolchain) {
		return nil, fmt.Errorf("%w: target %s: %w: %s not in %v",
			ferrors.ErrInvalidDescriptor, cfg.Name, ferrors.ErrDefaultToolchain,
			cfg.DefaultToolchain, cfg.SupportedToolchains)
	}
	if _, err := ParsePatchKind(string(cfg.PostLink)); err != nil {
		return nil, err
	}
	return &Descriptor{cfg: cfg}, nil
}

func dedupe(tcs []Toolchain) []Toolchain {
	out := tcs[:0]
	seen := make(map[Toolchain]bool, len(tcs))
	for _, tc := range tcs {
		if seen[tc] {
			continue
		}
		seen[tc] = true
		out = append(out, tc)
	}
	return out
}

func (d *Descriptor) Name() string { return d.cfg.Name }
func (d *Descriptor) Core() Core { return d.cfg.Core }
func (d *Descriptor) IsDiskVirtual() bool { return d.cfg.IsDiskVirtual }
func (d *Descriptor) PostLink() PatchKind { return d.cfg.PostLink }
func (d *Descriptor) Config() Config { return d.cfg.clone() }
func (d *Descriptor) ExtraLabels() []string { return slices.Clone(d.cfg.ExtraLabels) }
func (d *Descriptor) Macros() []string { return slices.Clone(d.cfg.Macros) }

func (d *Descriptor) SupportedToolchains() []Toolchain {
	return slices.Clone(d.cfg.SupportedToolchains)
}

func (d *Descriptor) DefaultToolchain() Toolchain { return d.cfg.DefaultToolchain }

// Supports reports whether the target can be built with tc.
func (d *Descriptor) Supports(tc Toolchain) bool {
	return slices.Contains(d.cfg.SupportedToolchains, tc)
}

// Labels returns [name, core label, extra labels...]. Order matters to
// consumers that resolve source directories by label precedence.
func (d *Descriptor) Labels() ([]string, error) {
	coreLabel, err := CoreLabel(d.cfg.Core)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, 2+len(d.cfg.ExtraLabels))
	labels = append(labels, d.cfg.Name, coreLabel)
	return append(labels, d.cfg.ExtraLabels...), nil
}

// ProgramCycleDuration is the settle time after flashing the board.
func (d *Descriptor) ProgramCycleDuration() time.Duration {
	if d.cfg.ProgramCycle > 0 {
		return d.cfg.ProgramCycle
	}
	if d.cfg.IsDiskVirtual {
		return ProgramCycleDiskVirtual
	}
	return ProgramCycleDefault
}
