package target

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	ferrors "github.com/provide-io/flashkit/go/flashkit/pkg/errors"
)

// catalogFile is the layout of a targets.toml extension file:
//
//	[[target]]
//	name = "MY_NRF_BOARD"
//	base = "NRF51822"
//	labels = ["NORDIC", "NRF51822"]
//	macros = ["TARGET_NRF51822"]
type catalogFile struct {
	Targets []targetEntry `toml:"target"`
}

// Pointer fields distinguish "absent" from "empty" for derived entries.
type targetEntry struct {
	Name         string    `toml:"name"`
	Base         string    `toml:"base"`
	Core         *string   `toml:"core"`
	Toolchains   *[]string `toml:"toolchains"`
	Default      *string   `toml:"default"`
	Labels       *[]string `toml:"labels"`
	Macros       *[]string `toml:"macros"`
	DiskVirtual  *bool     `toml:"disk_virtual"`
	PostLink     *string   `toml:"post_link"`
	ProgramCycle *string   `toml:"program_cycle"`
}

// LoadFile decodes a targets.toml file and registers its entries into c, in
// file order. Entries with a base are derived from an already registered
// target, so a file may derive from its own earlier entries.
func LoadFile(c *Catalog, path string) error {
	var file catalogFile
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%s: %w: unknown keys %s", path, ferrors.ErrInvalidCatalogFile, strings.Join(keys, ", "))
	}
	if !meta.IsDefined("target") {
		return nil
	}

	for i, entry := range file.Targets {
		if strings.TrimSpace(entry.Name) == "" {
			return fmt.Errorf("%s: %w: [[target]] #%d missing name", path, ferrors.ErrInvalidCatalogFile, i+1)
		}
		o, err := entry.overrides()
		if err != nil {
			return fmt.Errorf("%s: target %s: %w", path, entry.Name, err)
		}

		var d *Descriptor
		if entry.Base != "" {
			d, err = c.Derive(entry.Base, entry.Name, o)
		} else {
			d, err = New(o.apply(Config{Name: entry.Name}))
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := c.Register(d); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func (e targetEntry) overrides() (Overrides, error) {
	var o Overrides
	if e.Core != nil {
		core, err := ParseCore(*e.Core)
		if err != nil {
			return o, err
		}
		o.Core = &core
	}
	if e.Toolchains != nil {
		tcs, err := ParseToolchains(*e.Toolchains)
		if err != nil {
			return o, err
		}
		o.SupportedToolchains = tcs
	}
	if e.Default != nil {
		tc, err := ParseToolchain(*e.Default)
		if err != nil {
			return o, err
		}
		o.DefaultToolchain = &tc
	}
	if e.Labels != nil {
		o.ExtraLabels = append([]string{}, *e.Labels...)
	}
	if e.Macros != nil {
		o.Macros = append([]string{}, *e.Macros...)
	}
	o.IsDiskVirtual = e.DiskVirtual
	if e.PostLink != nil {
		kind, err := ParsePatchKind(*e.PostLink)
		if err != nil {
			return o, err
		}
		o.PostLink = &kind
	}
	if e.ProgramCycle != nil {
		dur, err := time.ParseDuration(*e.ProgramCycle)
		if err != nil {
			return o, fmt.Errorf("%w: program_cycle: %w", ferrors.ErrInvalidCatalogFile, err)
		}
		o.ProgramCycle = &dur
	}
	return o, nil
}
