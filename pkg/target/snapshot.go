package target

import (
	"fmt"
	"io"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when the snapshot layout changes
const snapshotSchemaVersion uint16 = 1

// snapshot is the serialized form of a resolved catalog, handed to build
// workers so they don't re-read board tables and extension files.
type snapshot struct {
	Schema  uint16           `msgpack:"schema"`
	Targets []snapshotTarget `msgpack:"targets"`
}

type snapshotTarget struct {
	Name         string   `msgpack:"name"`
	Core         string   `msgpack:"core"`
	DiskVirtual  bool     `msgpack:"disk_virtual"`
	Toolchains   []string `msgpack:"toolchains"`
	Default      string   `msgpack:"default"`
	Labels       []string `msgpack:"labels"`
	Macros       []string `msgpack:"macros"`
	PostLink     string   `msgpack:"post_link"`
	ProgramCycle int64    `msgpack:"program_cycle_ns"`
}

// WriteSnapshot encodes every descriptor of c, in registration order.
func WriteSnapshot(w io.Writer, c *Catalog) error {
	snap := snapshot{Schema: snapshotSchemaVersion}
	for _, d := range c.All() {
		cfg := d.Config()
		st := snapshotTarget{
			Name:         cfg.Name,
			Core:         string(cfg.Core),
			DiskVirtual:  cfg.IsDiskVirtual,
			Default:      string(cfg.DefaultToolchain),
			Labels:       cfg.ExtraLabels,
			Macros:       cfg.Macros,
			PostLink:     string(cfg.PostLink),
			ProgramCycle: int64(cfg.ProgramCycle),
		}
		for _, tc := range cfg.SupportedToolchains {
			st.Toolchains = append(st.Toolchains, string(tc))
		}
		snap.Targets = append(snap.Targets, st)
	}
	return msgpack.NewEncoder(w).Encode(&snap)
}

// ReadSnapshot decodes a snapshot into a new catalog, validating every entry
// exactly as Register would.
func ReadSnapshot(r io.Reader) (*Catalog, error) {
	var snap snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding catalog snapshot: %w", err)
	}
	if snap.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("unsupported catalog snapshot schema %d (want %d)", snap.Schema, snapshotSchemaVersion)
	}

	c := NewCatalog()
	for _, st := range snap.Targets {
		cfg := Config{
			Name:             st.Name,
			Core:             Core(st.Core),
			IsDiskVirtual:    st.DiskVirtual,
			DefaultToolchain: Toolchain(st.Default),
			ExtraLabels:      st.Labels,
			Macros:           st.Macros,
			PostLink:         PatchKind(st.PostLink),
			ProgramCycle:     time.Duration(st.ProgramCycle),
		}
		for _, tc := range st.Toolchains {
			cfg.SupportedToolchains = append(cfg.SupportedToolchains, Toolchain(tc))
		}
		d, err := New(cfg)
		if err != nil {
			return nil, err
		}
		if err := c.Register(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}
