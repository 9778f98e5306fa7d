package target

import (
	"slices"
	"sort"
	"sync"
	"time"

	ferrors "github.com/provide-io/flashkit/go/flashkit/pkg/errors"
)

// Overrides lists the fields a derived target replaces. Nil pointers and nil
// slices mean "inherit from the base"; a non-nil empty slice clears the field.
type Overrides struct {
	Core                *Core
	IsDiskVirtual       *bool
	SupportedToolchains []Toolchain
	DefaultToolchain    *Toolchain
	ExtraLabels         []string
	Macros              []string
	PostLink            *PatchKind
	ProgramCycle        *time.Duration
}

func (o Overrides) apply(cfg Config) Config {
	if o.Core != nil {
		cfg.Core = *o.Core
	}
	if o.IsDiskVirtual != nil {
		cfg.IsDiskVirtual = *o.IsDiskVirtual
	}
	if o.SupportedToolchains != nil {
		cfg.SupportedToolchains = slices.Clone(o.SupportedToolchains)
	}
	if o.DefaultToolchain != nil {
		cfg.DefaultToolchain = *o.DefaultToolchain
	}
	if o.ExtraLabels != nil {
		cfg.ExtraLabels = slices.Clone(o.ExtraLabels)
	}
	if o.Macros != nil {
		cfg.Macros = slices.Clone(o.Macros)
	}
	if o.PostLink != nil {
		cfg.PostLink = *o.PostLink
	}
	if o.ProgramCycle != nil {
		cfg.ProgramCycle = *o.ProgramCycle
	}
	return cfg
}

// Catalog maps target names to descriptors. It is filled once at startup and
// only read afterwards.
type Catalog struct {
	mu      sync.RWMutex
	byName  map[string]*Descriptor
	ordered []*Descriptor
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{byName: make(map[string]*Descriptor)}
}

// Register adds d. A name can only be registered once.
func (c *Catalog) Register(d *Descriptor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byName[d.Name()]; exists {
		return &ferrors.DuplicateTargetError{Name: d.Name()}
	}
	c.byName[d.Name()] = d
	c.ordered = append(c.ordered, d)
	return nil
}

// Get returns the descriptor registered under name.
func (c *Catalog) Get(name string) (*Descriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.byName[name]
	if !ok {
		return nil, &ferrors.UnknownTargetError{Name: name}
	}
	return d, nil
}

// Derive builds a new descriptor named name from a copy of base with o applied.
// The result is not registered.
func (c *Catalog) Derive(base, name string, o Overrides) (*Descriptor, error) {
	b, err := c.Get(base)
	if err != nil {
		return nil, err
	}
	cfg := o.apply(b.Config())
	cfg.Name = name
	return New(cfg)
}

// DeriveAndRegister derives name from base and registers the result.
func (c *Catalog) DeriveAndRegister(base, name string, o Overrides) (*Descriptor, error) {
	d, err := c.Derive(base, name, o)
	if err != nil {
		return nil, err
	}
	if err := c.Register(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Names returns all target names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the descriptors in registration order.
func (c *Catalog) All() []*Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.ordered)
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ordered)
}
