// Package hooks keys build callbacks by toolchain and build stage.
package hooks

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/flashkit/go/flashkit/pkg/resources"
	"github.com/provide-io/flashkit/go/flashkit/pkg/target"
)

// Stage names a point in the build where hooks run.
type Stage string

// StagePostLink runs after the linker has produced the ELF and raw binary.
const StagePostLink Stage = "post-link"

// Context is what a hook sees of the build that invoked it.
type Context struct {
	Target    *target.Descriptor
	Toolchain target.Toolchain
	Resources *resources.Resources
	ELF       string
	Binary    string
	Logger    hclog.Logger

	// Outputs collects extra artefacts written by hooks.
	Outputs []string
}

// Hook is a build callback.
type Hook func(*Context) error

type key struct {
	toolchain target.Toolchain
	stage     Stage
}

// Registry holds the hooks of one build session.
type Registry struct {
	mu    sync.Mutex
	hooks map[key][]Hook
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{hooks: make(map[key][]Hook)}
}

// Register appends h to the hooks run for (tc, stage).
func (r *Registry) Register(tc target.Toolchain, stage Stage, h Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{tc, stage}
	r.hooks[k] = append(r.hooks[k], h)
}

// Len reports how many hooks are registered for (tc, stage).
func (r *Registry) Len(tc target.Toolchain, stage Stage) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.hooks[key{tc, stage}])
}

// Dispatch runs the hooks for (tc, stage) in registration order. The first
// failing hook stops the dispatch.
func (r *Registry) Dispatch(tc target.Toolchain, stage Stage, ctx *Context) error {
	r.mu.Lock()
	hooks := append([]Hook(nil), r.hooks[key{tc, stage}]...)
	r.mu.Unlock()

	if ctx.Logger == nil {
		ctx.Logger = hclog.NewNullLogger()
	}
	for i, h := range hooks {
		ctx.Logger.Trace("running hook", "stage", stage, "toolchain", tc, "index", i)
		if err := h(ctx); err != nil {
			return fmt.Errorf("%s hook %d for %s: %w", stage, i, tc, err)
		}
	}
	return nil
}
