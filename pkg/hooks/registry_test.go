package hooks

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/flashkit/go/flashkit/pkg/target"
)

func testContext() *Context {
	return &Context{
		Binary: "app.bin",
		Logger: hclog.New(&hclog.LoggerOptions{Name: "hooks-test", Level: hclog.Trace}),
	}
}

func TestDispatch_Order(t *testing.T) {
	r := NewRegistry()
	var calls []string
	r.Register(target.ToolchainARM, StagePostLink, func(*Context) error {
		calls = append(calls, "first")
		return nil
	})
	r.Register(target.ToolchainARM, StagePostLink, func(*Context) error {
		calls = append(calls, "second")
		return nil
	})
	r.Register(target.ToolchainUARM, StagePostLink, func(*Context) error {
		calls = append(calls, "other toolchain")
		return nil
	})

	if err := r.Dispatch(target.ToolchainARM, StagePostLink, testContext()); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("calls = %v, want [first second]", calls)
	}
	if n := r.Len(target.ToolchainARM, StagePostLink); n != 2 {
		t.Errorf("Len() = %d, want 2", n)
	}
}

func TestDispatch_Empty(t *testing.T) {
	r := NewRegistry()
	if err := r.Dispatch(target.ToolchainGCCARM, StagePostLink, &Context{}); err != nil {
		t.Errorf("Dispatch() on empty registry = %v", err)
	}
}

func TestDispatch_StopsOnError(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("region file missing")
	ran := false
	r.Register(target.ToolchainARM, StagePostLink, func(*Context) error { return boom })
	r.Register(target.ToolchainARM, StagePostLink, func(*Context) error {
		ran = true
		return nil
	})

	err := r.Dispatch(target.ToolchainARM, StagePostLink, testContext())
	if !errors.Is(err, boom) {
		t.Fatalf("Dispatch() = %v, want wrapped hook error", err)
	}
	if ran {
		t.Error("hook after the failing one still ran")
	}
}

func TestDispatch_PassesContext(t *testing.T) {
	r := NewRegistry()
	var seen string
	r.Register(target.ToolchainARM, StagePostLink, func(c *Context) error {
		seen = c.Binary
		return nil
	})
	if err := r.Dispatch(target.ToolchainARM, StagePostLink, testContext()); err != nil {
		t.Fatal(err)
	}
	if seen != "app.bin" {
		t.Errorf("hook saw binary %q", seen)
	}
}
