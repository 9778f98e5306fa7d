package errors

import (
	"errors"
	"fmt"
)

var (
	// Catalog errors 🎯
	ErrDuplicateTarget   = errors.New("❌ duplicate target")
	ErrUnknownTarget     = errors.New("❌ unknown target")
	ErrInvalidDescriptor = errors.New("❌ invalid target descriptor")
	ErrUnknownCore       = errors.New("❌ core has no label")
	ErrDefaultToolchain  = errors.New("❌ default toolchain not supported")
	ErrUnknownToolchain  = errors.New("❌ unknown toolchain")
	ErrUnsupported       = errors.New("❌ toolchain not supported by target")

	// Artefact errors 📦
	ErrMissingRegion  = errors.New("❌ region file missing")
	ErrNoSoftDevice   = errors.New("❌ no matching softdevice image")
	ErrInvalidHex     = errors.New("❌ invalid hex record")
	ErrAddressOverrun = errors.New("❌ address outside 32-bit space")
	ErrUnknownCodec   = errors.New("❌ unknown compression codec")

	// Config errors ⚙️
	ErrInvalidCatalogFile = errors.New("❌ invalid catalog file")
	ErrDuplicateRequest   = errors.New("❌ target built twice in one run")
)

// DuplicateTargetError reports a second registration of the same target name.
type DuplicateTargetError struct {
	Name string
}

func (e *DuplicateTargetError) Error() string {
	return fmt.Sprintf("%s: %q", ErrDuplicateTarget.Error(), e.Name)
}

func (e *DuplicateTargetError) Unwrap() error { return ErrDuplicateTarget }

// UnknownTargetError reports a lookup of a target that was never registered.
type UnknownTargetError struct {
	Name string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownTarget.Error(), e.Name)
}

func (e *UnknownTargetError) Unwrap() error { return ErrUnknownTarget }
