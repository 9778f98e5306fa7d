package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	ferrors "github.com/provide-io/flashkit/go/flashkit/pkg/errors"
	"github.com/provide-io/flashkit/go/flashkit/pkg/hooks"
	"github.com/provide-io/flashkit/go/flashkit/pkg/resources"
)

// SoftDevice is a vendor radio stack image and the flash offset at which the
// application starts when that stack is installed.
type SoftDevice struct {
	Name   string
	Offset uint32
}

// DefaultSoftDevices lists the known nRF51822 stacks, most preferred first.
var DefaultSoftDevices = []SoftDevice{
	{Name: "s110_nrf51822_7.0.0_softdevice.hex", Offset: 0x16000},
	{Name: "s110_nrf51822_6.0.0_softdevice.hex", Offset: 0x14000},
}

// SoftDevicePatcher merges an application binary over a SoftDevice image and
// writes the result next to the binary as Intel HEX.
type SoftDevicePatcher struct {
	Preferences []SoftDevice
	Codec       HexCodec
}

// NewSoftDevicePatcher returns a patcher using DefaultSoftDevices.
func NewSoftDevicePatcher(codec HexCodec) *SoftDevicePatcher {
	return &SoftDevicePatcher{
		Preferences: append([]SoftDevice(nil), DefaultSoftDevices...),
		Codec:       codec,
	}
}

// Select returns the first preference that some candidate's file name
// contains. Preference order decides, not candidate order.
func (p *SoftDevicePatcher) Select(candidates []string) (SoftDevice, string, bool) {
	for _, sd := range p.Preferences {
		for _, c := range candidates {
			if strings.Contains(filepath.Base(c), sd.Name) {
				return sd, c, true
			}
		}
	}
	return SoftDevice{}, "", false
}

// HexPath is the merged image path for binPath: ".bin" becomes ".hex".
func HexPath(binPath string) string {
	return strings.TrimSuffix(filepath.Clean(binPath), ".bin") + ".hex"
}

// Hook runs Patch for a post-link hook.
func (p *SoftDevicePatcher) Hook(ctx *hooks.Context) error {
	var candidates []string
	if ctx.Resources != nil {
		candidates = ctx.Resources.HexFiles
	}
	out, err := p.Patch(ctx.Binary, candidates, ctx.Logger)
	if out != "" {
		ctx.Outputs = append(ctx.Outputs, out)
	}
	return err
}

// Patch writes the merged image and returns its path. When no candidate
// matches, the binary is left untouched and Patch returns "" and no error.
func (p *SoftDevicePatcher) Patch(binPath string, candidates []string, logger hclog.Logger) (string, error) {
	binPath = filepath.Clean(binPath)
	sd, sdPath, ok := p.Select(candidates)
	if !ok {
		logger.Info("ℹ️ keeping plain binary",
			"reason", ferrors.ErrNoSoftDevice, "binary", binPath, "candidates", len(candidates))
		return "", nil
	}
	logger.Debug("🔍 softdevice selected", "softdevice", sdPath, "offset", fmt.Sprintf("0x%05x", sd.Offset))

	app, err := os.ReadFile(binPath)
	if err != nil {
		return "", fmt.Errorf("reading application binary: %w", err)
	}
	appImg, err := p.Codec.FromBinary(app, sd.Offset)
	if err != nil {
		return "", fmt.Errorf("placing application at 0x%x: %w", sd.Offset, err)
	}

	base, err := p.readSoftDevice(sdPath)
	if err != nil {
		return "", err
	}
	merged, err := p.Codec.Merge(base, appImg)
	if err != nil {
		return "", fmt.Errorf("merging application into %s: %w", filepath.Base(sdPath), err)
	}

	out := HexPath(binPath)
	if err := p.writeHex(out, merged, logger); err != nil {
		return "", err
	}
	logger.Info("✅ softdevice merged", "output", out, "softdevice", filepath.Base(sdPath), "bytes", merged.Size())
	return out, nil
}

func (p *SoftDevicePatcher) readSoftDevice(path string) (Image, error) {
	r, err := resources.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening softdevice: %w", err)
	}
	defer r.Close()

	img, err := p.Codec.ReadHex(r)
	if err != nil {
		return nil, fmt.Errorf("reading softdevice %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

func (p *SoftDevicePatcher) writeHex(out string, img Image, logger hclog.Logger) error {
	tmp, err := os.CreateTemp(filepath.Dir(out), "."+filepath.Base(out)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp hex: %w", err)
	}
	tmpPath := tmp.Name()

	err = p.Codec.WriteHex(tmp, img)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = atomicReplace(tmpPath, out, logger)
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", out, err)
	}
	return nil
}
