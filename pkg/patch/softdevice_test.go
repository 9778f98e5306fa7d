package patch

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	ferrors "github.com/provide-io/flashkit/go/flashkit/pkg/errors"
	"github.com/provide-io/flashkit/go/flashkit/pkg/hooks"
	"github.com/provide-io/flashkit/go/flashkit/pkg/ihex"
	"github.com/provide-io/flashkit/go/flashkit/pkg/resources"
)

func TestSelect_PreferenceOrder(t *testing.T) {
	p := NewSoftDevicePatcher(IHexCodec{})
	tests := []struct {
		name       string
		candidates []string
		wantOffset uint32
		wantPath   string
	}{
		{
			name: "newer stack wins regardless of discovery order",
			candidates: []string{
				"/res/a_unrelated.hex",
				"/res/s110_nrf51822_6.0.0_softdevice.hex",
				"/res/s110_nrf51822_7.0.0_softdevice.hex",
			},
			wantOffset: 0x16000,
			wantPath:   "/res/s110_nrf51822_7.0.0_softdevice.hex",
		},
		{
			name:       "only the newer stack present",
			candidates: []string{"/res/aaa.hex", "/res/s110_nrf51822_7.0.0_softdevice.hex"},
			wantOffset: 0x16000,
			wantPath:   "/res/s110_nrf51822_7.0.0_softdevice.hex",
		},
		{
			name:       "fallback to older stack",
			candidates: []string{"/res/s110_nrf51822_6.0.0_softdevice.hex.bz2"},
			wantOffset: 0x14000,
			wantPath:   "/res/s110_nrf51822_6.0.0_softdevice.hex.bz2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sd, path, ok := p.Select(tt.candidates)
			if !ok {
				t.Fatal("Select() found nothing")
			}
			if sd.Offset != tt.wantOffset || path != tt.wantPath {
				t.Errorf("Select() = %#x %s, want %#x %s", sd.Offset, path, tt.wantOffset, tt.wantPath)
			}
		})
	}
}

func TestHexPath(t *testing.T) {
	tests := map[string]string{
		"build/app.bin":  "build/app.hex",
		"build/app":      "build/app.hex",
		"build/app.bin/": "build/app.hex",
	}
	for in, want := range tests {
		if got := HexPath(in); got != filepath.FromSlash(want) {
			t.Errorf("HexPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPatch_NoMatchLeavesBinary(t *testing.T) {
	dir := t.TempDir()
	binPath := filepath.Join(dir, "app.bin")
	content := []byte{0xAA, 0xBB, 0xCC}
	if err := os.WriteFile(binPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "patch-test",
		Level:  hclog.Trace,
		Output: &logs,
	})
	p := NewSoftDevicePatcher(IHexCodec{})
	out, err := p.Patch(binPath, []string{filepath.Join(dir, "s130_nrf51_1.0.0_softdevice.hex")}, logger)
	if err != nil {
		t.Fatalf("Patch() error = %v, want nil skip", err)
	}
	if out != "" {
		t.Errorf("Patch() output = %q, want none", out)
	}
	got, _ := os.ReadFile(binPath)
	if !bytes.Equal(got, content) {
		t.Error("binary modified on skip")
	}
	if _, err := os.Stat(HexPath(binPath)); !os.IsNotExist(err) {
		t.Error("hex output written on skip")
	}
	if !strings.Contains(logs.String(), ferrors.ErrNoSoftDevice.Error()) {
		t.Errorf("skip not logged with reason %q:\n%s", ferrors.ErrNoSoftDevice, logs.String())
	}
}

func writeZeroBase(t *testing.T, path string, size int) {
	t.Helper()
	base, err := ihex.FromBinary(make([]byte, size), 0)
	if err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := base.WriteTo(f); err != nil {
		t.Fatal(err)
	}
}

func TestPatch_MergeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	binPath := filepath.Join(dir, "app.bin")
	if err := os.WriteFile(binPath, []byte{0xAA, 0xBB}, 0o644); err != nil {
		t.Fatal(err)
	}
	basePath := filepath.Join(dir, "zero_base.hex")
	writeZeroBase(t, basePath, 0x200)

	p := &SoftDevicePatcher{
		Preferences: []SoftDevice{{Name: "zero_base.hex", Offset: 0x100}},
		Codec:       IHexCodec{},
	}
	out, err := p.Patch(binPath, []string{basePath}, testLogger())
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}
	if out != filepath.Join(dir, "app.hex") {
		t.Errorf("output = %s", out)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	merged, err := ihex.Parse(f)
	if err != nil {
		t.Fatalf("parsing merged output: %v", err)
	}

	want := make([]byte, 0x200)
	want[0x100], want[0x101] = 0xAA, 0xBB
	if got := merged.ToBinary(0, 0x200, 0xFF); !bytes.Equal(got, want) {
		t.Error("merged image differs from base with application at 0x100")
	}
	if merged.Size() != 0x200 {
		t.Errorf("merged size = %d, want 0x200", merged.Size())
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 3 {
		t.Errorf("unexpected files after merge: %v", entries)
	}
}

func TestPatch_CompressedSoftDevice(t *testing.T) {
	dir := t.TempDir()
	binPath := filepath.Join(dir, "app.bin")
	if err := os.WriteFile(binPath, []byte{0x01}, 0o644); err != nil {
		t.Fatal(err)
	}
	plain := filepath.Join(t.TempDir(), "s110_nrf51822_7.0.0_softdevice.hex")
	writeZeroBase(t, plain, 0x10)
	stored, err := resources.Import(filepath.Join(dir, "res"), plain, "bzip2")
	if err != nil {
		t.Fatal(err)
	}

	ctx := &hooks.Context{
		Binary:    binPath,
		Resources: &resources.Resources{HexFiles: []string{stored}},
		Logger:    testLogger(),
	}
	if err := NewSoftDevicePatcher(IHexCodec{}).Hook(ctx); err != nil {
		t.Fatalf("Hook() error = %v", err)
	}
	if len(ctx.Outputs) != 1 || ctx.Outputs[0] != HexPath(binPath) {
		t.Errorf("Outputs = %v", ctx.Outputs)
	}

	f, err := os.Open(HexPath(binPath))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	merged, err := ihex.Parse(f)
	if err != nil {
		t.Fatal(err)
	}
	if b, ok := merged.Get(0x16000); !ok || b != 0x01 {
		t.Errorf("application byte at 0x16000 = %x %v", b, ok)
	}
	if _, ok := merged.Get(0x0F); !ok {
		t.Error("softdevice bytes missing from merged image")
	}
}

type fakeImage struct {
	label string
	size  int
}

func (f *fakeImage) Size() int { return f.size }

type fakeCodec struct {
	offset uint32
	merged []string
	wrote  bool
}

func (c *fakeCodec) FromBinary(data []byte, offset uint32) (Image, error) {
	c.offset = offset
	return &fakeImage{label: "app", size: len(data)}, nil
}

func (c *fakeCodec) ReadHex(r io.Reader) (Image, error) {
	data, err := io.ReadAll(r)
	return &fakeImage{label: "base", size: len(data)}, err
}

func (c *fakeCodec) Merge(base, overlay Image) (Image, error) {
	c.merged = []string{base.(*fakeImage).label, overlay.(*fakeImage).label}
	return base, nil
}

func (c *fakeCodec) WriteHex(w io.Writer, img Image) error {
	c.wrote = true
	_, err := io.WriteString(w, "merged")
	return err
}

func TestPatch_InjectedCodec(t *testing.T) {
	dir := t.TempDir()
	binPath := filepath.Join(dir, "app.bin")
	if err := os.WriteFile(binPath, []byte{1, 2, 3, 4}, 0o644); err != nil {
		t.Fatal(err)
	}
	sdPath := filepath.Join(dir, "s110_nrf51822_6.0.0_softdevice.hex")
	if err := os.WriteFile(sdPath, []byte("not parsed by the fake"), 0o644); err != nil {
		t.Fatal(err)
	}

	codec := &fakeCodec{}
	if _, err := NewSoftDevicePatcher(codec).Patch(binPath, []string{sdPath}, testLogger()); err != nil {
		t.Fatal(err)
	}
	if codec.offset != 0x14000 {
		t.Errorf("application placed at %#x, want 0x14000", codec.offset)
	}
	if len(codec.merged) != 2 || codec.merged[0] != "base" || codec.merged[1] != "app" {
		t.Errorf("Merge(base, overlay) called with %v", codec.merged)
	}
	got, _ := os.ReadFile(HexPath(binPath))
	if !codec.wrote || string(got) != "merged" {
		t.Errorf("hex output = %q", got)
	}
}
