package resources

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	ferrors "github.com/provide-io/flashkit/go/flashkit/pkg/errors"
)

const sampleHex = ":0100000042BD\n:00000001FF\n"

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  "resources-test",
		Level: hclog.Trace,
	})
}

func TestIsHex(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"s110_nrf51822_7.0.0_softdevice.hex", true},
		{"s110_nrf51822_7.0.0_softdevice.HEX", true},
		{"s110_nrf51822_7.0.0_softdevice.hex.gz", true},
		{"s110_nrf51822_7.0.0_softdevice.hex.bz2", true},
		{"firmware.bin", false},
		{"notes.txt.gz", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsHex(tt.path); got != tt.want {
				t.Errorf("IsHex(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "nordic")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{
		filepath.Join(root, "b.hex"),
		filepath.Join(nested, "a.hex.bz2"),
		filepath.Join(root, "readme.txt"),
	} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	res, err := Scan(root, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(root, "b.hex"), filepath.Join(nested, "a.hex.bz2")}
	if len(res.HexFiles) != len(want) {
		t.Fatalf("HexFiles = %v, want %v", res.HexFiles, want)
	}
	for i := range want {
		if res.HexFiles[i] != want[i] {
			t.Errorf("HexFiles[%d] = %s, want %s", i, res.HexFiles[i], want[i])
		}
	}
}

func TestScan_MissingRoot(t *testing.T) {
	res, err := Scan(filepath.Join(t.TempDir(), "absent"), testLogger())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(res.HexFiles) != 0 {
		t.Errorf("HexFiles = %v, want none", res.HexFiles)
	}
}

func TestImport_RoundTrip(t *testing.T) {
	src := filepath.Join(t.TempDir(), "s110_nrf51822_7.0.0_softdevice.hex")
	if err := os.WriteFile(src, []byte(sampleHex), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, codec := range append([]string{""}, CodecNames()...) {
		t.Run("codec="+codec, func(t *testing.T) {
			root := t.TempDir()
			stored, err := Import(root, src, codec)
			if err != nil {
				t.Fatalf("Import() error = %v", err)
			}
			if !IsHex(stored) {
				t.Errorf("stored path %s not recognised as hex", stored)
			}

			r, err := Open(stored)
			if err != nil {
				t.Fatal(err)
			}
			defer r.Close()
			data, err := io.ReadAll(r)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != sampleHex {
				t.Errorf("decoded = %q, want %q", data, sampleHex)
			}
		})
	}
}

func TestImport_UnknownCodec(t *testing.T) {
	src := filepath.Join(t.TempDir(), "image.hex")
	if err := os.WriteFile(src, []byte(sampleHex), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Import(t.TempDir(), src, "xz")
	if !errors.Is(err, ferrors.ErrUnknownCodec) {
		t.Errorf("Import() error = %v, want ErrUnknownCodec", err)
	}
}
