package patch

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	ferrors "github.com/provide-io/flashkit/go/flashkit/pkg/errors"
)

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  "patch-test",
		Level: hclog.Trace,
	})
}

func pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i%251)
	}
	return b
}

// splitImage lays out a region directory the way the linker does.
func splitImage(t *testing.T, internal, external []byte) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "app.bin")
	if err := os.Mkdir(binPath, 0o755); err != nil {
		t.Fatal(err)
	}
	if internal != nil {
		if err := os.WriteFile(filepath.Join(binPath, RegionInternal), internal, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if external != nil {
		if err := os.WriteFile(filepath.Join(binPath, RegionExternal), external, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return binPath
}

func TestConcatRegions_Layout(t *testing.T) {
	region1 := pattern(1000, 1)
	// Two full chunks plus a short tail.
	region2 := pattern(2*ChunkSize+777, 7)
	binPath := splitImage(t, region1, region2)

	if err := ConcatRegions(binPath, testLogger()); err != nil {
		t.Fatalf("ConcatRegions() error = %v", err)
	}

	out, err := os.ReadFile(binPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if want := BankSize + len(region2); len(out) != want {
		t.Fatalf("output length = %d, want %d", len(out), want)
	}
	if !bytes.Equal(out[:len(region1)], region1) {
		t.Error("internal region not copied verbatim")
	}
	for i := len(region1); i < BankSize; i++ {
		if out[i] != FillByte {
			t.Fatalf("byte %d = 0x%02x, want fill", i, out[i])
		}
	}
	if !bytes.Equal(out[BankSize:], region2) {
		t.Error("external region not copied verbatim")
	}

	entries, err := os.ReadDir(filepath.Dir(binPath))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "app.bin" || entries[0].IsDir() {
		t.Errorf("leftovers in output directory: %v", entries)
	}
}

func TestConcatRegions_Idempotent(t *testing.T) {
	region1 := pattern(4096, 3)
	region2 := pattern(ChunkSize, 9)

	var outputs [][]byte
	for i := 0; i < 2; i++ {
		binPath := splitImage(t, region1, region2)
		if err := ConcatRegions(binPath, testLogger()); err != nil {
			t.Fatal(err)
		}
		out, err := os.ReadFile(binPath)
		if err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, out)
	}
	if !bytes.Equal(outputs[0], outputs[1]) {
		t.Error("two runs over identical inputs produced different images")
	}
}

func TestConcatRegions_OversizedInternal(t *testing.T) {
	region1 := pattern(BankSize+10, 5)
	region2 := []byte{0xCA, 0xFE}
	binPath := splitImage(t, region1, region2)

	if err := ConcatRegions(binPath, testLogger()); err != nil {
		t.Fatal(err)
	}
	out, err := os.ReadFile(binPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(region1)+len(region2) {
		t.Errorf("output length = %d, want %d (no padding)", len(out), len(region1)+len(region2))
	}
}

func TestConcatRegions_PlainBinary(t *testing.T) {
	binPath := filepath.Join(t.TempDir(), "app.bin")
	content := []byte{1, 2, 3}
	if err := os.WriteFile(binPath, content, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ConcatRegions(binPath, testLogger()); err != nil {
		t.Fatalf("ConcatRegions() on a file = %v", err)
	}
	got, _ := os.ReadFile(binPath)
	if !bytes.Equal(got, content) {
		t.Error("plain binary was modified")
	}
}

func TestConcatRegions_MissingRegion(t *testing.T) {
	tests := []struct {
		name     string
		internal []byte
		external []byte
	}{
		{"no internal", nil, []byte{1}},
		{"no external", []byte{1}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			binPath := splitImage(t, tt.internal, tt.external)
			err := ConcatRegions(binPath, testLogger())
			if !errors.Is(err, ferrors.ErrMissingRegion) {
				t.Fatalf("ConcatRegions() error = %v, want ErrMissingRegion", err)
			}
			if info, err := os.Stat(binPath); err != nil || !info.IsDir() {
				t.Error("region directory should survive a failed merge")
			}
			entries, _ := os.ReadDir(filepath.Dir(binPath))
			if len(entries) != 1 {
				t.Errorf("temp file left behind: %v", entries)
			}
		})
	}
}

func TestConcatRegions_TrailingSeparator(t *testing.T) {
	region1 := pattern(64, 2)
	region2 := pattern(32, 4)
	binPath := splitImage(t, region1, region2)

	if err := ConcatRegions(binPath+string(filepath.Separator), testLogger()); err != nil {
		t.Fatalf("ConcatRegions() error = %v", err)
	}
	out, err := os.ReadFile(binPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if len(out) != BankSize+len(region2) {
		t.Errorf("output length = %d, want %d", len(out), BankSize+len(region2))
	}
	entries, _ := os.ReadDir(filepath.Dir(binPath))
	if len(entries) != 1 {
		t.Errorf("leftovers in output directory: %v", entries)
	}
}

func TestConcatRegions_MissingOutput(t *testing.T) {
	binPath := filepath.Join(t.TempDir(), "absent.bin")
	err := ConcatRegions(binPath, testLogger())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ConcatRegions() error = %v, want not-exist", err)
	}
}
