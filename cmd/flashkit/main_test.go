package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/flashkit/go/flashkit/pkg/target"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		arg     string
		want    string
		wantErr bool
	}{
		{arg: "LPC4088=build/app.bin", want: "LPC4088||build/app.bin"},
		{arg: "NRF51822:uARM=out/nrf.bin", want: "NRF51822|uARM|out/nrf.bin"},
		{arg: "LPC4088=out/lpc/app.bin/", want: "LPC4088||out/lpc/app.bin"},
		{arg: "LPC4088", wantErr: true},
		{arg: "=app.bin", wantErr: true},
		{arg: "LPC4088=", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			req, err := parseRequest(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := req.Target + "|" + req.Toolchain + "|" + req.Binary; got != tt.want {
				t.Errorf("parseRequest() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestWriteTargetTable(t *testing.T) {
	var buf bytes.Buffer
	if err := writeTargetTable(&buf, target.MustBuiltin()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if !strings.HasPrefix(lines[0], "NAME") {
		t.Errorf("header = %q", lines[0])
	}
	var found bool
	for _, l := range lines {
		if strings.HasPrefix(l, "LPC4088 ") {
			found = true
			if !strings.Contains(l, "regions") || !strings.Contains(l, "ARM, GCC_CR, GCC_ARM") {
				t.Errorf("LPC4088 row = %q", l)
			}
		}
	}
	if !found {
		t.Error("LPC4088 missing from table")
	}
}

func TestRenderTarget(t *testing.T) {
	desc, err := target.MustBuiltin().Get("NRF51822")
	if err != nil {
		t.Fatal(err)
	}
	out, err := renderTarget(desc, false)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"NRF51822", "M0", "softdevice", "6s"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered target lacks %q:\n%s", want, out)
		}
	}
}

func TestLoadCatalog_Snapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.msgpack")
	if err := writeSnapshotFile(path, target.MustBuiltin()); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvTargets, "")
	catalogPath = path
	defer func() { catalogPath = "" }()

	catalog, err := loadCatalog(hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("loadCatalog() error = %v", err)
	}
	if catalog.Len() != target.MustBuiltin().Len() {
		t.Errorf("snapshot catalog has %d targets", catalog.Len())
	}
}
