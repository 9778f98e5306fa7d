package patch

import (
	"testing"

	"github.com/provide-io/flashkit/go/flashkit/pkg/hooks"
	"github.com/provide-io/flashkit/go/flashkit/pkg/target"
)

func TestInstall(t *testing.T) {
	catalog := target.MustBuiltin()
	tests := []struct {
		board     string
		toolchain target.Toolchain
		want      int
	}{
		{"LPC4088", target.ToolchainARM, 1},
		{"LPC4088", target.ToolchainGCCARM, 0},
		{"NRF51822", target.ToolchainUARM, 1},
		{"NRF51822", target.ToolchainARM, 1},
		{"NRF51822", target.ToolchainGCCARM, 0},
		{"HRM1017", target.ToolchainARM, 1},
		{"LPC1768", target.ToolchainARM, 0},
	}

	for _, tt := range tests {
		t.Run(tt.board+"/"+tt.toolchain.String(), func(t *testing.T) {
			desc, err := catalog.Get(tt.board)
			if err != nil {
				t.Fatal(err)
			}
			reg := hooks.NewRegistry()
			if got := Install(reg, desc, tt.toolchain, IHexCodec{}); got != tt.want {
				t.Errorf("Install() = %d, want %d", got, tt.want)
			}
			if got := reg.Len(tt.toolchain, hooks.StagePostLink); got != tt.want {
				t.Errorf("registry holds %d hooks, want %d", got, tt.want)
			}
		})
	}
}
