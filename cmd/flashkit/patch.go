package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/provide-io/flashkit/go/flashkit/internal/outdir"
	"github.com/provide-io/flashkit/go/flashkit/pkg/build"
	"github.com/spf13/cobra"
)

var (
	patchResources string
	patchOutRoot   string
	patchStaged    bool
	patchForce     bool
	patchJobs      int
	patchELF       string
)

var patchCmd = &cobra.Command{
	Use:   "patch TARGET[:TOOLCHAIN]=BINARY...",
	Short: "Run post-link hooks over linker output",
	Long: `Run the post-link hooks of each target over its linker output.

BINARY is the flat image, or the directory of region files, written by the
linker. Targets are patched concurrently.`,
	Example: `  flashkit patch LPC4088=build/lpc4088/app.bin
  flashkit patch NRF51822:uARM=build/nrf/app.bin --resources vendor/nordic --staged`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPatch,
}

func init() {
	patchCmd.Flags().StringVarP(&patchResources, "resources", "r", "", "Directory searched for vendor hex images")
	patchCmd.Flags().StringVar(&patchOutRoot, "out", "", "Output root for staged builds (default $"+outdir.EnvBuildDir+" or the user cache)")
	patchCmd.Flags().BoolVar(&patchStaged, "staged", false, "Patch a private copy under the output root instead of in place")
	patchCmd.Flags().BoolVarP(&patchForce, "force", "f", false, "Rebuild staged output even when up to date")
	patchCmd.Flags().IntVarP(&patchJobs, "jobs", "j", 0, "Targets patched in parallel (default GOMAXPROCS)")
	patchCmd.Flags().StringVar(&patchELF, "elf", "", "Linked ELF passed to hooks (single target only)")
}

// parseRequest reads TARGET[:TOOLCHAIN]=BINARY.
func parseRequest(arg string) (build.Request, error) {
	head, bin, ok := strings.Cut(arg, "=")
	if !ok || head == "" || bin == "" {
		return build.Request{}, fmt.Errorf("expected TARGET[:TOOLCHAIN]=BINARY, got %q", arg)
	}
	name, tc, _ := strings.Cut(head, ":")
	return build.Request{Target: name, Toolchain: tc, Binary: filepath.Clean(bin), Force: patchForce}, nil
}

func runPatch(cmd *cobra.Command, args []string) error {
	reqs := make([]build.Request, 0, len(args))
	for _, arg := range args {
		req, err := parseRequest(arg)
		if err != nil {
			return err
		}
		reqs = append(reqs, req)
	}
	if patchELF != "" {
		if len(reqs) != 1 {
			return fmt.Errorf("--elf needs exactly one target")
		}
		reqs[0].ELF = filepath.Clean(patchELF)
	}

	logger := newLogger()
	catalog, err := loadCatalog(logger)
	if err != nil {
		return err
	}

	session := build.NewSession(catalog, logger)
	session.ResourceDir = patchResources
	if patchStaged || patchOutRoot != "" {
		session.OutRoot = patchOutRoot
		if session.OutRoot == "" {
			session.OutRoot = outdir.Root()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := session.RunAll(ctx, reqs, patchJobs)
	printResults(cmd.OutOrStdout(), results)
	return err
}

func printResults(w io.Writer, results []build.Result) {
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s %s\n", color.RedString("❌"), r.Target)
			continue
		}
		status := color.GreenString("✅")
		if r.Cached {
			status = color.CyanString("✔ ")
		}
		fmt.Fprintf(w, "%s %s/%s %s", status, r.Target, r.Toolchain, r.Binary)
		for _, out := range r.Outputs {
			fmt.Fprintf(w, " + %s", out)
		}
		fmt.Fprintf(w, " (program cycle %s)\n", r.ProgramCycle)
	}
}
