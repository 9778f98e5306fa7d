package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const (
	versionMajor = "0"
	versionMinor = "2"
	versionPatch = "0"
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show flashkit version",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "flashkit %s.%s.%s\n",
			versionMajorColor.Sprint(versionMajor),
			versionMinorColor.Sprint(versionMinor),
			versionPatchColor.Sprint(versionPatch))
		fmt.Fprintf(out, "Built: %s\n", buildTimestamp())
	},
}

func buildTimestamp() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return "unknown"
}
