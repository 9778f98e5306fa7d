package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/flashkit/go/flashkit/pkg/logging"
	"github.com/provide-io/flashkit/go/flashkit/pkg/target"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// EnvTargets names an extra catalog file loaded on every run.
const EnvTargets = "FLASHKIT_TARGETS"

var (
	logLevel    string
	colorMode   string
	catalogPath string
	rootCmd     *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:           "flashkit",
		Short:         "Embedded target catalog and post-link image patcher",
		Long:          `flashkit knows the build capabilities of embedded targets and turns linker output into flashable images.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch colorMode {
			case "on":
				color.NoColor = false
			case "off":
				color.NoColor = true
			case "auto":
				color.NoColor = !isTerminal(os.Stdout)
			default:
				return fmt.Errorf("--color must be auto, on or off, got %q", colorMode)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error, json[:level])")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "Colorize output (auto|on|off)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Extra targets (.toml) or a catalog snapshot (.msgpack)")

	rootCmd.AddCommand(targetsCmd, resourcesCmd, patchCmd, versionCmd)
}

func main() {
	err := rootCmd.Execute()
	logging.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("❌ %v", err))
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func newLogger() hclog.Logger {
	settings := logging.Resolve(logLevel)
	logger := logging.NewLogger("flashkit", settings, nil)
	logger.Trace("log level resolved", "level", settings.Level, "source", settings.Source)
	return logger
}

// loadCatalog returns the stock catalog extended by --catalog and
// FLASHKIT_TARGETS. A snapshot replaces the stock catalog entirely.
func loadCatalog(logger hclog.Logger) (*target.Catalog, error) {
	catalog, err := target.Builtin()
	if err != nil {
		return nil, err
	}

	for _, path := range []string{os.Getenv(EnvTargets), catalogPath} {
		if path == "" {
			continue
		}
		if strings.EqualFold(filepath.Ext(path), ".msgpack") {
			if catalog, err = readSnapshotFile(path); err != nil {
				return nil, err
			}
			logger.Debug("📦 catalog snapshot loaded", "path", path, "targets", catalog.Len())
			continue
		}
		if err := target.LoadFile(catalog, path); err != nil {
			return nil, err
		}
		logger.Debug("⚙️ catalog extension loaded", "path", path, "targets", catalog.Len())
	}
	return catalog, nil
}

func readSnapshotFile(path string) (*target.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return target.ReadSnapshot(f)
}
