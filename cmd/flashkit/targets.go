package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/provide-io/flashkit/go/flashkit/pkg/target"
	"github.com/spf13/cobra"
)

var exportPath string

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Inspect the target catalog",
}

var targetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known targets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog(newLogger())
		if err != nil {
			return err
		}
		return writeTargetTable(cmd.OutOrStdout(), catalog)
	},
}

var targetsShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show the capabilities of one target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog(newLogger())
		if err != nil {
			return err
		}
		desc, err := catalog.Get(args[0])
		if err != nil {
			return err
		}
		out, err := renderTarget(desc, useColor())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var targetsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the catalog as a msgpack snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		catalog, err := loadCatalog(logger)
		if err != nil {
			return err
		}
		if exportPath == "" || exportPath == "-" {
			return target.WriteSnapshot(cmd.OutOrStdout(), catalog)
		}
		if err := writeSnapshotFile(exportPath, catalog); err != nil {
			return err
		}
		logger.Info("✅ catalog exported", "path", exportPath, "targets", catalog.Len())
		return nil
	},
}

func init() {
	targetsExportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "Snapshot file (default stdout)")
	targetsCmd.AddCommand(targetsListCmd, targetsShowCmd, targetsExportCmd)
}

func useColor() bool {
	return colorMode == "on" || (colorMode == "auto" && isTerminal(os.Stdout))
}

// Column widths of the list view.
const (
	nameWidth = 16
	coreWidth = 11
	tcWidth   = 8
)

func cell(value string, width int) string {
	if runewidth.StringWidth(value) > width {
		value = runewidth.Truncate(value, width, "…")
	}
	return runewidth.FillRight(value, width)
}

func writeTargetTable(w io.Writer, catalog *target.Catalog) error {
	header := cell("NAME", nameWidth) + "  " + cell("CORE", coreWidth) + "  " +
		cell("DEFAULT", tcWidth) + "  " + cell("POST-LINK", 10) + "  TOOLCHAINS"
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	for _, name := range catalog.Names() {
		desc, err := catalog.Get(name)
		if err != nil {
			return err
		}
		post := string(desc.PostLink())
		if post == "" {
			post = "-"
		}
		line := cell(desc.Name(), nameWidth) + "  " + cell(string(desc.Core()), coreWidth) + "  " +
			cell(desc.DefaultToolchain().String(), tcWidth) + "  " + cell(post, 10) + "  " +
			joinToolchains(desc.SupportedToolchains())
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

func joinToolchains(tcs []target.Toolchain) string {
	names := make([]string, len(tcs))
	for i, tc := range tcs {
		names[i] = tc.String()
	}
	return strings.Join(names, ", ")
}

func renderTarget(desc *target.Descriptor, colored bool) (string, error) {
	labels, err := desc.Labels()
	if err != nil {
		return "", err
	}

	title := lipgloss.NewStyle().Bold(true)
	key := lipgloss.NewStyle().Width(12)
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	if colored {
		title = title.Foreground(lipgloss.Color("6"))
		key = key.Foreground(lipgloss.Color("7"))
		box = box.BorderForeground(lipgloss.Color("8"))
	}

	post := string(desc.PostLink())
	if post == "" {
		post = "none"
	}
	macros := strings.Join(desc.Macros(), " ")
	if macros == "" {
		macros = "-"
	}
	rows := [][2]string{
		{"core", string(desc.Core())},
		{"labels", strings.Join(labels, " ")},
		{"toolchains", joinToolchains(desc.SupportedToolchains())},
		{"default", desc.DefaultToolchain().String()},
		{"macros", macros},
		{"disk", fmt.Sprintf("virtual=%v, program cycle %s", desc.IsDiskVirtual(), desc.ProgramCycleDuration())},
		{"post-link", post},
	}

	lines := []string{title.Render(desc.Name())}
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, key.Render(r[0]), r[1]))
	}
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)), nil
}

// writeSnapshotFile encodes to a temp file next to path and renames it into place.
func writeSnapshotFile(path string, catalog *target.Catalog) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	err = target.WriteSnapshot(tmp, catalog)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmpPath, path)
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	return nil
}
