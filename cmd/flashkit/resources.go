package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/provide-io/flashkit/go/flashkit/pkg/resources"
	"github.com/spf13/cobra"
)

var (
	resourceDir string
	compressAs  string
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "Manage vendor images merged at post-link",
}

var resourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List hex images in the resource directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := resources.Scan(resourceDir, newLogger())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(res.HexFiles) == 0 {
			fmt.Fprintf(out, "no hex images under %s\n", resourceDir)
			return nil
		}
		for _, path := range res.HexFiles {
			rel, err := filepath.Rel(resourceDir, path)
			if err != nil {
				rel = path
			}
			fmt.Fprintln(out, rel)
		}
		return nil
	},
}

var resourcesAddCmd = &cobra.Command{
	Use:   "add FILE...",
	Short: "Copy hex images into the resource directory",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		for _, src := range args {
			stored, err := resources.Import(resourceDir, src, compressAs)
			if err != nil {
				return err
			}
			logger.Debug("📦 resource stored", "source", src, "path", stored, "codec", compressAs)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("✅"), stored)
		}
		return nil
	},
}

func init() {
	resourcesCmd.PersistentFlags().StringVarP(&resourceDir, "dir", "d", "resources", "Resource directory")
	resourcesAddCmd.Flags().StringVar(&compressAs, "compress", "",
		"Store compressed ("+strings.Join(resources.CodecNames(), "|")+")")
	resourcesCmd.AddCommand(resourcesListCmd, resourcesAddCmd)
}
