package main

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"text/tabwriter"

	"github.com/MethodJiao/qttools/pkg/bundle"
	"github.com/spf13/cobra"
)

var listInstalledOnly bool

var listCmd = &cobra.Command{
	Use:     "tools",
	Short:   "List the bundled tools and where they resolve",
	GroupID: groupCommands,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, err := currentLayout()
		if err != nil {
			return err
		}
		return listTools(cmd.OutOrStdout(), layout, runtime.GOOS, listInstalledOnly)
	},
}

func init() {
	listCmd.Flags().BoolVar(&listInstalledOnly, "installed", false, "Only list tools whose executable is present")
	rootCmd.AddCommand(listCmd)
}

// listTools writes one row per table tool with its family and resolved
// executable, or a missing marker.
func listTools(w io.Writer, layout bundle.Layout, goos string, installedOnly bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOOL\tFAMILY\tEXECUTABLE")
	for _, tool := range bundle.Tools() {
		path, err := layout.Resolve(tool, goos)
		if err != nil {
			var notFound *bundle.ToolNotFoundError
			if !errors.As(err, &notFound) {
				return err
			}
			if installedOnly {
				continue
			}
			path = "missing (" + notFound.Path + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", tool.Name, tool.Family, path)
	}
	return tw.Flush()
}
