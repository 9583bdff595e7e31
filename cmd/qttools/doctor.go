package main

import (
	"fmt"
	"io"
	"os"

	"github.com/MethodJiao/qttools/pkg/preflight"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the bundled toolchain and the launch environment",
	Long: `Check that the toolchain root, its tools and plugins are in place and
report the .env overlay and display settings a launch from the current
directory would use.

Exits with status 1 when a check fails.`,
	GroupID: groupCommands,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, err := currentLayout()
		if err != nil {
			return err
		}
		cfg := preflight.Config{Layout: layout}
		if settings.DotenvEnabled() {
			if wd, err := os.Getwd(); err == nil {
				cfg.WorkDir = wd
			}
		}

		results, runErr := preflight.NewChecker(cfg).Run(cmd.Context())
		if err := printResults(cmd.OutOrStdout(), results); err != nil {
			return err
		}
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// printResults writes one line per check, coloring the level when w is a
// terminal.
func printResults(w io.Writer, results []preflight.CheckResult) error {
	r := lipgloss.NewRenderer(w)
	styles := map[preflight.CheckLevel]lipgloss.Style{
		preflight.LevelError: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		preflight.LevelWarn:  r.NewStyle().Foreground(lipgloss.Color("3")),
		preflight.LevelInfo:  r.NewStyle().Foreground(lipgloss.Color("2")),
	}

	for _, result := range results {
		label := styles[result.Level].Width(7).Render("[" + result.Level.String() + "]")
		if _, err := fmt.Fprintf(w, "%s %s: %s\n", label, result.Name, result.Message); err != nil {
			return err
		}
	}
	return nil
}
