package main

import (
	"github.com/MethodJiao/qttools/pkg/bundle"
	"github.com/MethodJiao/qttools/pkg/launcher"
	"github.com/spf13/cobra"
)

const (
	groupTools    = "tools"
	groupCommands = "commands"
)

// toolCommands indexes tool commands by name and alias for multi-call
// dispatch.
var toolCommands = map[string]*cobra.Command{}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupTools, Title: "Bundled tools:"},
		&cobra.Group{ID: groupCommands, Title: "Commands:"},
	)

	for _, tool := range bundle.Tools() {
		var cmd *cobra.Command
		switch tool.Family {
		case bundle.FamilyDesigner:
			cmd = newDesignerCommand(tool)
		case bundle.FamilyQML:
			cmd = newQMLCommand(tool)
		default:
			cmd = newToolCommand(tool)
		}
		cmd.GroupID = groupTools
		rootCmd.AddCommand(cmd)

		toolCommands[cmd.Name()] = cmd
		for _, alias := range cmd.Aliases {
			toolCommands[alias] = cmd
		}
	}
}

// newToolCommand forwards every argument to a plain tool.
func newToolCommand(tool bundle.Tool) *cobra.Command {
	return &cobra.Command{
		Use:                tool.Name + " [args...]",
		Short:              tool.Short,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return launch(cmd, launcher.Request{Tool: tool, Args: args})
		},
	}
}

// launch runs req against the resolved bundle and turns a non-zero child
// status into *launcher.ExitError.
func launch(cmd *cobra.Command, req launcher.Request) error {
	layout, err := currentLayout()
	if err != nil {
		return err
	}
	code, err := launcher.New(layout, settings).Launch(cmd.Context(), req)
	if err != nil {
		return err
	}
	if code != 0 {
		return &launcher.ExitError{Code: code}
	}
	return nil
}

// wrapperAlias is the name the Python distribution installed the wrapper as.
func wrapperAlias(tool bundle.Tool) string {
	return "pyqt5" + tool.Name
}
