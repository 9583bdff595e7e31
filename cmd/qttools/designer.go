package main

import (
	"github.com/MethodJiao/qttools/pkg/bundle"
	"github.com/MethodJiao/qttools/pkg/launcher"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newDesignerCommand(tool bundle.Tool) *cobra.Command {
	var (
		opts launcher.Options
		help bool
	)
	fs := pflag.NewFlagSet(tool.Name, pflag.ContinueOnError)
	fs.StringArrayVarP(&opts.WidgetPaths, "widget-path", "p", nil, "Directory searched for Python widget plugins (repeatable)")
	fs.BoolVar(&opts.ExampleWidgetPath, "example-widget-path", false, "Include the bundled example button widget plugin")
	fs.BoolVar(&opts.ToolHelp, "designer-help", false, "Pass --help to designer")
	fs.BoolVar(&opts.TestExceptionDialog, "test-exception-dialog", false, "Include a widget plugin that raises while loading")
	fs.BoolVar(&opts.DebugPlugins, "qt-debug-plugins", false, "Set QT_DEBUG_PLUGINS=1")
	fs.BoolVarP(&help, "help", "h", false, "Show this help")

	cmd := &cobra.Command{
		Use:   tool.Name + " [flags] [designer args...]",
		Short: tool.Short,
		Long: `Run Qt Designer with PYQTDESIGNERPATH pointing at Python widget plugins.

Flags not listed below are passed to designer unchanged. Use -- to pass
arguments that collide with the flags listed here.`,
		Aliases:            []string{wrapperAlias(tool)},
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			own, rest := splitKnownFlags(fs, args)
			if err := fs.Parse(own); err != nil {
				return err
			}
			if help {
				return cmd.Help()
			}
			return launch(cmd, launcher.Request{Tool: tool, Args: rest, Options: opts})
		},
	}
	cmd.Flags().AddFlagSet(fs)
	return cmd
}
