package main

import (
	"fmt"

	"github.com/MethodJiao/qttools/pkg/bundle"
	"github.com/MethodJiao/qttools/pkg/launcher"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// qmlExampleFlags names the flag that launches the bundled QML example.
var qmlExampleFlags = map[string]struct{ name, usage string }{
	"qmlscene":      {"run-qml-example", "Run the bundled QML example"},
	"qmltestrunner": {"test-qml-example", "Run the bundled QML test example"},
}

func newQMLCommand(tool bundle.Tool) *cobra.Command {
	var (
		opts launcher.Options
		help bool
	)
	fs := pflag.NewFlagSet(tool.Name, pflag.ContinueOnError)
	fs.StringArrayVarP(&opts.QMLImportPaths, "qml2-import-path", "p", nil, "Directory added to QML2_IMPORT_PATH (repeatable)")
	fs.BoolVar(&opts.ToolHelp, tool.Name+"-help", false, fmt.Sprintf("Pass --help to %s", tool.Name))
	if example, ok := qmlExampleFlags[tool.Name]; ok {
		fs.BoolVar(&opts.Example, example.name, false, example.usage)
	}
	fs.BoolVar(&opts.DebugPlugins, "qt-debug-plugins", false, "Set QT_DEBUG_PLUGINS=1")
	fs.BoolVarP(&help, "help", "h", false, "Show this help")

	cmd := &cobra.Command{
		Use:   tool.Name + " [flags] [" + tool.Name + " args...]",
		Short: tool.Short,
		Long: fmt.Sprintf(`Run %s with QML2_IMPORT_PATH including the bundled QML modules.

Flags not listed below are passed to %s unchanged. Use -- to pass
arguments that collide with the flags listed here.`, tool.Name, tool.Name),
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
