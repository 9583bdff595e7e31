package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MethodJiao/qttools/pkg/bundle"
	"github.com/MethodJiao/qttools/pkg/config"
	"github.com/MethodJiao/qttools/pkg/launcher"
	qtlog "github.com/MethodJiao/qttools/pkg/log"
	"github.com/spf13/cobra"
)

const programName = "qttools"

// Environment variables read by the CLI itself.
const (
	envRoot     = "QTTOOLS_ROOT"
	envConfig   = "QTTOOLS_CONFIG"
	envLogLevel = "QTTOOLS_LOG_LEVEL"
)

var (
	rootFlag     string
	configFlag   string
	logLevelFlag string
	noDotenv     bool
)

// settings is populated by the root command's pre-run hook.
var settings config.Config

var rootCmd = &cobra.Command{
	Use:   programName,
	Short: "Launch bundled Qt tools with an augmented environment",
	Long: `qttools runs the Qt tools bundled next to it with QT_PLUGIN_PATH,
PYTHONPATH and the tool specific search paths pointing into the bundle.

Arguments after the tool name are forwarded to the tool verbatim. Global
flags must come before the tool name:

  qttools --root /opt/qt designer -p ./widgets
  qttools uic -o ui_main.py main.ui

When the binary is invoked through a link named after a tool (designer,
uic.exe, ...) it behaves like "qttools <tool>".`,
	TraverseChildren:  true,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	// Traverse hands unknown tool names to the root instead of failing.
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Toolchain root containing the Qt directory (env "+envRoot+")")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (env "+envConfig+")")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error (env "+envLogLevel+")")
	rootCmd.PersistentFlags().BoolVar(&noDotenv, "no-dotenv", false, "Do not merge the nearest .env file into the tool environment")
	// Traverse reads the root's flag set before cobra merges persistent
	// flags into it; without this a bool flag swallows the tool name.
	rootCmd.InitDefaultHelpFlag()
}

// setup loads the config file and initializes logging for every command.
func setup(cmd *cobra.Command, args []string) error {
	path := config.Locate(firstNonEmpty(configFlag, os.Getenv(envConfig)))
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if noDotenv {
		disabled := false
		cfg.Dotenv = &disabled
	}

	logCfg := qtlog.DefaultConfig()
	if name := firstNonEmpty(logLevelFlag, os.Getenv(envLogLevel), cfg.LogLevel); name != "" {
		level, err := qtlog.ParseLevel(name)
		if err != nil {
			return err
		}
		logCfg.Level = level
	}
	if err := qtlog.Init(logCfg); err != nil {
		return err
	}
	if cfg.Path != "" {
		qtlog.Debug("loaded config", "path", cfg.Path)
	}

	settings = cfg
	return nil
}

// rootCandidates lists the places a toolchain root may come from, in order.
func rootCandidates(cfg config.Config, exeDir string) []bundle.Candidate {
	candidates := []bundle.Candidate{
		{Path: rootFlag, Source: "--root", Explicit: true},
		{Path: os.Getenv(envRoot), Source: envRoot, Explicit: true},
		{Path: cfg.Root, Source: "config", Explicit: true},
	}
	if exeDir != "" {
		candidates = append(candidates,
			bundle.Candidate{Path: exeDir, Source: "executable directory"},
			bundle.Candidate{Path: filepath.Dir(exeDir), Source: "executable parent directory"},
		)
	}
	return candidates
}

// currentLayout resolves the toolchain root for this invocation.
func currentLayout() (bundle.Layout, error) {
	exeDir, err := bundle.ExecutableDir()
	if err != nil {
		qtlog.Debug("cannot locate own executable", "error", err)
		exeDir = ""
	}
	root, source, err := bundle.ResolveRoot(rootCandidates(settings, exeDir))
	if err != nil {
		return bundle.Layout{}, err
	}
	qtlog.Debug("resolved toolchain root", "root", root, "source", source)
	return bundle.Layout{Root: root, SitePackages: settings.SitePackages}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// dispatchArgs rewrites the command line when the binary runs under a tool's
// name, so a "designer" link behaves like "qttools designer".
func dispatchArgs(argv0 string, args []string) []string {
	name := filepath.Base(argv0)
	if ext := filepath.Ext(name); strings.EqualFold(ext, ".exe") {
		name = strings.TrimSuffix(name, ext)
	}
	if name == programName {
		return args
	}
	if _, ok := toolCommands[name]; !ok {
		return args
	}
	return append([]string{name}, args...)
}

// exitCode maps an error from a command to the process exit status, printing
// a diagnostic unless the error only carries a child's exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *launcher.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)

	var notFound *bundle.ToolNotFoundError
	if errors.As(err, &notFound) {
		return 127
	}
	var startErr *launcher.StartError
	if errors.As(err, &startErr) {
		return 126
	}
	return 1
}

func main() {
	rootCmd.SetArgs(dispatchArgs(os.Args[0], os.Args[1:]))
	err := rootCmd.Execute()
	_ = qtlog.Sync()
	os.Exit(exitCode(err))
}
