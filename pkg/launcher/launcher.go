// Package launcher runs bundled Qt tools with an augmented environment and
// reports the child's exit status.
package launcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/MethodJiao/qttools/pkg/bundle"
	"github.com/MethodJiao/qttools/pkg/config"
	"github.com/MethodJiao/qttools/pkg/dotenv"
	"github.com/MethodJiao/qttools/pkg/environ"
	qtlog "github.com/MethodJiao/qttools/pkg/log"
	"github.com/MethodJiao/qttools/pkg/logs/redact"
	"github.com/MethodJiao/qttools/pkg/pathutil"
)

// Managed variables.
const (
	VarPluginPath    = "QT_PLUGIN_PATH"
	VarDebugPlugins  = "QT_DEBUG_PLUGINS"
	VarQMLImportPath = "QML2_IMPORT_PATH"
	VarDesignerPath  = "PYQTDESIGNERPATH"
	VarPythonPath    = "PYTHONPATH"
	VarPath          = "PATH"
	VarLibraryPath   = "LD_LIBRARY_PATH"
	VarDisplay       = "DISPLAY"
)

// Files below the bundle's examples directory.
const (
	exampleWidgetDir   = "examplebuttonplugin"
	badWidgetDir       = "badplugin"
	qmlExampleFile     = "qmlapp.qml"
	qmlTestExampleFile = "qmltest.qml"
)

// Options carries the wrapper flags of the Designer and QML commands. Plain
// tools leave it zero.
type Options struct {
	// WidgetPaths are prepended to PYQTDESIGNERPATH.
	WidgetPaths []string
	// ExampleWidgetPath adds the bundled example widget plugin.
	ExampleWidgetPath bool
	// TestExceptionDialog adds a plugin that raises on load.
	TestExceptionDialog bool
	// QMLImportPaths are prepended to QML2_IMPORT_PATH.
	QMLImportPaths []string
	// ToolHelp passes --help to the tool itself.
	ToolHelp bool
	// Example runs (qmlscene) or tests (qmltestrunner) the bundled QML example.
	Example bool
	// DebugPlugins sets QT_DEBUG_PLUGINS=1.
	DebugPlugins bool
}

// Request is one tool launch.
type Request struct {
	Tool    bundle.Tool
	Args    []string
	Options Options
}

// Invocation is a fully prepared launch.
type Invocation struct {
	Tool bundle.Tool
	Path string
	// Args excludes the executable itself.
	Args []string
	Env  environ.Env
	// PrintVars are echoed before the child starts.
	PrintVars []string
	Overlay   dotenv.Overlay
}

// Launcher prepares and runs tools from one bundle.
type Launcher struct {
	Layout bundle.Layout
	Config config.Config
	// Environ is the inherited environment in os.Environ form.
	Environ []string
	// Getwd returns the directory the .env search starts from.
	Getwd func() (string, error)
	GOOS  string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a launcher for layout using the live process state.
func New(layout bundle.Layout, cfg config.Config) *Launcher {
	return &Launcher{
		Layout:  layout,
		Config:  cfg,
		Environ: os.Environ(),
		Getwd:   os.Getwd,
		GOOS:    runtime.GOOS,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

func (l *Launcher) goos() string {
	if l.GOOS == "" {
		return runtime.GOOS
	}
	return l.GOOS
}

// ListSeparator returns the path-list separator used on goos.
func ListSeparator(goos string) string {
	if goos == runtime.GOOS {
		return string(os.PathListSeparator)
	}
	if goos == "windows" {
		return ";"
	}
	return ":"
}

// Prepare resolves the executable and builds the child environment and
// argument vector. It starts nothing. A missing executable is reported as
// *bundle.ToolNotFoundError before any other work.
func (l *Launcher) Prepare(req Request) (*Invocation, error) {
	goos := l.goos()
	path, err := l.Layout.Resolve(req.Tool, goos)
	if err != nil {
		return nil, err
	}

	base := environ.FromList(l.Environ)
	overlay := l.loadOverlay(base)
	base = base.Merge(overlay.Vars)

	plan, err := l.plan(req, goos)
	if err != nil {
		return nil, err
	}

	env := environ.Build(base, plan.lists, ListSeparator(goos))
	if req.Options.DebugPlugins {
		env.Set(VarDebugPlugins, "1")
	}

	toolArgs, err := l.Config.ToolArgs(req.Tool.Name)
	if err != nil {
		return nil, err
	}
	args := make([]string, 0, len(plan.extras)+len(toolArgs)+len(req.Args))
	args = append(args, plan.extras...)
	args = append(args, toolArgs...)
	args = append(args, req.Args...)

	return &Invocation{
		Tool:      req.Tool,
		Path:      path,
		Args:      args,
		Env:       env,
		PrintVars: plan.printVars,
		Overlay:   overlay,
	}, nil
}

func (l *Launcher) loadOverlay(inherited environ.Env) dotenv.Overlay {
	empty := dotenv.Overlay{Vars: map[string]string{}}
	if !l.Config.DotenvEnabled() || l.Getwd == nil {
		return empty
	}
	wd, err := l.Getwd()
	if err != nil {
		qtlog.Warn("cannot determine working directory, skipping dotenv overlay", "error", err)
		return empty
	}
	overlay, err := dotenv.Load(wd, l.Layout.SitePackagesDir(), inherited)
	if err != nil {
		qtlog.Warn("ignoring dotenv overlay", "error", err)
		return empty
	}
	if overlay.Found() {
		qtlog.Debug("dotenv overlay contents", "path", overlay.Path, "vars", redact.Pairs(overlay.Vars))
	}
	return overlay
}

// plan holds the family specific part of an invocation.
type plan struct {
	lists     []environ.PathList
	extras    []string
	printVars []string
}

func (l *Launcher) plan(req Request, goos string) (plan, error) {
	var p plan
	opts := req.Options

	// Every bundled binary needs the bundled plugins and, on Linux, libraries.
	p.lists = append(p.lists, environ.PathList{
		Name:  VarPluginPath,
		After: append([]string{l.Layout.PluginsDir()}, l.Config.PluginPaths...),
	})
	if goos == "linux" {
		p.lists = append(p.lists, environ.PathList{
			Name:  VarLibraryPath,
			After: []string{l.Layout.LibDir()},
		})
	}

	if opts.ToolHelp {
		p.extras = append(p.extras, "--help")
	}

	switch req.Tool.Family {
	case bundle.FamilyDesigner:
		widgets, err := resolveDirs("widget path", opts.WidgetPaths)
		if err != nil {
			return plan{}, err
		}
		widgets = append(widgets, l.Config.WidgetPaths...)
		if opts.ExampleWidgetPath {
			widgets = append(widgets, filepath.Join(l.Layout.ExamplesDir(), exampleWidgetDir))
		}
		if opts.TestExceptionDialog {
			widgets = append(widgets, filepath.Join(l.Layout.ExamplesDir(), badWidgetDir))
		}
		// The trailing empty entry tells PyQt to keep searching its default
		// plugin directory.
		p.lists = append(p.lists, environ.PathList{
			Name:   VarDesignerPath,
			Before: widgets,
			After:  []string{""},
		})
		p.printVars = []string{VarDesignerPath, VarPythonPath, VarPath, VarDebugPlugins, VarPluginPath}

	case bundle.FamilyQML:
		imports, err := resolveDirs("QML import path", opts.QMLImportPaths)
		if err != nil {
			return plan{}, err
		}
		imports = append(imports, l.Config.QMLImportPaths...)
		if opts.Example {
			imports = append(imports, l.Layout.ExamplesDir())
			p.extras = append(p.extras, qmlExampleArgs(req.Tool, l.Layout)...)
		}
		imports = append(imports, l.Layout.QMLDir())
		p.lists = append(p.lists, environ.PathList{
			Name:   VarQMLImportPath,
			Before: imports,
		})
		p.printVars = []string{VarQMLImportPath, VarPythonPath, VarPath, VarDebugPlugins, VarPluginPath}
	}

	if len(p.printVars) > 0 && goos == "linux" {
		p.printVars = append(p.printVars, VarLibraryPath, VarDisplay)
	}

	python := l.pythonPaths()
	p.lists = append(p.lists,
		environ.PathList{Name: VarPythonPath, Before: python},
		environ.PathList{Name: VarPath, Before: python},
	)
	return p, nil
}

func qmlExampleArgs(tool bundle.Tool, layout bundle.Layout) []string {
	if tool.Name == "qmltestrunner" {
		return []string{"-input", filepath.Join(layout.ExamplesDir(), qmlTestExampleFile)}
	}
	return []string{filepath.Join(layout.ExamplesDir(), qmlExampleFile)}
}

// pythonPaths are the interpreter search entries exposed to PyQt plugins.
func (l *Launcher) pythonPaths() []string {
	if len(l.Config.PythonPath) > 0 {
		return append([]string(nil), l.Config.PythonPath...)
	}
	return []string{l.Layout.SitePackagesDir()}
}

func resolveDirs(what string, paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		resolved, err := pathutil.ResolveDir(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", what, err)
		}
		out = append(out, resolved)
	}
	return out, nil
}

// PrintEnvironment writes "NAME: value" or "NAME is not set" for each name.
func PrintEnvironment(w io.Writer, env environ.Env, names ...string) error {
	for _, name := range names {
		var err error
		if value, ok := env.Lookup(name); ok {
			_, err = fmt.Fprintf(w, "%s: %s\n", name, value)
		} else {
			_, err = fmt.Fprintf(w, "%s is not set\n", name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Launch prepares req, prints its diagnostics and runs it to completion.
// The returned code is the child's exit status.
func (l *Launcher) Launch(ctx context.Context, req Request) (int, error) {
	inv, err := l.Prepare(req)
	if err != nil {
		return 0, err
	}

	if len(inv.PrintVars) > 0 {
		if err := PrintEnvironment(l.Stdout, inv.Env, inv.PrintVars...); err != nil {
			return 0, fmt.Errorf("failed to print environment: %w", err)
		}
	}
	qtlog.Debug("launching tool",
		"tool", inv.Tool.Name,
		"path", inv.Path,
		"args", strings.Join(inv.Args, " "),
		"dotenv", inv.Overlay.Path,
		VarPluginPath, inv.Env.Get(VarPluginPath),
		VarPythonPath, inv.Env.Get(VarPythonPath),
		VarPath, inv.Env.Get(VarPath),
	)

	return l.Run(ctx, inv)
}
