package launcher

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/MethodJiao/qttools/pkg/bundle"
	"github.com/MethodJiao/qttools/pkg/config"
	"github.com/MethodJiao/qttools/pkg/dotenv"
	"github.com/MethodJiao/qttools/pkg/environ"
)

const fakeTool = `#!/bin/sh
echo "args:$*"
echo "plugins:$QT_PLUGIN_PATH"
echo "overlay:$FROM_DOTENV"
exit ${FAKE_EXIT:-0}
`

// newBundle creates a toolchain root with the given tools installed as
// shell scripts.
func newBundle(t *testing.T, tools ...string) bundle.Layout {
	t.Helper()
	root := filepath.Join(t.TempDir(), "pyqt5_tools")
	layout := bundle.Layout{Root: root}
	for _, dir := range []string{layout.BinDir(), layout.PluginsDir(), layout.QMLDir(), layout.ExamplesDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	for _, name := range tools {
		path := filepath.Join(layout.BinDir(), name)
		if err := os.WriteFile(path, []byte(fakeTool), 0755); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return layout
}

func newLauncher(layout bundle.Layout, environ ...string) *Launcher {
	disabled := false
	return &Launcher{
		Layout:  layout,
		Config:  config.Config{Dotenv: &disabled},
		Environ: environ,
		Getwd:   os.Getwd,
		GOOS:    "linux",
		Stdin:   strings.NewReader(""),
		Stdout:  &bytes.Buffer{},
		Stderr:  &bytes.Buffer{},
	}
}

func tool(t *testing.T, name string) bundle.Tool {
	t.Helper()
	tl, ok := bundle.Lookup(name)
	if !ok {
		t.Fatalf("unknown tool %q", name)
	}
	return tl
}

func TestPrepareToolNotFound(t *testing.T) {
	layout := newBundle(t)
	l := newLauncher(layout)

	_, err := l.Prepare(Request{Tool: tool(t, "lconvert")})
	var notFound *bundle.ToolNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Prepare() error = %v, want ToolNotFoundError", err)
	}
	if notFound.Path != filepath.Join(layout.BinDir(), "lconvert") {
		t.Fatalf("ToolNotFoundError.Path = %q", notFound.Path)
	}
}

func TestPreparePlainTool(t *testing.T) {
	layout := newBundle(t, "uic")
	l := newLauncher(layout, "PATH=/usr/bin", "HOME=/home/dev", "UNRELATED=keep")
	l.Config.PythonPath = []string{"/py/lib", "/py/site-packages"}

	inv, err := l.Prepare(Request{Tool: tool(t, "uic"), Args: []string{"-o", "ui_form.py", "form.ui"}})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if inv.Path != filepath.Join(layout.BinDir(), "uic") {
		t.Errorf("Path = %q", inv.Path)
	}
	if !reflect.DeepEqual(inv.Args, []string{"-o", "ui_form.py", "form.ui"}) {
		t.Errorf("Args = %q", inv.Args)
	}
	if inv.PrintVars != nil {
		t.Errorf("PrintVars = %q, want none for plain tools", inv.PrintVars)
	}

	want := environ.Env{
		"HOME":            "/home/dev",
		"UNRELATED":       "keep",
		"PATH":            "/py/lib:/py/site-packages:/usr/bin",
		"PYTHONPATH":      "/py/lib:/py/site-packages",
		"QT_PLUGIN_PATH":  layout.PluginsDir(),
		"LD_LIBRARY_PATH": layout.LibDir(),
	}
	if !reflect.DeepEqual(inv.Env, want) {
		t.Errorf("Env = %v\nwant %v", inv.Env, want)
	}
}

func TestPrepareDefaultsPythonPathToSitePackages(t *testing.T) {
	layout := newBundle(t, "lrelease")
	l := newLauncher(layout)
	l.GOOS = "darwin"

	inv, err := l.Prepare(Request{Tool: tool(t, "lrelease")})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if got := inv.Env["PYTHONPATH"]; got != layout.SitePackagesDir() {
		t.Errorf("PYTHONPATH = %q, want %q", got, layout.SitePackagesDir())
	}
	if _, ok := inv.Env["LD_LIBRARY_PATH"]; ok {
		t.Error("LD_LIBRARY_PATH set on darwin")
	}
}

func TestPrepareDesigner(t *testing.T) {
	layout := newBundle(t, "designer")
	a := t.TempDir()
	b := t.TempDir()
	l := newLauncher(layout, "PYQTDESIGNERPATH=/orig", "DISPLAY=:0")
	l.Config.WidgetPaths = []string{"/configured"}

	inv, err := l.Prepare(Request{
		Tool: tool(t, "designer"),
		Args: []string{"form.ui"},
		Options: Options{
			WidgetPaths:         []string{a, b},
			ExampleWidgetPath:   true,
			TestExceptionDialog: true,
			ToolHelp:            true,
			DebugPlugins:        true,
		},
	})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	ra, _ := filepath.EvalSymlinks(a)
	rb, _ := filepath.EvalSymlinks(b)
	wantDesigner := strings.Join([]string{
		ra, rb, "/configured",
		filepath.Join(layout.ExamplesDir(), "examplebuttonplugin"),
		filepath.Join(layout.ExamplesDir(), "badplugin"),
		"/orig", "",
	}, ":")
	if got := inv.Env[VarDesignerPath]; got != wantDesigner {
		t.Errorf("PYQTDESIGNERPATH = %q\nwant %q", got, wantDesigner)
	}
	if got := inv.Env[VarDebugPlugins]; got != "1" {
		t.Errorf("QT_DEBUG_PLUGINS = %q, want 1", got)
	}
	if !reflect.DeepEqual(inv.Args, []string{"--help", "form.ui"}) {
		t.Errorf("Args = %q", inv.Args)
	}
	wantPrint := []string{VarDesignerPath, VarPythonPath, VarPath, VarDebugPlugins, VarPluginPath, VarLibraryPath, VarDisplay}
	if !reflect.DeepEqual(inv.PrintVars, wantPrint) {
		t.Errorf("PrintVars = %q, want %q", inv.PrintVars, wantPrint)
	}
}

func TestPrepareDesignerWidgetPathOrder(t *testing.T) {
	layout := newBundle(t, "designer")
	root := t.TempDir()
	for _, d := range []string{"a", "b"} {
		if err := os.Mkdir(filepath.Join(root, d), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	realRoot, _ := filepath.EvalSymlinks(root)
	l := newLauncher(layout, "PYQTDESIGNERPATH=/existing")

	inv, err := l.Prepare(Request{
		Tool:    tool(t, "designer"),
		Options: Options{WidgetPaths: []string{filepath.Join(root, "a"), filepath.Join(root, "b")}},
	})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	prefix := filepath.Join(realRoot, "a") + ":" + filepath.Join(realRoot, "b") + ":"
	got := inv.Env[VarDesignerPath]
	if !strings.HasPrefix(got, prefix) || got != prefix+"/existing:" {
		t.Fatalf("PYQTDESIGNERPATH = %q, want %q", got, prefix+"/existing:")
	}
}

func TestPrepareDesignerRejectsMissingWidgetPath(t *testing.T) {
	layout := newBundle(t, "designer")
	l := newLauncher(layout)

	_, err := l.Prepare(Request{
		Tool:    tool(t, "designer"),
		Options: Options{WidgetPaths: []string{filepath.Join(t.TempDir(), "missing")}},
	})
	if err == nil || !strings.Contains(err.Error(), "invalid widget path") {
		t.Fatalf("Prepare() error = %v, want invalid widget path", err)
	}
}

func TestPrepareQMLScene(t *testing.T) {
	layout := newBundle(t, "qmlscene", "qmltestrunner")
	extra := t.TempDir()
	realExtra, _ := filepath.EvalSymlinks(extra)
	l := newLauncher(layout, "QML2_IMPORT_PATH=/user/qml")
	l.GOOS = "darwin"

	inv, err := l.Prepare(Request{
		Tool:    tool(t, "qmlscene"),
		Args:    []string{"--verbose"},
		Options: Options{QMLImportPaths: []string{extra}, Example: true},
	})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	wantImport := strings.Join([]string{realExtra, layout.ExamplesDir(), layout.QMLDir(), "/user/qml"}, ":")
	if got := inv.Env[VarQMLImportPath]; got != wantImport {
		t.Errorf("QML2_IMPORT_PATH = %q\nwant %q", got, wantImport)
	}
	wantArgs := []string{filepath.Join(layout.ExamplesDir(), "qmlapp.qml"), "--verbose"}
	if !reflect.DeepEqual(inv.Args, wantArgs) {
		t.Errorf("Args = %q, want %q", inv.Args, wantArgs)
	}
	wantPrint := []string{VarQMLImportPath, VarPythonPath, VarPath, VarDebugPlugins, VarPluginPath}
	if !reflect.DeepEqual(inv.PrintVars, wantPrint) {
		t.Errorf("PrintVars = %q, want %q", inv.PrintVars, wantPrint)
	}
	if _, ok := inv.Env[VarDebugPlugins]; ok {
		t.Error("QT_DEBUG_PLUGINS set without the flag")
	}

	inv, err = l.Prepare(Request{
		Tool:    tool(t, "qmltestrunner"),
		Options: Options{Example: true, ToolHelp: true},
	})
	if err != nil {
		t.Fatalf("Prepare(qmltestrunner) error = %v", err)
	}
	wantArgs = []string{"--help", "-input", filepath.Join(layout.ExamplesDir(), "qmltest.qml")}
	if !reflect.DeepEqual(inv.Args, wantArgs) {
		t.Errorf("qmltestrunner Args = %q, want %q", inv.Args, wantArgs)
	}
}

func TestPrepareConfiguredToolArgs(t *testing.T) {
	layout := newBundle(t, "linguist")
	l := newLauncher(layout)
	l.Config.Tools = map[string]config.ToolConfig{"linguist": {Args: "-style 'fusion dark'"}}

	inv, err := l.Prepare(Request{Tool: tool(t, "linguist"), Args: []string{"app_de.ts"}})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	want := []string{"-style", "fusion dark", "app_de.ts"}
	if !reflect.DeepEqual(inv.Args, want) {
		t.Fatalf("Args = %q, want %q", inv.Args, want)
	}
}

func TestPrepareAppliesDotenvOverlay(t *testing.T) {
	layout := newBundle(t, "uic")
	project := t.TempDir()
	content := "FROM_DOTENV=yes\nQT_PLUGIN_PATH=/dotenv/plugins\n"
	if err := os.WriteFile(filepath.Join(project, dotenv.FileName), []byte(content), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	l := newLauncher(layout, "QT_PLUGIN_PATH=/inherited")
	l.Config = config.Config{}
	l.Getwd = func() (string, error) { return project, nil }

	inv, err := l.Prepare(Request{Tool: tool(t, "uic")})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if inv.Overlay.Path != filepath.Join(project, dotenv.FileName) {
		t.Errorf("Overlay.Path = %q", inv.Overlay.Path)
	}
	if got := inv.Env["FROM_DOTENV"]; got != "yes" {
		t.Errorf("FROM_DOTENV = %q", got)
	}
	if got := inv.Env[dotenv.DirectoryVar]; got != project {
		t.Errorf("DOT_ENV_DIRECTORY = %q, want %q", got, project)
	}
	if got := inv.Env[dotenv.SitePackagesVar]; got != layout.SitePackagesDir() {
		t.Errorf("SITE_PACKAGES = %q, want %q", got, layout.SitePackagesDir())
	}
	// The overlay replaces the inherited value, augmentation then applies on top.
	if got, want := inv.Env[VarPluginPath], "/dotenv/plugins:"+layout.PluginsDir(); got != want {
		t.Errorf("QT_PLUGIN_PATH = %q, want %q", got, want)
	}
}

func TestPrepareWithoutDotenvAddsOnlyAugmentations(t *testing.T) {
	layout := newBundle(t, "uic")
	dir := t.TempDir()
	if found, _ := dotenv.Find(dir); found != "" {
		t.Skipf("a .env exists above the temp dir (%s)", found)
	}
	l := newLauncher(layout, "KEEP=1")
	l.Config = config.Config{PythonPath: []string{"/py"}}
	l.Getwd = func() (string, error) { return dir, nil }

	inv, err := l.Prepare(Request{Tool: tool(t, "uic")})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	want := environ.Env{
		"KEEP":            "1",
		"PATH":            "/py",
		"PYTHONPATH":      "/py",
		"QT_PLUGIN_PATH":  layout.PluginsDir(),
		"LD_LIBRARY_PATH": layout.LibDir(),
	}
	if !reflect.DeepEqual(inv.Env, want) {
		t.Fatalf("Env = %v\nwant %v", inv.Env, want)
	}
}

func TestPrintEnvironment(t *testing.T) {
	var buf bytes.Buffer
	env := environ.Env{"PATH": "/bin", "EMPTY": ""}
	if err := PrintEnvironment(&buf, env, "PATH", "DISPLAY", "EMPTY"); err != nil {
		t.Fatalf("PrintEnvironment() error = %v", err)
	}
	want := "PATH: /bin\nDISPLAY is not set\nEMPTY: \n"
	if buf.String() != want {
		t.Fatalf("PrintEnvironment() = %q, want %q", buf.String(), want)
	}
}

func TestListSeparator(t *testing.T) {
	if got := ListSeparator("windows"); runtime.GOOS != "windows" && got != ";" {
		t.Errorf("ListSeparator(windows) = %q", got)
	}
	if got := ListSeparator(runtime.GOOS); got != string(os.PathListSeparator) {
		t.Errorf("ListSeparator(host) = %q", got)
	}
}

func skipUnlessUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are shell scripts")
	}
}

func TestLaunchPropagatesExitCode(t *testing.T) {
	skipUnlessUnix(t)
	layout := newBundle(t, "lupdate")

	for _, code := range []int{0, 3} {
		l := newLauncher(layout, "FAKE_EXIT="+strconv.Itoa(code), "PATH="+os.Getenv("PATH"))
		l.GOOS = runtime.GOOS
		out := l.Stdout.(*bytes.Buffer)

		got, err := l.Launch(context.Background(), Request{Tool: tool(t, "lupdate"), Args: []string{"-ts", "app.ts"}})
		if err != nil {
			t.Fatalf("Launch() error = %v", err)
		}
		if got != code {
			t.Errorf("Launch() = %d, want %d", got, code)
		}
		if !strings.Contains(out.String(), "args:-ts app.ts") {
			t.Errorf("child output = %q", out.String())
		}
		if !strings.Contains(out.String(), "plugins:"+layout.PluginsDir()) {
			t.Errorf("child did not see QT_PLUGIN_PATH: %q", out.String())
		}
	}
}

func TestLaunchPrintsDiagnosticsBeforeChild(t *testing.T) {
	skipUnlessUnix(t)
	layout := newBundle(t, "designer")
	l := newLauncher(layout, "PATH="+os.Getenv("PATH"))
	l.GOOS = runtime.GOOS
	out := l.Stdout.(*bytes.Buffer)

	if _, err := l.Launch(context.Background(), Request{Tool: tool(t, "designer")}); err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	lines := strings.Split(out.String(), "\n")
	if !strings.HasPrefix(lines[0], "PYQTDESIGNERPATH: ") {
		t.Fatalf("first line = %q, want PYQTDESIGNERPATH diagnostic", lines[0])
	}
	if !strings.Contains(out.String(), "QT_DEBUG_PLUGINS is not set") {
		t.Fatalf("missing unset diagnostic: %q", out.String())
	}
	if strings.Index(out.String(), "QT_PLUGIN_PATH: ") > strings.Index(out.String(), "args:") {
		t.Fatalf("diagnostics printed after child output: %q", out.String())
	}
}

func TestLaunchSignaledChild(t *testing.T) {
	skipUnlessUnix(t)
	layout := newBundle(t)
	script := "#!/bin/sh\nkill -TERM $$\n"
	if err := os.WriteFile(filepath.Join(layout.BinDir(), "qtdiag"), []byte(script), 0755); err != nil {
		t.Fatalf("write: %v", err)
	}
	l := newLauncher(layout, "PATH="+os.Getenv("PATH"))
	l.GOOS = runtime.GOOS

	got, err := l.Launch(context.Background(), Request{Tool: tool(t, "qtdiag")})
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	if got != 128+15 {
		t.Fatalf("Launch() = %d, want %d", got, 128+15)
	}
}

func TestLaunchStartError(t *testing.T) {
	skipUnlessUnix(t)
	layout := newBundle(t)
	if err := os.WriteFile(filepath.Join(layout.BinDir(), "qdoc"), []byte("not executable"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	l := newLauncher(layout)
	l.GOOS = runtime.GOOS

	_, err := l.Launch(context.Background(), Request{Tool: tool(t, "qdoc")})
	var startErr *StartError
	if !errors.As(err, &startErr) {
		t.Fatalf("Launch() error = %v, want StartError", err)
	}
}
