// Package bundle describes the on-disk layout of the bundled Qt toolchain
// and the static table of tools it ships.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MethodJiao/qttools/pkg/pathutil"
)

// QtDirName is the toolchain directory expected directly under the root.
const QtDirName = "Qt"

// Layout resolves well-known directories below a toolchain root:
//
//	<root>/Qt/bin        tool executables
//	<root>/Qt/plugins    Qt plugins (QT_PLUGIN_PATH)
//	<root>/Qt/qml        QML modules (QML2_IMPORT_PATH)
//	<root>/Qt/lib        shared libraries (LD_LIBRARY_PATH)
//	<root>/examples      example widget plugins and QML files
type Layout struct {
	Root string
	// SitePackages overrides the Python library install directory. The
	// parent of Root is used when empty.
	SitePackages string
}

func (l Layout) QtDir() string       { return filepath.Join(l.Root, QtDirName) }
func (l Layout) BinDir() string      { return filepath.Join(l.QtDir(), "bin") }
func (l Layout) PluginsDir() string  { return filepath.Join(l.QtDir(), "plugins") }
func (l Layout) QMLDir() string      { return filepath.Join(l.QtDir(), "qml") }
func (l Layout) LibDir() string      { return filepath.Join(l.QtDir(), "lib") }
func (l Layout) ExamplesDir() string { return filepath.Join(l.Root, "examples") }

// SitePackagesDir returns the Python library install directory the toolchain
// lives in.
func (l Layout) SitePackagesDir() string {
	if l.SitePackages != "" {
		return l.SitePackages
	}
	return filepath.Dir(l.Root)
}

// ExecutableName appends the platform extension to name.
func ExecutableName(name, goos string) string {
	if goos == "windows" && !strings.EqualFold(filepath.Ext(name), ".exe") {
		return name + ".exe"
	}
	return name
}

// Executable returns the expected path of tool for goos.
func (l Layout) Executable(tool Tool, goos string) string {
	return filepath.Join(l.BinDir(), ExecutableName(tool.Executable, goos))
}

// ToolNotFoundError reports a tool whose executable is missing from the bundle.
type ToolNotFoundError struct {
	Tool string
	Path string
}

func (e *ToolNotFoundError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: unknown tool", e.Tool)
	}
	return fmt.Sprintf("%s: executable not found at %s", e.Tool, e.Path)
}

// Resolve returns the path of tool's executable, or a *ToolNotFoundError when
// it is missing or is a directory.
func (l Layout) Resolve(tool Tool, goos string) (string, error) {
	path := l.Executable(tool, goos)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &ToolNotFoundError{Tool: tool.Name, Path: path}
		}
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", &ToolNotFoundError{Tool: tool.Name, Path: path}
	}
	return path, nil
}

// Candidate is one possible toolchain root and where it came from.
type Candidate struct {
	Path   string
	Source string
	// Explicit candidates were asked for by the user and win as a fallback
	// even when they do not contain a toolchain.
	Explicit bool
}

// ResolveRoot returns the first candidate that contains a Qt directory. When
// none does, the first explicit candidate is returned, then the first
// non-empty one, so the caller reports a missing tool against a real path.
func ResolveRoot(candidates []Candidate) (root, source string, err error) {
	var fallback *Candidate
	for i := range candidates {
		c := candidates[i]
		if strings.TrimSpace(c.Path) == "" {
			continue
		}
		abs, err := filepath.Abs(c.Path)
		if err != nil {
			return "", "", fmt.Errorf("failed to resolve toolchain root %q from %s: %w", c.Path, c.Source, err)
		}
		if pathutil.IsDir(filepath.Join(abs, QtDirName)) {
			return abs, c.Source, nil
		}
		if fallback == nil || (c.Explicit && !fallback.Explicit) {
			c.Path = abs
			fallback = &c
		}
	}
	if fallback == nil {
		return "", "", fmt.Errorf("no toolchain root candidates")
	}
	return fallback.Path, fallback.Source, nil
}

// ExecutableDir returns the directory holding the running binary with
// symlinks resolved, so multi-call links find the real install location.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable %s: %w", exe, err)
	}
	return filepath.Dir(resolved), nil
}
