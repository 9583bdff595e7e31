package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/MethodJiao/qttools/pkg/bundle"
	"github.com/MethodJiao/qttools/pkg/dotenv"
	qtlog "github.com/MethodJiao/qttools/pkg/log"
)

// CheckLevel represents the severity level of a preflight check
type CheckLevel int

const (
	// LevelError indicates a failure that prevents tools from launching
	LevelError CheckLevel = iota
	// LevelWarn indicates a problem that only affects some tools
	LevelWarn
	// LevelInfo indicates informational output
	LevelInfo
)

func (l CheckLevel) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	default:
		return "ok"
	}
}

// CheckResult represents the result of a single preflight check
type CheckResult struct {
	Name    string     // Check name
	Level   CheckLevel // Severity level
	Message string     // Human-readable message
	Error   error      // Underlying error (if any)
}

// Check represents a single preflight check
type Check interface {
	// Name returns the check name
	Name() string
	// Run executes the check and returns a CheckResult
	Run(ctx context.Context) CheckResult
}

// Checker runs a collection of preflight checks
type Checker struct {
	checks []Check
}

// Config configures the preflight checker
type Config struct {
	Layout bundle.Layout
	// GOOS selects the executable naming and display checks; defaults to runtime.GOOS.
	GOOS string
	// WorkDir is where .env discovery starts; the check is skipped when empty.
	WorkDir string
	// Getenv reads the inherited environment; defaults to os.Getenv.
	Getenv func(string) string
}

// NewChecker creates a new preflight checker with the given configuration
func NewChecker(cfg Config) *Checker {
	goos := cfg.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	getenv := cfg.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	c := &Checker{}
	c.checks = append(c.checks,
		&RootCheck{Layout: cfg.Layout},
		&ToolsCheck{Layout: cfg.Layout, GOOS: goos},
		&PluginsCheck{Layout: cfg.Layout},
	)
	if cfg.WorkDir != "" {
		c.checks = append(c.checks, &DotenvCheck{Dir: cfg.WorkDir})
	}
	if goos == "linux" {
		c.checks = append(c.checks, &DisplayCheck{Getenv: getenv})
	}
	return c
}

// Run executes all registered checks. The error is non-nil when any
// error-level check failed.
func (c *Checker) Run(ctx context.Context) ([]CheckResult, error) {
	results := make([]CheckResult, 0, len(c.checks))
	var failures []string

	for _, check := range c.checks {
		result := check.Run(ctx)
		results = append(results, result)
		qtlog.Debug("preflight check", "check", result.Name, "level", result.Level.String(), "message", result.Message)
		if result.Level == LevelError {
			failures = append(failures, fmt.Sprintf("%s: %s", result.Name, result.Message))
		}
	}

	if len(failures) > 0 {
		return results, fmt.Errorf("preflight checks failed:\n  - %s", strings.Join(failures, "\n  - "))
	}
	return results, nil
}

// RootCheck checks that the toolchain root contains Qt/bin
type RootCheck struct {
	Layout bundle.Layout
}

func (c *RootCheck) Name() string {
	return "root"
}

func (c *RootCheck) Run(ctx context.Context) CheckResult {
	for _, dir := range []string{c.Layout.Root, c.Layout.QtDir(), c.Layout.BinDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			return CheckResult{
				Name:    c.Name(),
				Level:   LevelError,
				Message: fmt.Sprintf("%s does not exist; set --root or QTTOOLS_ROOT to the toolchain directory", dir),
				Error:   err,
			}
		}
		if !info.IsDir() {
			return CheckResult{
				Name:    c.Name(),
				Level:   LevelError,
				Message: fmt.Sprintf("%s is not a directory", dir),
				Error:   fmt.Errorf("not a directory"),
			}
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: fmt.Sprintf("toolchain found at %s", c.Layout.Root),
	}
}

// ToolsCheck checks which table tools are installed
type ToolsCheck struct {
	Layout bundle.Layout
	GOOS   string
}

func (c *ToolsCheck) Name() string {
	return "tools"
}

func (c *ToolsCheck) Run(ctx context.Context) CheckResult {
	all := bundle.Tools()
	var missing []string
	for _, tool := range all {
		if _, err := c.Layout.Resolve(tool, c.GOOS); err != nil {
			missing = append(missing, tool.Name)
		}
	}

	switch {
	case len(missing) == len(all):
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("no tools found in %s", c.Layout.BinDir()),
			Error:   fmt.Errorf("no bundled tools"),
		}
	case len(missing) > 0:
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: fmt.Sprintf("%d of %d tools missing: %s", len(missing), len(all), strings.Join(missing, ", ")),
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: fmt.Sprintf("all %d tools present", len(all)),
	}
}

// PluginsCheck checks the bundled plugin directory
type PluginsCheck struct {
	Layout bundle.Layout
}

func (c *PluginsCheck) Name() string {
	return "plugins"
}

func (c *PluginsCheck) Run(ctx context.Context) CheckResult {
	dir := c.Layout.PluginsDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: fmt.Sprintf("plugin directory %s is not readable; GUI tools may fail to find a platform plugin", dir),
			Error:   err,
		}
	}
	if !hasDir(entries, "platforms") {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: fmt.Sprintf("%s has no platforms plugin directory", dir),
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: fmt.Sprintf("plugins found at %s", dir),
	}
}

func hasDir(entries []os.DirEntry, name string) bool {
	for _, e := range entries {
		if e.IsDir() && e.Name() == name {
			return true
		}
	}
	return false
}

// DotenvCheck reports which .env overlay a launch from Dir would use
type DotenvCheck struct {
	Dir string
}

func (c *DotenvCheck) Name() string {
	return "dotenv"
}

func (c *DotenvCheck) Run(ctx context.Context) CheckResult {
	path, err := dotenv.Find(c.Dir)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: fmt.Sprintf("cannot search for %s from %s", dotenv.FileName, c.Dir),
			Error:   err,
		}
	}
	if path == "" {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelInfo,
			Message: fmt.Sprintf("no %s overlay above %s", dotenv.FileName, c.Dir),
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: fmt.Sprintf("overlay %s (%s=%s)", path, dotenv.DirectoryVar, filepath.Dir(path)),
	}
}

// DisplayCheck warns when no display server is reachable on Linux
type DisplayCheck struct {
	Getenv func(string) string
}

func (c *DisplayCheck) Name() string {
	return "display"
}

func (c *DisplayCheck) Run(ctx context.Context) CheckResult {
	if display := c.Getenv("DISPLAY"); display != "" {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelInfo,
			Message: fmt.Sprintf("DISPLAY=%s", display),
		}
	}
	if wayland := c.Getenv("WAYLAND_DISPLAY"); wayland != "" {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelInfo,
			Message: fmt.Sprintf("WAYLAND_DISPLAY=%s", wayland),
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Level:   LevelWarn,
		Message: "neither DISPLAY nor WAYLAND_DISPLAY is set; GUI tools such as designer will not start",
	}
}
