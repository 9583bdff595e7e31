// Package config loads optional launcher settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/google/shlex"
	"gopkg.in/yaml.v3"
)

// RelPath is the location of the settings file below the XDG config dirs.
var RelPath = filepath.Join("qttools", "config.yaml")

// Config holds launcher settings. The zero value is usable.
type Config struct {
	Root           string                `yaml:"root,omitempty"`
	LogLevel       string                `yaml:"log_level,omitempty"`
	Dotenv         *bool                 `yaml:"dotenv,omitempty"`
	SitePackages   string                `yaml:"site_packages,omitempty"`
	PythonPath     []string              `yaml:"python_path,omitempty"`
	PluginPaths    []string              `yaml:"plugin_paths,omitempty"`
	WidgetPaths    []string              `yaml:"widget_paths,omitempty"`
	QMLImportPaths []string              `yaml:"qml_import_paths,omitempty"`
	Tools          map[string]ToolConfig `yaml:"tools,omitempty"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-"`
}

// ToolConfig holds per-tool settings.
type ToolConfig struct {
	// Args is shell-split and inserted before the forwarded arguments.
	Args string `yaml:"args,omitempty"`
}

// DotenvEnabled reports whether the .env overlay should be loaded.
func (c Config) DotenvEnabled() bool {
	return c.Dotenv == nil || *c.Dotenv
}

// ToolArgs returns the default arguments configured for tool.
func (c Config) ToolArgs(tool string) ([]string, error) {
	tc, ok := c.Tools[tool]
	if !ok || strings.TrimSpace(tc.Args) == "" {
		return nil, nil
	}
	args, err := shlex.Split(tc.Args)
	if err != nil {
		return nil, fmt.Errorf("invalid tools.%s.args %q: %w", tool, tc.Args, err)
	}
	return args, nil
}

// Locate returns the config file to read. An explicit path is returned as
// is; otherwise the XDG config dirs are searched and "" means none exists.
func Locate(explicit string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	path, err := xdg.SearchConfigFile(RelPath)
	if err != nil {
		return ""
	}
	return path
}

// Load reads the file at path. An empty path yields defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config file %s does not exist", path)
		}
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.normalize(filepath.Dir(path)); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// normalize resolves relative paths against the config file's directory and
// validates per-tool arguments.
func (c *Config) normalize(base string) error {
	abs := func(p string) string {
		p = strings.TrimSpace(p)
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	absAll := func(field string, paths []string) ([]string, error) {
		if len(paths) == 0 {
			return nil, nil
		}
		out := make([]string, 0, len(paths))
		for i, p := range paths {
			p = abs(p)
			if p == "" {
				return nil, fmt.Errorf("%s[%d] is empty", field, i)
			}
			out = append(out, p)
		}
		return out, nil
	}

	c.Root = abs(c.Root)
	c.SitePackages = abs(c.SitePackages)

	var err error
	if c.PythonPath, err = absAll("python_path", c.PythonPath); err != nil {
		return err
	}
	if c.PluginPaths, err = absAll("plugin_paths", c.PluginPaths); err != nil {
		return err
	}
	if c.WidgetPaths, err = absAll("widget_paths", c.WidgetPaths); err != nil {
		return err
	}
	if c.QMLImportPaths, err = absAll("qml_import_paths", c.QMLImportPaths); err != nil {
		return err
	}
	for name := range c.Tools {
		if _, err := c.ToolArgs(name); err != nil {
			return err
		}
	}
	return nil
}
