// Package dotenv discovers and parses the optional .env overlay that is
// merged into a tool's environment before path augmentation.
package dotenv

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	qtlog "github.com/MethodJiao/qttools/pkg/log"
	"github.com/MethodJiao/qttools/pkg/pathutil"
)

// FileName is the overlay file searched for.
const FileName = ".env"

// Variables added to every loaded overlay.
const (
	DirectoryVar    = "DOT_ENV_DIRECTORY"
	SitePackagesVar = "SITE_PACKAGES"
)

// Overlay is the result of Load. Path is empty when no file was found.
type Overlay struct {
	Path string
	Vars map[string]string
}

// Found reports whether an overlay file was discovered.
func (o Overlay) Found() bool {
	return o.Path != ""
}

// Find walks from start up to the filesystem root and returns the first
// regular file named .env, or "" when there is none.
func Find(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", start, err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		info, err := os.Stat(candidate)
		switch {
		case err == nil && info.Mode().IsRegular():
			return candidate, nil
		case err != nil && !os.IsNotExist(err):
			qtlog.Debug("skipping unreadable dotenv candidate", "path", candidate, "error", err)
		}

		if pathutil.IsFilesystemRoot(dir) {
			return "", nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Parse reads KEY=VALUE pairs. Lines that cannot be parsed are skipped.
// References such as ${NAME} expand against earlier keys of the file first
// and then against lookup.
func Parse(r io.Reader, lookup map[string]string) (map[string]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	keys, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		// The parser's error quotes the remaining file contents.
		qtlog.Debug("dotenv file has malformed lines, parsing line by line")
		return parseLines(data, lookup), nil
	}
	if len(lookup) == 0 {
		delete(keys, "")
		return keys, nil
	}

	expanded, err := godotenv.Parse(io.MultiReader(strings.NewReader(seed(lookup)), bytes.NewReader(data)))
	if err != nil {
		qtlog.Debug("dotenv expansion failed, parsing line by line")
		return parseLines(data, lookup), nil
	}
	vars := make(map[string]string, len(keys))
	for k := range keys {
		if k != "" {
			vars[k] = expanded[k]
		}
	}
	return vars, nil
}

// parseLines parses each line on its own so one bad line cannot hide the
// rest. Multi-line quoted values are not supported in this mode.
func parseLines(data []byte, lookup map[string]string) map[string]string {
	vars := map[string]string{}
	scope := make(map[string]string, len(lookup))
	for k, v := range lookup {
		scope[k] = v
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		own, err := godotenv.Unmarshal(line)
		if err != nil {
			qtlog.Debug("skipping malformed dotenv line", "line", lineNo)
			continue
		}
		pairs, err := godotenv.Unmarshal(seed(scope) + line)
		if err != nil {
			pairs = own
		}
		for k := range own {
			if k == "" {
				qtlog.Debug("skipping dotenv line without a key", "line", lineNo)
				continue
			}
			vars[k] = pairs[k]
			scope[k] = pairs[k]
		}
	}
	return vars
}

// seed renders lookup as single-quoted assignments so the parser can
// resolve references to them. Names the parser cannot reference and values
// that cannot be single-quoted are left out.
func seed(lookup map[string]string) string {
	names := make([]string, 0, len(lookup))
	for k := range lookup {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, k := range names {
		v := lookup[k]
		if !referenceable(k) || strings.ContainsAny(v, "'\r\n") || strings.HasSuffix(v, `\`) {
			continue
		}
		fmt.Fprintf(&b, "%s='%s'\n", k, v)
	}
	return b.String()
}

// referenceable reports whether ${name} can refer to name.
func referenceable(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
			return false
		}
	}
	return true
}

// Load finds the overlay starting at start and parses it. When a file is
// found the overlay also carries DOT_ENV_DIRECTORY and SITE_PACKAGES; values
// from the file take precedence over both. Values in the file may refer to
// those two variables and to inherited. A missing file is not an error.
func Load(start, sitePackages string, inherited map[string]string) (Overlay, error) {
	path, err := Find(start)
	if err != nil {
		return Overlay{}, err
	}
	if path == "" {
		return Overlay{Vars: map[string]string{}}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Overlay{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	context := map[string]string{
		DirectoryVar:    filepath.Dir(path),
		SitePackagesVar: sitePackages,
	}
	lookup := make(map[string]string, len(inherited)+len(context))
	for k, v := range inherited {
		lookup[k] = v
	}
	for k, v := range context {
		lookup[k] = v
	}

	pairs, err := Parse(f, lookup)
	if err != nil {
		return Overlay{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	vars := context
	for k, v := range pairs {
		vars[k] = v
	}
	qtlog.Info("loaded dotenv overlay", "path", path, "keys", len(pairs))
	return Overlay{Path: path, Vars: vars}, nil
}
