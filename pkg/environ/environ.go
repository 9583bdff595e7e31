// Package environ builds child process environments from an inherited
// snapshot. Nothing in this package reads or mutates the live process
// environment.
package environ

import (
	"runtime"
	"sort"
	"strings"
)

// Env maps variable names to values.
type Env map[string]string

// PathList describes entries to insert around the existing value of a
// path-style variable.
type PathList struct {
	Name   string
	Before []string
	After  []string
}

// foldCase is true on platforms where variable names are case-insensitive.
var foldCase = runtime.GOOS == "windows"

// FromList converts os.Environ() style "KEY=value" entries. Entries without
// "=" are ignored; on Windows the "=C:" style drive entries are kept verbatim.
func FromList(list []string) Env {
	env := make(Env, len(list))
	for _, entry := range list {
		// Windows keeps per-drive cwd entries such as "=C:=C:\dir".
		i := strings.Index(entry[min(1, len(entry)):], "=")
		if i < 0 {
			continue
		}
		i += min(1, len(entry))
		env[entry[:i]] = entry[i+1:]
	}
	return env
}

// List renders the environment as sorted "KEY=value" entries for exec.Cmd.Env.
func (e Env) List() []string {
	out := make([]string, 0, len(e))
	for k, v := range e {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// Clone returns a copy of e.
func (e Env) Clone() Env {
	out := make(Env, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Lookup returns the value stored under name, matching case-insensitively on
// Windows.
func (e Env) Lookup(name string) (string, bool) {
	if v, ok := e[name]; ok {
		return v, true
	}
	if foldCase {
		for k, v := range e {
			if strings.EqualFold(k, name) {
				return v, true
			}
		}
	}
	return "", false
}

// Get returns the value stored under name or "".
func (e Env) Get(name string) string {
	v, _ := e.Lookup(name)
	return v
}

// Set stores value under name. On Windows an existing key that differs only
// in case is replaced so the child never sees both Path and PATH.
func (e Env) Set(name, value string) {
	if foldCase {
		for k := range e {
			if k != name && strings.EqualFold(k, name) {
				delete(e, k)
			}
		}
	}
	e[name] = value
}

// Merge returns a copy of e with every pair of overlay applied on top.
func (e Env) Merge(overlay map[string]string) Env {
	out := e.Clone()
	keys := make([]string, 0, len(overlay))
	for k := range overlay {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out.Set(k, overlay[k])
	}
	return out
}

// Join builds the new value of a path-style variable: before, then the
// existing value as one untouched segment, then after. An empty existing
// value contributes no segment, so an unset variable never gains a stray
// separator. Empty strings inside before or after are kept as given.
func Join(before []string, existing string, after []string, sep string) string {
	parts := make([]string, 0, len(before)+len(after)+1)
	parts = append(parts, before...)
	if existing != "" {
		parts = append(parts, existing)
	}
	parts = append(parts, after...)
	return strings.Join(parts, sep)
}

// AddToPathList returns the augmented value for one variable of env.
func AddToPathList(env Env, list PathList, sep string) string {
	return Join(list.Before, env.Get(list.Name), list.After, sep)
}

// Build applies lists in order to a copy of base and returns it. A later list
// naming the same variable sees the result of the earlier one. Applying the
// same list twice inserts its entries twice.
func Build(base Env, lists []PathList, sep string) Env {
	env := base.Clone()
	for _, list := range lists {
		env.Set(list.Name, AddToPathList(env, list, sep))
	}
	return env
}
