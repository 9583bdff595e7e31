// Package redact masks secret-looking environment values before they reach
// debug logs.
package redact

import (
	"net/url"
	"sort"
	"strings"
)

// Replacement stands in for a masked value.
const Replacement = "***REDACTED***"

var (
	// Common secret suffixes in env keys
	keySuffixes = []string{
		"_TOKEN", "_KEY", "_SECRET", "_PASSWORD", "_PASSWD",
		"_AUTHORIZATION", "_CREDENTIALS",
	}
	exactKeys = []string{
		"API_KEY", "APIKEY", "AUTH_TOKEN", "TOKEN", "PASSWORD", "SECRET",
	}
)

// SensitiveKey reports whether an environment variable name looks like it
// holds a secret.
func SensitiveKey(key string) bool {
	upper := strings.ToUpper(key)
	for _, exact := range exactKeys {
		if upper == exact {
			return true
		}
	}
	for _, suffix := range keySuffixes {
		if strings.HasSuffix(upper, suffix) {
			return true
		}
	}
	return false
}

// Value returns value with secrets masked: the whole value for a sensitive
// key, otherwise only a password embedded in a URL.
func Value(key, value string) string {
	if value == "" {
		return value
	}
	if SensitiveKey(key) {
		return Replacement
	}
	if !strings.Contains(value, "://") {
		return value
	}
	u, err := url.Parse(value)
	if err != nil || u.User == nil {
		return value
	}
	if _, ok := u.User.Password(); !ok {
		return value
	}
	u.User = url.UserPassword(u.User.Username(), Replacement)
	return u.String()
}

// Pairs renders vars as KEY=VALUE strings sorted by key, with secrets masked.
func Pairs(vars map[string]string) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+Value(k, vars[k]))
	}
	return out
}
