package config

import (
	"os"
	"path/filepath"
	"strings"
)

// resolvePath turns a configured path into an absolute one. Environment
// variables are substituted first, then a leading "~" names the home
// directory, and anything still relative is taken from root.
func resolvePath(root, p string) string {
	if p == "" {
		return ""
	}
	p = os.ExpandEnv(p)
	if rest, ok := homeRelative(p); ok {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, rest)
		}
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	return filepath.Clean(p)
}

// homeRelative reports whether p is "~" or starts with "~/" and returns the
// remainder below the home directory.
func homeRelative(p string) (string, bool) {
	if p == "~" {
		return "", true
	}
	if rest, ok := strings.CutPrefix(p, "~"); ok && rest != "" && os.IsPathSeparator(rest[0]) {
		return rest[1:], true
	}
	return "", false
}
