package watch

import "strings"

// StatePrefix is the workspace-relative directory that holds runtime
// state. Changes under it never trigger a reload.
const StatePrefix = ".forage-runtime"

// ShouldIgnore reports whether a change to rel, a path relative to the
// workspace root, must not trigger a reload. Matching is case-insensitive
// and accepts either slash style.
func ShouldIgnore(rel string) bool {
	p := strings.ToLower(strings.ReplaceAll(rel, "\\", "/"))
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}

	if strings.HasPrefix(p, ".git") {
		return true
	}
	if strings.Contains(p, "/.git/") || strings.HasSuffix(p, "/.git") {
		return true
	}
	if p == "node_modules" || strings.HasPrefix(p, "node_modules/") || strings.Contains(p, "/node_modules/") || strings.HasSuffix(p, "/node_modules") {
		return true
	}
	return strings.HasPrefix(p, StatePrefix)
}
