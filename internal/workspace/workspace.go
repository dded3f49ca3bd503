// Package workspace validates sandbox roots and lays out their private state
package workspace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
)

const (
	// StateDirName is the sandbox's private directory under the root.
	// Changes beneath it never trigger a hot reload.
	StateDirName = ".forage-runtime"

	stateSubdir = "state"
	journalFile = "events.jsonl"
)

// ValidateRoot checks that root is an existing, readable directory and
// returns its absolute, symlink-resolved form.
func ValidateRoot(root string) (string, error) {
	if strings.TrimSpace(root) == "" {
		return "", fmt.Errorf("workspace root must not be empty")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("invalid workspace root %q: %w", root, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("workspace root does not exist: %s", abs)
		}
		return "", fmt.Errorf("invalid workspace root %q: %w", abs, err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("cannot stat workspace root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("workspace root is not a directory: %s", resolved)
	}

	f, err := os.Open(resolved)
	if err != nil {
		return "", fmt.Errorf("workspace root is not readable: %w", err)
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && err != io.EOF {
		return "", fmt.Errorf("workspace root is not readable: %w", err)
	}

	return resolved, nil
}

// ResolvePath joins a sandbox-relative path onto root without letting it
// escape, following symlinks the way the sandboxed process would see them.
func ResolvePath(root, rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("path must be relative to the workspace root: %s", rel)
	}
	return securejoin.SecureJoin(root, rel)
}

// RelativePath returns path relative to root using forward slashes, or
// false if path lies outside root.
func RelativePath(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// StateDir returns the private state directory for a sandbox root.
func StateDir(root string) string {
	return filepath.Join(root, StateDirName, stateSubdir)
}

// JournalPath returns the lifecycle event journal for a sandbox root.
func JournalPath(root string) string {
	return filepath.Join(root, StateDirName, journalFile)
}
