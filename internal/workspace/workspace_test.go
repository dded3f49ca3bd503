package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateRoot(t *testing.T) {
	dir := t.TempDir()

	got, err := ValidateRoot(dir)
	if err != nil {
		t.Fatalf("ValidateRoot() error: %v", err)
	}

	want, _ := filepath.EvalSymlinks(dir)
	if got != want {
		t.Errorf("ValidateRoot() = %q, want %q", got, want)
	}
}

func TestValidateRoot_Invalid(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		root    string
		wantErr string
	}{
		{"empty", "", "must not be empty"},
		{"blank", "   ", "must not be empty"},
		{"missing", filepath.Join(dir, "nope"), "does not exist"},
		{"file", file, "not a directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateRoot(tt.root)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateRoot(%q) = %v, want error containing %q", tt.root, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRoot_Unreadable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read any directory")
	}

	dir := filepath.Join(t.TempDir(), "locked")
	if err := os.Mkdir(dir, 0000); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(dir, 0755)

	if _, err := ValidateRoot(dir); err == nil {
		t.Error("ValidateRoot() should reject an unreadable directory")
	}
}

func TestResolvePath(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name string
		rel  string
		want string
	}{
		{"dot", ".", root},
		{"child", "src", filepath.Join(root, "src")},
		{"nested", "src/lib", filepath.Join(root, "src", "lib")},
		{"escape is clamped", "../../etc", filepath.Join(root, "etc")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePath(root, tt.rel)
			if err != nil {
				t.Fatalf("ResolvePath(%q) error: %v", tt.rel, err)
			}
			if got != tt.want {
				t.Errorf("ResolvePath(%q) = %q, want %q", tt.rel, got, tt.want)
			}
		})
	}
}

func TestResolvePath_SymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, err := ResolvePath(root, "link/secret")
	if err != nil {
		t.Fatalf("ResolvePath() error: %v", err)
	}
	if !strings.HasPrefix(got, root) {
		t.Errorf("ResolvePath() = %q escaped root %q", got, root)
	}
}

func TestResolvePath_RejectsAbsolute(t *testing.T) {
	if _, err := ResolvePath(t.TempDir(), "/etc"); err == nil {
		t.Error("ResolvePath() should reject absolute paths")
	}
}

func TestRelativePath(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "srv", "ws")

	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{filepath.Join(root, "src", "main.go"), "src/main.go", true},
		{root, ".", true},
		{filepath.Join(root, "..", "other"), "", false},
		{filepath.Join(root, "..dotfile"), "..dotfile", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := RelativePath(root, tt.path)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("RelativePath(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestStateLayout(t *testing.T) {
	root := "/srv/ws"
	if got := StateDir(root); got != filepath.Join(root, ".forage-runtime", "state") {
		t.Errorf("StateDir() = %q", got)
	}
	if got := JournalPath(root); got != filepath.Join(root, ".forage-runtime", "events.jsonl") {
		t.Errorf("JournalPath() = %q", got)
	}
}
