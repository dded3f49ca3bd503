package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileNames are the workspace config files FindFile looks for, in order.
var FileNames = []string{
	"forage-runtime.toml",
	"forage-runtime.yaml",
	"forage-runtime.yml",
}

// FindFile returns the first config file present in root, or "".
func FindFile(root string) string {
	for _, name := range FileNames {
		path := filepath.Join(root, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// LoadFile reads an Input from a TOML or YAML file, chosen by extension.
func LoadFile(path string) (Input, error) {
	var in Input

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		meta, err := toml.DecodeFile(path, &in)
		if err != nil {
			return Input{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return Input{}, fmt.Errorf("unknown keys in %s: %v", path, undecoded)
		}
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return Input{}, fmt.Errorf("failed to read config: %w", err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&in); err != nil {
			return Input{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return Input{}, fmt.Errorf("unsupported config format %q (want .toml, .yaml or .yml)", ext)
	}

	return in, nil
}
