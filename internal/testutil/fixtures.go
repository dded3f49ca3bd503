package testutil

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/config"
)

//go:embed fixtures/*
var fixturesFS embed.FS

// LoadFixture loads a fixture file by name.
func LoadFixture(name string) ([]byte, error) {
	return fixturesFS.ReadFile("fixtures/" + name)
}

// LoadInputFixture decodes a config file fixture into an Input.
func LoadInputFixture(name string) (config.Input, error) {
	var in config.Input

	data, err := LoadFixture(name)
	if err != nil {
		return in, err
	}

	switch filepath.Ext(name) {
	case ".toml":
		_, err = toml.Decode(string(data), &in)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&in)
	default:
		err = fmt.Errorf("unsupported fixture type: %s", name)
	}
	return in, err
}

// ValidTOMLInput returns the TOML config fixture.
func ValidTOMLInput() (config.Input, error) {
	return LoadInputFixture("forage-runtime.toml")
}

// ValidYAMLInput returns the YAML config fixture.
func ValidYAMLInput() (config.Input, error) {
	return LoadInputFixture("forage-runtime.yaml")
}

// InvalidInput returns a config fixture that fails validation.
func InvalidInput() (config.Input, error) {
	return LoadInputFixture("invalid.toml")
}
