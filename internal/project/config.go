package project

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the decoded ca65.toml manifest: workspace-wide defaults that
// workspace/didChangeConfiguration overrides take precedence over.
type Config struct {
	IncludeDirs    []string `toml:"include-dirs"`
	BinIncludeDirs []string `toml:"bin-include-dirs"`
	AutoInclude    []string `toml:"auto-include-extensions"`
	Extensions     []string `toml:"additional-extensions"`

	ImplicitImports     bool `toml:"implicit-imports"`
	SmartFolding        bool `toml:"smart-folding"`
	AnonymousLabelHints bool `toml:"anonymous-label-index-hints"`
	ImportFromHints     bool `toml:"import-from-hints"`
}

// DefaultConfig mirrors the built-in defaults used when no ca65.toml exists.
func DefaultConfig() Config {
	return Config{
		Extensions:          []string{".s", ".asm", ".inc"},
		ImplicitImports:     true,
		SmartFolding:        true,
		AnonymousLabelHints: true,
		ImportFromHints:     true,
	}
}

// LoadConfig reads and decodes path, falling back to DefaultConfig for any
// field left unset in the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, err
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultConfig().Extensions
	}
	return cfg, nil
}
