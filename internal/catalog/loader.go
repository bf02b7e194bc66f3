package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// cardFile is the on-disk shape of a catalog YAML file.
type cardFile struct {
	Cards []*Definition `yaml:"cards"`
}

// LoadFile parses a single YAML catalog file.
func LoadFile(path string) (Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", path, err)
	}

	var file cardFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}

	catalog := make(Static, len(file.Cards))
	for i, def := range file.Cards {
		if def == nil {
			continue
		}
		if def.ID == "" {
			return nil, fmt.Errorf("catalog file %s: card %d has no id", path, i)
		}
		if _, dup := catalog[def.ID]; dup {
			return nil, fmt.Errorf("catalog file %s: duplicate card id %s", path, def.ID)
		}
		catalog[def.ID] = def
	}
	return catalog, nil
}

// LoadDir loads every .yaml/.yml file in dir into one catalog.
// Later files may not redefine ids from earlier files.
func LoadDir(dir string) (Static, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir %s: %w", dir, err)
	}

	merged := make(Static)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		part, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		for id, def := range part {
			if _, dup := merged[id]; dup {
				return nil, fmt.Errorf("catalog dir %s: card id %s defined twice", dir, id)
			}
			merged[id] = def
		}
	}
	return merged, nil
}
