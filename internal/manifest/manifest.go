// Package manifest loads desired-state documents. A manifest is a YAML
// file listing typed resources; a directory of manifests is loaded as
// one set, sorted by file name so resource identity collisions are
// deterministic.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/wasconverge/wasconverge/internal/domain"
)

// File is the top-level shape of a manifest document.
type File struct {
	Resources []domain.Resource `yaml:"resources"`
}

// Load reads one manifest file.
func Load(path string) ([]domain.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return f.Resources, nil
}

// LoadDir reads every .yaml/.yml file directly under dir and returns the
// combined resource set. Two resources sharing an identity key is an
// error: the reconciler would otherwise fight itself over one entity.
func LoadDir(dir string) ([]domain.Resource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading manifest dir %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var all []domain.Resource
	seen := make(map[string]string) // resource key -> file
	for _, name := range names {
		resources, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		for i := range resources {
			key := resources[i].Key()
			if prev, dup := seen[key]; dup {
				return nil, fmt.Errorf("%w: %s declared in both %s and %s", domain.ErrAlreadyExists, key, prev, name)
			}
			seen[key] = name
		}
		all = append(all, resources...)
	}
	return all, nil
}
