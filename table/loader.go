package table

import (
	"fmt"
	"os"
	"sort"

	"go.yaml.in/yaml/v3"
)

// Document is the on-disk layout of a table seed file. JSON documents parse
// as well since JSON is a subset of YAML.
//
//	tables:
//	  main: [1, 2, 3, 4, 5]
type Document[T any] struct {
	Tables map[string][]T `yaml:"tables" json:"tables"`
}

// Parse decodes a seed document and registers every table it declares.
// Tables are registered in name order; it returns the registered names.
func Parse[T any](data []byte, store *Store[T]) ([]string, error) {
	var doc Document[T]
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("table: parsing document: %w", err)
	}
	names := make([]string, 0, len(doc.Tables))
	for name := range doc.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := store.Register(name, doc.Tables[name]); err != nil {
			return nil, fmt.Errorf("table: registering %q: %w", name, err)
		}
	}
	return names, nil
}

// LoadFile reads a seed document from path into store.
func LoadFile[T any](path string, store *Store[T]) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("table: reading %s: %w", path, err)
	}
	names, err := Parse(data, store)
	if err != nil {
		return nil, fmt.Errorf("table: %s: %w", path, err)
	}
	return names, nil
}
