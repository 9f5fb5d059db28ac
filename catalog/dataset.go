package catalog

import (
	"fmt"
	"os"

	"github.com/ocdb/ocdb-query/query"
	"gopkg.in/yaml.v3"
)

// Dataset is one catalog entry: identifying metadata plus free-form
// attributes that query expressions are matched against.
type Dataset struct {
	ID         string         `yaml:"id" json:"id"`
	Path       string         `yaml:"path" json:"path"`
	Name       string         `yaml:"name" json:"name"`
	Attributes map[string]any `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// attribute resolves a field name against the record. The identifying
// fields are addressable under their own names; everything else comes from
// the attribute map.
func (d *Dataset) attribute(name string) (any, bool) {
	switch name {
	case "id":
		return d.ID, true
	case "path":
		return d.Path, true
	case "name":
		return d.Name, true
	}
	v, ok := d.Attributes[name]
	return v, ok
}

// fieldNames lists all addressable field names of the record
func (d *Dataset) fieldNames() []string {
	names := []string{"id", "path", "name"}
	for name := range d.Attributes {
		names = append(names, name)
	}
	return names
}

// Store is an in-memory dataset catalog
type Store struct {
	datasets []Dataset
}

// NewStore creates a store over the given datasets
func NewStore(datasets []Dataset) (*Store, error) {
	seen := make(map[string]bool)
	for i, ds := range datasets {
		if ds.ID == "" {
			return nil, fmt.Errorf("dataset at index %d is missing an ID", i)
		}
		if seen[ds.ID] {
			return nil, fmt.Errorf("duplicate dataset ID found: %s", ds.ID)
		}
		seen[ds.ID] = true
	}
	return &Store{datasets: datasets}, nil
}

// storeFile is the on-disk layout of a catalog file
type storeFile struct {
	Datasets []Dataset `yaml:"datasets"`
}

// LoadStore reads a YAML catalog file into a store
func LoadStore(file string) (*Store, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read store file '%s': %w", file, err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("EOF: store file '%s' is empty", file)
	}

	var parsed storeFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML store file '%s': %w", file, err)
	}

	return NewStore(parsed.Datasets)
}

// Len returns the number of datasets in the store
func (s *Store) Len() int {
	return len(s.datasets)
}

// Datasets returns all records of the store
func (s *Store) Datasets() []Dataset {
	return append([]Dataset(nil), s.datasets...)
}

// Search returns the datasets matched by the given expression, in store
// order
func (s *Store) Search(q query.Query) ([]Dataset, error) {
	match, err := Compile(q)
	if err != nil {
		return nil, err
	}

	var result []Dataset
	for i := range s.datasets {
		if match(&s.datasets[i]) {
			result = append(result, s.datasets[i])
		}
	}
	return result, nil
}
