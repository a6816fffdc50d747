package kitchen

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlCatalogFile is the top-level YAML structure for meal catalog files.
type yamlCatalogFile struct {
	Meals []yamlMeal `yaml:"meals"`
}

type yamlMeal struct {
	Name       string  `yaml:"name"`
	Cuisine    string  `yaml:"cuisine"`
	Price      float64 `yaml:"price"`
	Difficulty string  `yaml:"difficulty"`
}

// LoadCatalog reads and validates a meal catalog YAML file.
//
// Precondition: path must point to a YAML file with a top-level "meals" list.
// Postcondition: Returns normalized, validated entries in file order, or an error.
func LoadCatalog(path string) ([]NewMeal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %s: %w", path, err)
	}
	return LoadCatalogFromBytes(data)
}

// LoadCatalogFromBytes parses and validates a meal catalog from YAML bytes.
// Duplicate names within one file are rejected.
func LoadCatalogFromBytes(data []byte) ([]NewMeal, error) {
	var file yamlCatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}

	seen := make(map[string]int, len(file.Meals))
	out := make([]NewMeal, 0, len(file.Meals))
	for i, ym := range file.Meals {
		n := NewMeal{
			Name:       ym.Name,
			Cuisine:    ym.Cuisine,
			Price:      ym.Price,
			Difficulty: Difficulty(ym.Difficulty),
		}.Normalize()
		if err := n.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d (%q): %w", i, ym.Name, err)
		}
		if prev, dup := seen[n.Name]; dup {
			return nil, fmt.Errorf("catalog entry %d: %w: %q also defined at entry %d", i, ErrMealExists, n.Name, prev)
		}
		seen[n.Name] = i
		out = append(out, n)
	}
	return out, nil
}
