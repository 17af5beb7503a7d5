// Package shacl checks the merged data graph against a set of shape
// constraints. Shapes target a class; focus nodes are resolved through
// the graph's is_a edges and every constraint is tested per node.
package shacl

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"costkb/internal/ontology"
)

// Constraint is one structural rule over a property path. Zero-valued
// checks are skipped, so a constraint usually carries one or two.
type Constraint struct {
	Path     string   `yaml:"path"`
	MinCount *int     `yaml:"min_count"`
	MaxCount *int     `yaml:"max_count"`
	In       []string `yaml:"in"`
	Datatype string   `yaml:"datatype"` // name | string | number
	Pattern  string   `yaml:"pattern"`

	re *regexp.Regexp
}

// Shape groups constraints under a target class.
type Shape struct {
	ID          string       `yaml:"id"`
	TargetClass string       `yaml:"target_class"`
	Constraints []Constraint `yaml:"constraints"`
}

// ShapeSet is the full shape battery for one run.
type ShapeSet struct {
	Shapes []Shape `yaml:"shapes"`
}

// LoadShapeSet parses and structurally validates the shapes. A shape set
// that cannot be parsed is a definitional error and aborts the run
// before any artifact exists.
func LoadShapeSet(path string) (*ShapeSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shape set: %w", err)
	}
	var set ShapeSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse shape set: %w", err)
	}
	if len(set.Shapes) == 0 {
		return nil, fmt.Errorf("shape set %s declares no shapes", path)
	}

	seen := make(map[string]bool, len(set.Shapes))
	for si := range set.Shapes {
		shape := &set.Shapes[si]
		switch {
		case shape.ID == "":
			return nil, fmt.Errorf("shape set: shape %d has no id", si)
		case seen[shape.ID]:
			return nil, fmt.Errorf("shape set: duplicate shape id %s", shape.ID)
		case !strings.HasPrefix(shape.TargetClass, "/"):
			return nil, fmt.Errorf("shape %s: target_class %q is not a name constant", shape.ID, shape.TargetClass)
		case len(shape.Constraints) == 0:
			return nil, fmt.Errorf("shape %s declares no constraints", shape.ID)
		}
		seen[shape.ID] = true

		for ci := range shape.Constraints {
			c := &shape.Constraints[ci]
			if c.Path == "" {
				return nil, fmt.Errorf("shape %s: constraint %d has no path", shape.ID, ci)
			}
			switch c.Datatype {
			case "", "name", "string", "number":
			default:
				return nil, fmt.Errorf("shape %s path %s: unknown datatype %q", shape.ID, c.Path, c.Datatype)
			}
			if c.Pattern != "" {
				re, err := regexp.Compile(c.Pattern)
				if err != nil {
					return nil, fmt.Errorf("shape %s path %s: bad pattern: %w", shape.ID, c.Path, err)
				}
				c.re = re
			}
			if c.MinCount == nil && c.MaxCount == nil && len(c.In) == 0 && c.Datatype == "" && c.Pattern == "" {
				return nil, fmt.Errorf("shape %s path %s: constraint carries no checks", shape.ID, c.Path)
			}
		}
	}
	return &set, nil
}

// Validate ensures every constraint path is a predicate the ontology
// declares; a shape over an unknown predicate is a configuration error,
// not a data failure.
func (s *ShapeSet) Validate(store *ontology.Store) error {
	for _, shape := range s.Shapes {
		for _, c := range shape.Constraints {
			if !store.Declared(c.Path) {
				return fmt.Errorf("shape %s references undeclared predicate %s", shape.ID, c.Path)
			}
		}
	}
	return nil
}
