// Package schemafile loads schema class definitions from YAML files and
// builds a populated registry plus many-to-many declarations from them.
package schemafile

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/seamorm/seam/manytomany"
	"github.com/seamorm/seam/schema"
)

// File is the top-level structure of a schema definitions file.
type File struct {
	Classes []ClassDef `yaml:"classes"`
}

// ClassDef defines one schema class.
type ClassDef struct {
	Name       string          `yaml:"name"`
	Parent     string          `yaml:"parent"`
	Table      string          `yaml:"table"`
	Columns    []string        `yaml:"columns"`
	Primary    []string        `yaml:"primary"`
	BelongsTo  []RelationDef   `yaml:"belongs_to"`
	HasMany    []RelationDef   `yaml:"has_many"`
	ManyToMany []ManyToManyDef `yaml:"many_to_many"`
}

// RelationDef defines a one-to-many or many-to-one relationship.
type RelationDef struct {
	Name      string         `yaml:"name"`
	Target    string         `yaml:"target"`
	Condition []ConditionDef `yaml:"condition"`
}

// ConditionDef is one join predicate: the foreign column on the target table
// matched against the self column on the declaring table.
type ConditionDef struct {
	Foreign string `yaml:"foreign"`
	Self    string `yaml:"self"`
}

// ManyToManyDef defines a many-to-many declaration routed through an already
// declared intermediate relation.
type ManyToManyDef struct {
	Method   string         `yaml:"method"`
	Relation string         `yaml:"relation"`
	Accessor string         `yaml:"accessor"`
	Attrs    map[string]any `yaml:"attrs"`
}

// Load reads a schema definitions file and builds the registry and resolver.
func Load(path string, log *zap.Logger) (*schema.Registry, *manytomany.Resolver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open schema file: %w", err)
	}
	defer f.Close()

	return Parse(f, log)
}

// Parse decodes schema definitions from r and builds the registry and
// resolver. Classes are created first so relationship targets can be
// declared in any order; parents must precede their subclasses.
func Parse(r io.Reader, log *zap.Logger) (*schema.Registry, *manytomany.Resolver, error) {
	var file File
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, nil, fmt.Errorf("failed to decode schema file: %w", err)
	}

	registry := schema.NewRegistry()
	resolver := manytomany.NewResolver(log)

	// First pass: create and register every class.
	for _, def := range file.Classes {
		if def.Name == "" {
			return nil, nil, fmt.Errorf("schema file: class with empty name")
		}

		var class *schema.Class
		if def.Parent != "" {
			derived, err := registry.Derive(def.Name, def.Parent)
			if err != nil {
				return nil, nil, fmt.Errorf("class %s: %w", def.Name, err)
			}
			class = derived
		} else {
			class = schema.NewClass(def.Name)
			if err := registry.Register(class); err != nil {
				return nil, nil, err
			}
		}

		if def.Table != "" {
			class.Table = def.Table
		}
		if len(def.Columns) > 0 {
			class.Columns = def.Columns
		}
		if len(def.Primary) > 0 {
			class.Primary = def.Primary
		}
	}

	// Second pass: declare relationships now that every target exists.
	for _, def := range file.Classes {
		class, _ := registry.Get(def.Name)

		for _, rd := range def.BelongsTo {
			target, cond, err := resolveRelation(registry, def.Name, rd)
			if err != nil {
				return nil, nil, err
			}
			if _, err := class.BelongsTo(rd.Name, target, cond); err != nil {
				return nil, nil, err
			}
		}
		for _, rd := range def.HasMany {
			target, cond, err := resolveRelation(registry, def.Name, rd)
			if err != nil {
				return nil, nil, err
			}
			if _, err := class.HasMany(rd.Name, target, cond); err != nil {
				return nil, nil, err
			}
		}
	}

	// Third pass: many-to-many declarations on top of the intermediate
	// relations declared above.
	for _, def := range file.Classes {
		class, _ := registry.Get(def.Name)

		for _, md := range def.ManyToMany {
			if err := resolver.Declare(class, md.Method, md.Relation, md.Accessor, md.Attrs); err != nil {
				return nil, nil, err
			}
		}
	}

	return registry, resolver, nil
}

func resolveRelation(registry *schema.Registry, className string, rd RelationDef) (*schema.Class, *schema.Condition, error) {
	if rd.Name == "" {
		return nil, nil, fmt.Errorf("class %s: relationship with empty name", className)
	}
	target, ok := registry.Get(rd.Target)
	if !ok {
		return nil, nil, fmt.Errorf("class %s, relationship %s: target %s: %w",
			className, rd.Name, rd.Target, schema.ErrUnknownClass)
	}

	cond := schema.NewCondition()
	for _, cd := range rd.Condition {
		if cd.Foreign == "" || cd.Self == "" {
			return nil, nil, fmt.Errorf("class %s, relationship %s: condition pair needs both foreign and self columns",
				className, rd.Name)
		}
		cond.And(cd.Foreign, cd.Self)
	}
	return target, cond, nil
}
