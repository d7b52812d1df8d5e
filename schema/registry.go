package schema

import (
	"context"
	"fmt"
	"sync"
)

// Traverser loads the records on the far side of a many-to-many relationship
// for a single local record. Implementations live outside this package (the
// accessors package provides a SQL-backed one).
type Traverser interface {
	TraverseManyToMany(ctx context.Context, class *Class, relation, foreignColumn string, record Record) (any, error)
}

// Registry manages all schema classes in the application
type Registry struct {
	mu        sync.RWMutex
	classes   map[string]*Class
	traverser Traverser
}

// NewRegistry creates a new class registry
func NewRegistry() *Registry {
	return &Registry{
		classes: make(map[string]*Class),
	}
}

// Register registers a new class
func (r *Registry) Register(class *Class) error {
	if class == nil || class.Name == "" {
		return fmt.Errorf("class name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.classes[class.Name]; exists {
		return fmt.Errorf("class %s: %w", class.Name, ErrDuplicateClass)
	}
	class.registry = r
	r.classes[class.Name] = class
	return nil
}

// Derive creates and registers a subclass of parentName. The subclass shares
// the parent's table, columns and primary key, and sees the parent's
// relationships and accessors merged with its own.
func (r *Registry) Derive(name, parentName string) (*Class, error) {
	parent, ok := r.Get(parentName)
	if !ok {
		return nil, fmt.Errorf("class %s: %w", parentName, ErrUnknownClass)
	}

	child := NewClass(name)
	child.parent = parent
	child.Table = parent.Table
	child.Columns = append([]string(nil), parent.Columns...)
	child.Primary = append([]string(nil), parent.Primary...)

	if err := r.Register(child); err != nil {
		return nil, err
	}
	return child, nil
}

// Get retrieves a class by name
func (r *Registry) Get(name string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	class, exists := r.classes[name]
	return class, exists
}

// All returns a copy of all registered classes
func (r *Registry) All() map[string]*Class {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*Class, len(r.classes))
	for k, v := range r.classes {
		result[k] = v
	}
	return result
}

// List returns the names of all registered classes
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered classes
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.classes)
}

// Exists checks if a class is registered
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.classes[name]
	return exists
}

// Clear removes all registered classes (useful for testing)
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.classes = make(map[string]*Class)
}

// SetTraverser configures the traverser used by generated many-to-many
// accessors.
func (r *Registry) SetTraverser(t Traverser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.traverser = t
}

// Traverser returns the configured traverser, or nil.
func (r *Registry) Traverser() Traverser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.traverser
}
