package schema

import "sync"

// Kind represents the type of relationship
type Kind int

const (
	KindBelongsTo Kind = iota
	KindHasMany
	KindManyToMany
)

// String returns the string representation of the relationship kind
func (k Kind) String() string {
	switch k {
	case KindBelongsTo:
		return "belongs_to"
	case KindHasMany:
		return "has_many"
	case KindManyToMany:
		return "many_to_many"
	default:
		return "unknown"
	}
}

// Relationship describes a declared relationship between two classes. The
// descriptor itself is immutable after declaration; the meta map is the one
// exception, reserved for extensions that cache derived data on the
// descriptor (see the manytomany package).
type Relationship struct {
	Name       string
	Kind       Kind
	DeclaredOn *Class
	Target     *Class
	Condition  *Condition
	Attrs      map[string]any

	mu   sync.Mutex
	meta map[string]any
}

// SetMeta attaches extension data under the given reserved key. Concurrent
// writers for the same key are last-writer-wins.
func (r *Relationship) SetMeta(key string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.meta == nil {
		r.meta = make(map[string]any)
	}
	r.meta[key] = v
}

// Meta returns extension data previously attached under key.
func (r *Relationship) Meta(key string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.meta[key]
	return v, ok
}
