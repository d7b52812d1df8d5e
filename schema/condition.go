package schema

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Column prefixes used in join conditions. The key side of a pair names the
// column on the related (foreign) table, the value side names the column on
// the declaring table.
const (
	ForeignPrefix = "foreign."
	SelfPrefix    = "self."
)

// Condition is an ordered set of join predicates for a relationship, mapping
// a "foreign.<column>" key to a "self.<column>" value. Insertion order is
// preserved so that "the first pair" is well defined for consumers that only
// support single-column joins.
type Condition struct {
	pairs *orderedmap.OrderedMap[string, string]
}

// On builds a single-pair condition joining foreignColumn to selfColumn.
func On(foreignColumn, selfColumn string) *Condition {
	c := &Condition{pairs: orderedmap.New[string, string]()}
	return c.And(foreignColumn, selfColumn)
}

// And appends another column pair to the condition.
func (c *Condition) And(foreignColumn, selfColumn string) *Condition {
	c.pairs.Set(ForeignPrefix+foreignColumn, SelfPrefix+selfColumn)
	return c
}

// SetRaw stores a pair without adding prefixes. Used by loaders that read
// conditions already written in prefixed form.
func (c *Condition) SetRaw(key, value string) {
	c.pairs.Set(key, value)
}

// First returns the oldest pair of the condition.
func (c *Condition) First() (key, value string, ok bool) {
	if c == nil || c.pairs == nil {
		return "", "", false
	}
	oldest := c.pairs.Oldest()
	if oldest == nil {
		return "", "", false
	}
	return oldest.Key, oldest.Value, true
}

// Len returns the number of pairs.
func (c *Condition) Len() int {
	if c == nil || c.pairs == nil {
		return 0
	}
	return c.pairs.Len()
}

// Pairs returns the condition pairs in insertion order as [key, value] tuples.
func (c *Condition) Pairs() [][2]string {
	if c == nil || c.pairs == nil {
		return nil
	}
	out := make([][2]string, 0, c.pairs.Len())
	for pair := c.pairs.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, [2]string{pair.Key, pair.Value})
	}
	return out
}

// NewCondition returns an empty condition.
func NewCondition() *Condition {
	return &Condition{pairs: orderedmap.New[string, string]()}
}

// StripPrefix removes a "foreign." or "self." prefix from a condition column
// reference, returning the bare column name.
func StripPrefix(s string) string {
	if strings.HasPrefix(s, ForeignPrefix) {
		return strings.TrimPrefix(s, ForeignPrefix)
	}
	return strings.TrimPrefix(s, SelfPrefix)
}
