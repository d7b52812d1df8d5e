package accessors

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/seamorm/seam/schema"
)

// EscapeKey renders a composite primary key as a single URI-safe path
// segment. Each value is percent-escaped (including any "/" it contains)
// and the values are joined with "/".
func EscapeKey(values ...string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = url.PathEscape(v)
	}
	return strings.Join(escaped, "/")
}

// UnescapeKey reverses EscapeKey.
func UnescapeKey(s string) ([]string, error) {
	if s == "" {
		return nil, fmt.Errorf("key: %w", ErrMissingArgument)
	}

	parts := strings.Split(s, "/")
	values := make([]string, len(parts))
	for i, p := range parts {
		v, err := url.PathUnescape(p)
		if err != nil {
			return nil, fmt.Errorf("invalid key segment %q: %w", p, err)
		}
		values[i] = v
	}
	return values, nil
}

// KeyOf builds the escaped composite key of a record from its class's
// primary key columns.
func KeyOf(class *schema.Class, record schema.Record) (string, error) {
	pk := class.PrimaryKey()
	values := make([]string, len(pk))
	for i, col := range pk {
		v, ok := record[col]
		if !ok || v == nil {
			return "", fmt.Errorf("record has no value for primary key column %s: %w", col, ErrMissingArgument)
		}
		values[i] = fmt.Sprint(v)
	}
	return EscapeKey(values...), nil
}
