// Package accessors provides the convenience methods the shim adds to schema
// classes: counting related records, computing pagination page counts, URI
// escaping for composite primary keys, and SQL-backed traversal of
// many-to-many relationships.
package accessors

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/seamorm/seam/manytomany"
	"github.com/seamorm/seam/schema"
)

// Querier is an interface for executing SQL queries, allowing for testing
// and instrumentation
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Helper bundles the convenience accessors over a database handle and a
// many-to-many resolver. It also implements schema.Traverser, so it can be
// installed on a registry with SetTraverser to back generated accessors.
type Helper struct {
	db  Querier
	res *manytomany.Resolver
	log *zap.Logger
}

// NewHelper creates a helper. A nil logger disables logging.
func NewHelper(db Querier, res *manytomany.Resolver, log *zap.Logger) *Helper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Helper{db: db, res: res, log: log}
}

// RelatedCount counts the records on the far side of relation for record.
// For a one-to-many relation this counts rows of the target table; for the
// intermediate relation of a many-to-many it counts join rows, which equals
// the related count under foreign key integrity.
func (h *Helper) RelatedCount(ctx context.Context, class *schema.Class, record schema.Record, relation string) (int, error) {
	if relation == "" {
		return 0, fmt.Errorf("relation name: %w", ErrMissingArgument)
	}

	rel, err := h.res.Describe(class, relation)
	if err != nil {
		return 0, err
	}

	key, value, ok := rel.Condition.First()
	if !ok {
		return 0, fmt.Errorf("class %s, relationship %s has no join condition", class.Name, relation)
	}
	foreignCol := schema.StripPrefix(key)
	selfCol := schema.StripPrefix(value)

	id, ok := record[selfCol]
	if !ok || id == nil {
		return 0, fmt.Errorf("record has no value for %s: %w", selfCol, ErrMissingArgument)
	}
	if rel.Target == nil {
		return 0, fmt.Errorf("class %s, relationship %s has no target class", class.Name, relation)
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = $1",
		pq.QuoteIdentifier(rel.Target.Table),
		pq.QuoteIdentifier(foreignCol))

	h.log.Debug("counting related records",
		zap.String("class", class.Name),
		zap.String("relation", relation),
		zap.String("query", query))

	var count int
	if err := h.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count related records: %w", ConvertDBError(err))
	}
	return count, nil
}

// Pages returns the number of pages needed to show count records at size
// records per page. A count of zero yields zero pages.
func Pages(count, size int) int {
	if count <= 0 || size <= 0 {
		return 0
	}
	return (count + size - 1) / size
}

// RelatedPages counts the records on the far side of relation and returns
// the number of pages at the given page size. The page size arrives as the
// raw string a caller supplied; an empty value fails with ErrMissingArgument
// and anything but a positive integer with ErrInvalidPageSize.
func (h *Helper) RelatedPages(ctx context.Context, class *schema.Class, record schema.Record, relation, pageSize string) (int, error) {
	if pageSize == "" {
		return 0, fmt.Errorf("page size: %w", ErrMissingArgument)
	}
	size, err := strconv.Atoi(pageSize)
	if err != nil || size <= 0 {
		return 0, fmt.Errorf("page size %q: %w", pageSize, ErrInvalidPageSize)
	}

	count, err := h.RelatedCount(ctx, class, record, relation)
	if err != nil {
		return 0, err
	}
	return Pages(count, size), nil
}

// TraverseManyToMany implements schema.Traverser. It describes the
// intermediate relation, then selects the far-side rows through the join
// table in a single query.
func (h *Helper) TraverseManyToMany(ctx context.Context, class *schema.Class, relation, foreignColumn string, record schema.Record) (any, error) {
	rel, err := h.res.Describe(class, relation)
	if err != nil {
		return nil, err
	}

	meta, _ := rel.Meta(manytomany.MetaKey)
	res, _ := meta.(*manytomany.Resolved)
	if !res.Complete() {
		return nil, fmt.Errorf("class %s, relation %s: %w", class.Name, relation, ErrUnresolved)
	}

	foreignPK := res.ForeignClass.PrimaryKey()[0]
	query := fmt.Sprintf(`
		SELECT t.*
		FROM %s t
		INNER JOIN %s j ON t.%s = j.%s
		WHERE j.%s = $1
	`,
		pq.QuoteIdentifier(res.ForeignClass.Table),
		pq.QuoteIdentifier(res.MapClass.Table),
		pq.QuoteIdentifier(foreignPK),
		pq.QuoteIdentifier(res.MapTo),
		pq.QuoteIdentifier(res.MapFrom))

	id, ok := record[res.MapFrom]
	if !ok || id == nil {
		return nil, fmt.Errorf("record has no value for %s: %w", res.MapFrom, ErrMissingArgument)
	}

	h.log.Debug("traversing many-to-many relation",
		zap.String("class", class.Name),
		zap.String("relation", relation),
		zap.String("query", query))

	rows, err := h.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to traverse many-to-many relation: %w", ConvertDBError(err))
	}
	defer rows.Close()

	results, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// scanRows scans all rows into records keyed by column name.
func scanRows(rows *sql.Rows) ([]schema.Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	results := make([]schema.Record, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		dests := make([]any, len(columns))
		for i := range values {
			dests[i] = &values[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		record := make(schema.Record, len(columns))
		for i, col := range columns {
			record[col] = values[i]
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return results, nil
}
