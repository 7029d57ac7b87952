package store

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

type ListOption func(sq.SelectBuilder) sq.SelectBuilder

func ByID(ids ...int) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"id": ids})
	}
}

func ByOrganization(id int) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"organization_id": id})
	}
}

func ByContentView(id int) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"content_view_id": id})
	}
}

func ByProduct(id int) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"product_id": id})
	}
}

func ByRepository(ids ...int) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"repository_id": ids})
	}
}

func ByContentType(contentType string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"content_type": contentType})
	}
}

func ByName(name string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"name": name})
	}
}

// ByNameLike matches names containing term, case-insensitively.
func ByNameLike(term string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Expr(`name ILIKE ? ESCAPE '\'`, "%"+escapeLike(term)+"%"))
	}
}

func ByLabel(label string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"label": label})
	}
}

func ByLogin(login string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"login": login})
	}
}

func ByJobCategory(category string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"job_category": category})
	}
}

func ByResource(resourceType string, id int) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"resource_type": resourceType, "resource_id": id})
	}
}

func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Limit(limit)
	}
}

func WithOffset(offset uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Offset(offset)
	}
}

type SortParam struct {
	Field string
	Desc  bool
}

var sortableColumns = map[string]bool{
	"id":         true,
	"name":       true,
	"label":      true,
	"created_at": true,
}

func WithDefaultSort() ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.OrderBy("id")
	}
}

// WithSort orders by the given fields, ignoring unknown ones. id is always the tie-breaker.
func WithSort(sorts []SortParam) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		var orderClauses []string
		for _, s := range sorts {
			if !sortableColumns[s.Field] {
				continue
			}
			if s.Desc {
				orderClauses = append(orderClauses, s.Field+" DESC")
			} else {
				orderClauses = append(orderClauses, s.Field+" ASC")
			}
		}
		orderClauses = append(orderClauses, "id")
		return b.OrderBy(orderClauses...)
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func list[T any](ctx context.Context, db QueryInterceptor, builder sq.SelectBuilder, opts []ListOption, scan func(rowScanner) (T, error)) ([]T, error) {
	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func count(ctx context.Context, db QueryInterceptor, table string, opts []ListOption) (int, error) {
	builder := sq.Select("COUNT(*)").From(table)
	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var n int
	err = db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func ints(ctx context.Context, db QueryInterceptor, query string, args ...any) ([]int, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
