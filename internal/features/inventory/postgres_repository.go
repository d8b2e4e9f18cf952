package inventory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// PostgresRepository stores items in a single table with a JSONB data column
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const itemColumns = "id, resource, data, created_by, created_at, updated_at"

func (r *PostgresRepository) EnsureIndexes(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS inventory_items (
			id TEXT PRIMARY KEY,
			resource TEXT NOT NULL,
			data JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_by TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			deleted BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS inventory_items_resource_idx ON inventory_items (resource, deleted, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS inventory_items_data_idx ON inventory_items USING GIN (data)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare inventory table: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, item *Item) error {
	data, err := json.Marshal(item.Data)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO inventory_items (`+itemColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		item.ID, item.Resource, data, item.CreatedBy, item.CreatedAt, item.UpdatedAt,
	)
	return err
}

func (r *PostgresRepository) Get(ctx context.Context, resource Resource, id string) (*Item, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE id = $1 AND resource = $2 AND NOT deleted`,
		id, resource,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return item, err
}

func (r *PostgresRepository) Update(ctx context.Context, resource Resource, id string, data map[string]any) error {
	patch, err := json.Marshal(data)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE inventory_items SET data = data || $3::jsonb, updated_at = $4 WHERE id = $1 AND resource = $2 AND NOT deleted`,
		id, resource, patch, time.Now(),
	)
	return affected(res, err)
}

func (r *PostgresRepository) Delete(ctx context.Context, resource Resource, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE inventory_items SET deleted = TRUE, updated_at = $3 WHERE id = $1 AND resource = $2`,
		id, resource, time.Now(),
	)
	return affected(res, err)
}

func (r *PostgresRepository) List(ctx context.Context, q Query, opts ListOptions) ([]Item, error) {
	where, args := CompileSQL(q)

	order := "created_at"
	if opts.SortBy != "" && opts.SortBy != "created_at" && opts.SortBy != "updated_at" {
		args = append(args, opts.SortBy)
		order = fmt.Sprintf("data->>$%d", len(args))
	} else if opts.SortBy == "updated_at" {
		order = "updated_at"
	}
	dir := "DESC"
	if opts.SortOrder == 1 {
		dir = "ASC"
	}

	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE ` + where + ` ORDER BY ` + order + ` ` + dir
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) Count(ctx context.Context, q Query) (int64, error) {
	where, args := CompileSQL(q)
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory_items WHERE `+where, args...).Scan(&n)
	return n, err
}

func (r *PostgresRepository) Distinct(ctx context.Context, resource Resource, attr string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT data->>$2 AS v FROM inventory_items
		 WHERE resource = $1 AND NOT deleted AND data->>$2 IS NOT NULL AND data->>$2 <> ''
		 ORDER BY v`,
		resource, attr,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Bounds(ctx context.Context, resource Resource, attr string) (any, any, error) {
	schema, err := SchemaFor(resource)
	if err != nil {
		return nil, nil, err
	}

	const filter = ` FROM inventory_items WHERE resource = $1 AND NOT deleted AND data->>$2 IS NOT NULL`
	switch schema.Kind(attr) {
	case KindNumber:
		var lo, hi sql.NullFloat64
		err := r.db.QueryRowContext(ctx, `SELECT MIN((data->>$2)::numeric), MAX((data->>$2)::numeric)`+filter, resource, attr).Scan(&lo, &hi)
		if err != nil || !lo.Valid {
			return nil, nil, err
		}
		return lo.Float64, hi.Float64, nil
	case KindDate:
		var lo, hi sql.NullTime
		err := r.db.QueryRowContext(ctx, `SELECT MIN((data->>$2)::timestamptz), MAX((data->>$2)::timestamptz)`+filter, resource, attr).Scan(&lo, &hi)
		if err != nil || !lo.Valid {
			return nil, nil, err
		}
		return lo.Time.UTC(), hi.Time.UTC(), nil
	}

	var lo, hi sql.NullString
	err = r.db.QueryRowContext(ctx, `SELECT MIN(data->>$2), MAX(data->>$2)`+filter, resource, attr).Scan(&lo, &hi)
	if err != nil || !lo.Valid {
		return nil, nil, err
	}
	return lo.String, hi.String, nil
}

// CompileSQL translates q into a parameterised WHERE clause. Attribute names
// are passed as parameters too.
func CompileSQL(q Query) (string, []any) {
	args := []any{string(q.Resource)}
	parts := []string{"resource = $1", "NOT deleted"}

	param := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, c := range q.Conditions {
		switch c.Op {
		case OpIn:
			parts = append(parts, fmt.Sprintf("data->>%s = ANY(%s)", param(c.Attrs[0]), param(pq.Array(c.Values))))
		case OpContainsAny:
			patterns := make([]string, len(c.Values))
			for i, v := range c.Values {
				patterns[i] = "%" + escapeLike(v) + "%"
			}
			arr := param(pq.Array(patterns))
			var or []string
			for _, attr := range c.Attrs {
				or = append(or, fmt.Sprintf("data->>%s ILIKE ANY(%s)", param(attr), arr))
			}
			parts = append(parts, "("+strings.Join(or, " OR ")+")")
		case OpGte, OpLte:
			cmp := ">="
			if c.Op == OpLte {
				cmp = "<="
			}
			cast := "numeric"
			if _, isTime := c.Bound.(time.Time); isTime {
				cast = "timestamptz"
			}
			parts = append(parts, fmt.Sprintf("(data->>%s)::%s %s %s", param(c.Attrs[0]), cast, cmp, param(c.Bound)))
		}
	}

	return strings.Join(parts, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	var raw []byte
	if err := row.Scan(&item.ID, &item.Resource, &raw, &item.CreatedBy, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &item.Data); err != nil {
		return nil, fmt.Errorf("failed to decode item %s: %w", item.ID, err)
	}
	if schema, err := SchemaFor(item.Resource); err == nil {
		for _, ra := range schema.Ranges {
			if s, ok := item.Data[ra.Attr].(string); ok && ra.Kind == KindDate {
				if t, err := parseDate(s); err == nil {
					item.Data[ra.Attr] = t.UTC()
				}
			}
		}
	}
	return &item, nil
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
