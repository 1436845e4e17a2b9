package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mohamedhany/eshop-api/internal/query"
)

// ErrNoDocument is returned by every lookup-by-id path when nothing matched.
var ErrNoDocument = errors.New("no document for this id")

// DBObserver receives one measurement per logical operation. Nil is fine.
type DBObserver func(op string, start time.Time, err error)

// Collection is the generic storage accessor the CRUD handlers work
// against. Documents are plain maps keyed by document field names; the
// descriptor maps those onto table columns.
type Collection struct {
	pool        *pgxpool.Pool
	desc        query.Descriptor
	beforeWrite func(doc map[string]any) error
	observe     DBObserver
}

type CollectionOption func(*Collection)

// WithBeforeWrite installs a pre-write hook run on every Create/Update
// body, the place for storage-side effects like password hashing.
func WithBeforeWrite(hook func(doc map[string]any) error) CollectionOption {
	return func(c *Collection) { c.beforeWrite = hook }
}

func WithObserver(observe DBObserver) CollectionOption {
	return func(c *Collection) { c.observe = observe }
}

func NewCollection(pool *pgxpool.Pool, desc query.Descriptor, opts ...CollectionOption) *Collection {
	c := &Collection{pool: pool, desc: desc}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Collection) Name() string {
	return c.desc.Table
}

func (c *Collection) SearchFields() []string {
	return c.desc.SearchFields
}

func (c *Collection) CountAll(ctx context.Context) (total int64, err error) {
	defer c.measure("count_"+c.desc.Table, time.Now(), &err)

	err = c.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+c.desc.Table).Scan(&total)

	return total, err
}

func (c *Collection) FindAll(ctx context.Context, f *query.Features) (docs []map[string]any, err error) {
	defer c.measure("list_"+c.desc.Table, time.Now(), &err)

	sql, args, projection := query.Compile(f, c.desc)

	rows, err := c.pool.Query(ctx, sql, args...)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	docs = make([]map[string]any, 0)

	for rows.Next() {
		vals, err := rows.Values()

		if err != nil {
			return nil, err
		}

		doc := make(map[string]any, len(projection))

		for i, name := range projection {
			doc[name] = normalize(vals[i])
		}

		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

func (c *Collection) FindByID(ctx context.Context, id string) (doc map[string]any, err error) {
	defer c.measure("get_"+c.desc.Table, time.Now(), &err)

	names, columns := c.defaultProjection()

	sql := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", strings.Join(columns, ", "), c.desc.Table)

	rows, err := c.pool.Query(ctx, sql, id)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoDocument
	}

	vals, err := rows.Values()

	if err != nil {
		return nil, err
	}

	doc = make(map[string]any, len(names))

	for i, name := range names {
		doc[name] = normalize(vals[i])
	}

	return doc, nil
}

func (c *Collection) Create(ctx context.Context, body map[string]any) (doc map[string]any, err error) {
	defer c.measure("create_"+c.desc.Table, time.Now(), &err)

	if c.beforeWrite != nil {
		if err := c.beforeWrite(body); err != nil {
			return nil, err
		}
	}

	columns := []string{"id"}
	args := []any{uuid.NewString()}

	for _, name := range c.desc.Insertable {
		val, ok := body[name]

		if !ok {
			continue
		}

		col, ok := c.desc.WriteColumn(name)

		if !ok {
			continue
		}

		columns = append(columns, col)
		args = append(args, val)
	}

	placeholders := make([]string, len(columns))

	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	names, projection := c.defaultProjection()

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		c.desc.Table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(projection, ", "),
	)

	return c.queryDoc(ctx, names, sql, args...)
}

func (c *Collection) UpdateByID(ctx context.Context, id string, body map[string]any) (doc map[string]any, err error) {
	defer c.measure("update_"+c.desc.Table, time.Now(), &err)

	if c.beforeWrite != nil {
		if err := c.beforeWrite(body); err != nil {
			return nil, err
		}
	}

	sets := []string{"updated_at = now()", "version = version + 1"}
	args := []any{id}

	for _, name := range c.desc.Updatable {
		val, ok := body[name]

		if !ok {
			continue
		}

		col, ok := c.desc.WriteColumn(name)

		if !ok {
			continue
		}

		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	names, projection := c.defaultProjection()

	sql := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $1 RETURNING %s",
		c.desc.Table,
		strings.Join(sets, ", "),
		strings.Join(projection, ", "),
	)

	doc, err = c.queryDoc(ctx, names, sql, args...)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoDocument
	}

	return doc, err
}

func (c *Collection) DeleteByID(ctx context.Context, id string) (err error) {
	defer c.measure("delete_"+c.desc.Table, time.Now(), &err)

	tag, err := c.pool.Exec(ctx, "DELETE FROM "+c.desc.Table+" WHERE id = $1", id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrNoDocument
	}

	return nil
}

func (c *Collection) defaultProjection() (names []string, columns []string) {
	return query.DefaultProjection(c.desc)
}

func (c *Collection) queryDoc(ctx context.Context, names []string, sql string, args ...any) (map[string]any, error) {
	rows, err := c.pool.Query(ctx, sql, args...)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}

	vals, err := rows.Values()

	if err != nil {
		return nil, err
	}

	doc := make(map[string]any, len(names))

	for i, name := range names {
		doc[name] = normalize(vals[i])
	}

	return doc, nil
}

func (c *Collection) measure(op string, start time.Time, err *error) {
	if c.observe != nil {
		c.observe(op, start, *err)
	}
}

// normalize converts pgx scan values into JSON-friendly shapes.
func normalize(v any) any {
	switch val := v.(type) {
	case [16]byte:
		return uuid.UUID(val).String()
	case pgtype.Numeric:
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	default:
		return v
	}
}
