package query

import (
	"fmt"
	"strings"
)

// Field maps a document field name to its column.
type Field struct {
	Name   string
	Column string
}

// Descriptor describes one collection to the compiler. Field order is the
// column order of the produced SELECT, which keeps results deterministic.
type Descriptor struct {
	Table        string
	Fields       []Field
	WriteOnly    []Field  // writable but never selected or filtered
	Hidden       []string // excluded from the default projection (version)
	SearchFields []string // used when Search was chained without fields
	Insertable   []string
	Updatable    []string
}

func (d Descriptor) Column(name string) (string, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Column, true
		}
	}
	return "", false
}

// WriteColumn resolves a field for INSERT/UPDATE, including write-only
// fields like a password hash.
func (d Descriptor) WriteColumn(name string) (string, bool) {
	if col, ok := d.Column(name); ok {
		return col, ok
	}
	for _, f := range d.WriteOnly {
		if f.Name == name {
			return f.Column, true
		}
	}
	return "", false
}

func (d Descriptor) hidden(name string) bool {
	for _, h := range d.Hidden {
		if h == name {
			return true
		}
	}
	return false
}

var sqlOps = map[string]string{
	"eq":  "=",
	"gte": ">=",
	"gt":  ">",
	"lte": "<=",
	"lt":  "<",
}

// Compile renders the accumulated directives into one SELECT plus its
// projection (document field names in output order).
func Compile(f *Features, d Descriptor) (sql string, args []any, projection []string) {
	projection, columns := compileProjection(f, d)

	var b strings.Builder

	b.WriteString("SELECT ")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(d.Table)

	where := compileWhere(f, d, &args)

	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}

	b.WriteString(" ORDER BY ")
	b.WriteString(strings.Join(compileOrder(f, d), ", "))

	b.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2))
	args = append(args, f.limit, f.skip)

	return b.String(), args, projection
}

func compileProjection(f *Features, d Descriptor) (names []string, columns []string) {
	if len(f.fields) > 0 {
		for _, name := range f.fields {
			// unknown fields are simply absent, like selecting a
			// missing document field
			if col, ok := d.Column(name); ok {
				names = append(names, name)
				columns = append(columns, col)
			}
		}
	}

	if len(names) > 0 {
		return names, columns
	}

	return DefaultProjection(d)
}

// DefaultProjection is every field except the hidden ones, in declaration
// order.
func DefaultProjection(d Descriptor) (names []string, columns []string) {
	for _, field := range d.Fields {
		if d.hidden(field.Name) {
			continue
		}
		names = append(names, field.Name)
		columns = append(columns, field.Column)
	}

	return names, columns
}

func compileWhere(f *Features, d Descriptor, args *[]any) []string {
	var conds []string

	for _, c := range f.conditions {
		col, ok := d.Column(c.Field)

		if !ok {
			// filtering on a field no document has matches nothing
			conds = append(conds, "FALSE")
			continue
		}

		*args = append(*args, c.Value)
		conds = append(conds, fmt.Sprintf("%s %s $%d", col, sqlOps[c.Op], len(*args)))
	}

	if f.keyword != "" {
		fields := f.searchFields
		if len(fields) == 0 {
			fields = d.SearchFields
		}

		var ors []string

		*args = append(*args, "%"+f.keyword+"%")
		pos := len(*args)

		for _, name := range fields {
			if col, ok := d.Column(name); ok {
				ors = append(ors, fmt.Sprintf("%s ILIKE $%d", col, pos))
			}
		}

		if len(ors) > 0 {
			conds = append(conds, "("+strings.Join(ors, " OR ")+")")
		}
	}

	return conds
}

func compileOrder(f *Features, d Descriptor) []string {
	var order []string

	for _, s := range f.sorts {
		col, ok := d.Column(s.Field)

		if !ok {
			// unknown sort keys (including the default "createAt")
			// drop out, same as sorting a document store by a field
			// nothing has
			continue
		}

		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}

		order = append(order, col+" "+dir)
	}

	// stable tiebreak so pagination windows never shuffle
	return append(order, "id ASC")
}
