// Package query turns list-endpoint query parameters into a single SQL
// read. Features is the chainable builder; nothing executes until the
// collection compiles and runs it.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 50

	// "createAt" matches no stored field, so the stock ordering is
	// effectively the stable id tiebreak alone. Clients that want creation
	// order pass sort=-createdAt explicitly.
	defaultSort = "-createAt"
)

// reserved parameter names that never become filter predicates.
var reservedParams = map[string]struct{}{
	"page":    {},
	"sort":    {},
	"limit":   {},
	"fields":  {},
	"keyword": {},
}

type Condition struct {
	Field string
	Op    string // eq, gte, gt, lte, lt
	Value string
}

type SortKey struct {
	Field string
	Desc  bool
}

// Pagination is the ephemeral per-request result; next/prev are omitted
// when there is no further/previous page.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	Limit       int  `json:"limit"`
	Next        *int `json:"next,omitempty"`
	Prev        *int `json:"prev,omitempty"`
}

type Features struct {
	params url.Values

	limit int
	skip  int
	page  Pagination

	conditions   []Condition
	keyword      string
	searchFields []string
	fields       []string
	sorts        []SortKey
}

func NewFeatures(params url.Values) *Features {
	return &Features{
		params: params,
		limit:  DefaultLimit,
	}
}

// Paginate computes skip/limit and the pagination result. The total passed
// in is the unfiltered document count; when filters narrow the set,
// next/prev can therefore overshoot. That matches the source behaviour and
// is pinned down in the tests.
func (f *Features) Paginate(total int64) *Features {
	page := positiveInt(f.params.Get("page"), DefaultPage)
	limit := positiveInt(f.params.Get("limit"), DefaultLimit)

	f.limit = limit
	f.skip = (page - 1) * limit

	f.page = Pagination{
		CurrentPage: page,
		Limit:       limit,
	}

	if int64(f.skip+limit) < total {
		next := page + 1
		f.page.Next = &next
	}

	if f.skip > 0 {
		prev := page - 1
		f.page.Prev = &prev
	}

	return f
}

// Filter turns every non-reserved parameter into a predicate. Comparison
// operators ride in the key: price[gte]=50.
func (f *Features) Filter() *Features {
	for key, vals := range f.params {
		if _, ok := reservedParams[key]; ok {
			continue
		}

		if len(vals) == 0 {
			continue
		}

		field, op := splitOperator(key)

		f.conditions = append(f.conditions, Condition{
			Field: field,
			Op:    op,
			Value: vals[0],
		})
	}

	return f
}

// Search records a case-insensitive substring match of `keyword` over the
// given fields (title+description for products, name elsewhere).
func (f *Features) Search(fields ...string) *Features {
	keyword := f.params.Get("keyword")

	if keyword == "" {
		return f
	}

	f.keyword = keyword
	f.searchFields = fields

	return f
}

// LimitFields records the projection; the default projection is decided at
// compile time (everything except hidden fields).
func (f *Features) LimitFields() *Features {
	raw := f.params.Get("fields")

	if raw == "" {
		return f
	}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			f.fields = append(f.fields, part)
		}
	}

	return f
}

// Sort parses the comma-separated sort list, "-" prefix meaning descending.
func (f *Features) Sort() *Features {
	raw := f.params.Get("sort")

	if raw == "" {
		raw = defaultSort
	}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key := SortKey{Field: part}

		if strings.HasPrefix(part, "-") {
			key.Field = strings.TrimPrefix(part, "-")
			key.Desc = true
		}

		f.sorts = append(f.sorts, key)
	}

	return f
}

func (f *Features) Pagination() Pagination {
	return f.page
}

func splitOperator(key string) (field, op string) {
	open := strings.Index(key, "[")

	if open == -1 || !strings.HasSuffix(key, "]") {
		return key, "eq"
	}

	field = key[:open]
	op = key[open+1 : len(key)-1]

	switch op {
	case "gte", "gt", "lte", "lt":
		return field, op
	}

	// unknown operator: treat the whole key as a field name, it will
	// compile to a no-match predicate
	return key, "eq"
}

func positiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)

	if err != nil || n < 1 {
		return fallback
	}

	return n
}
