package query

import (
	"net/url"
	"testing"
)

func params(raw string) url.Values {
	v, err := url.ParseQuery(raw)

	if err != nil {
		panic(err)
	}

	return v
}

func TestPaginateDefaults(t *testing.T) {
	f := NewFeatures(params("")).Paginate(10)

	p := f.Pagination()

	if p.CurrentPage != 1 {
		t.Fatalf("currentPage = %d, want 1", p.CurrentPage)
	}

	if p.Limit != 50 {
		t.Fatalf("limit = %d, want 50", p.Limit)
	}

	if p.Next != nil {
		t.Fatalf("next = %v, want absent (10 docs fit in one default page)", *p.Next)
	}

	if p.Prev != nil {
		t.Fatalf("prev = %v, want absent on first page", *p.Prev)
	}
}

func TestPaginateWindows(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		total    int64
		wantPage int
		wantNext *int
		wantPrev *int
	}{
		{
			name:     "first_of_three",
			query:    "page=1&limit=10",
			total:    25,
			wantPage: 1,
			wantNext: intp(2),
		},
		{
			name:     "middle_page",
			query:    "page=2&limit=10",
			total:    25,
			wantPage: 2,
			wantNext: intp(3),
			wantPrev: intp(1),
		},
		{
			name:     "last_page",
			query:    "page=3&limit=10",
			total:    25,
			wantPage: 3,
			wantPrev: intp(2),
		},
		{
			name:     "exact_fit_no_next",
			query:    "page=2&limit=10",
			total:    20,
			wantPage: 2,
			wantPrev: intp(1),
		},
		{
			name:     "past_the_end",
			query:    "page=9&limit=10",
			total:    25,
			wantPage: 9,
			wantPrev: intp(8),
		},
		{
			name:     "garbage_page_falls_back",
			query:    "page=banana&limit=10",
			total:    25,
			wantPage: 1,
			wantNext: intp(2),
		},
		{
			name:     "negative_limit_falls_back",
			query:    "page=1&limit=-5",
			total:    200,
			wantPage: 1,
			wantNext: intp(2),
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			p := NewFeatures(params(tt.query)).Paginate(tt.total).Pagination()

			if p.CurrentPage != tt.wantPage {
				t.Fatalf("currentPage = %d, want %d", p.CurrentPage, tt.wantPage)
			}

			if !intpEq(p.Next, tt.wantNext) {
				t.Fatalf("next = %v, want %v", fmtIntp(p.Next), fmtIntp(tt.wantNext))
			}

			if !intpEq(p.Prev, tt.wantPrev) {
				t.Fatalf("prev = %v, want %v", fmtIntp(p.Prev), fmtIntp(tt.wantPrev))
			}
		})
	}
}

func TestFilterSplitsOperators(t *testing.T) {
	f := NewFeatures(params("price[gte]=50&sold=3&page=2&keyword=x&bogus[weird]=1")).Filter()

	byField := map[string]Condition{}

	for _, c := range f.conditions {
		byField[c.Field] = c
	}

	if c := byField["price"]; c.Op != "gte" || c.Value != "50" {
		t.Fatalf("price condition = %+v, want gte 50", c)
	}

	if c := byField["sold"]; c.Op != "eq" || c.Value != "3" {
		t.Fatalf("sold condition = %+v, want eq 3", c)
	}

	// reserved params never become predicates
	if _, ok := byField["page"]; ok {
		t.Fatal("page leaked into conditions")
	}

	if _, ok := byField["keyword"]; ok {
		t.Fatal("keyword leaked into conditions")
	}

	// unknown operator keeps the raw key, which later compiles to no-match
	if _, ok := byField["bogus[weird]"]; !ok {
		t.Fatalf("unknown operator not kept as raw field, got %+v", f.conditions)
	}
}

func TestSortParsing(t *testing.T) {
	f := NewFeatures(params("sort=-price,title")).Sort()

	if len(f.sorts) != 2 {
		t.Fatalf("got %d sort keys, want 2", len(f.sorts))
	}

	if f.sorts[0].Field != "price" || !f.sorts[0].Desc {
		t.Fatalf("first sort = %+v, want price desc", f.sorts[0])
	}

	if f.sorts[1].Field != "title" || f.sorts[1].Desc {
		t.Fatalf("second sort = %+v, want title asc", f.sorts[1])
	}
}

func TestDefaultSortResolvesToNothing(t *testing.T) {
	// the stock sort field does not exist on any collection, so ordering
	// falls through to the id tiebreak
	f := NewFeatures(params("")).Sort()

	if len(f.sorts) != 1 || f.sorts[0].Field != "createAt" || !f.sorts[0].Desc {
		t.Fatalf("default sort = %+v", f.sorts)
	}
}

func TestLimitFields(t *testing.T) {
	f := NewFeatures(params("fields=name, slug,,price")).LimitFields()

	want := []string{"name", "slug", "price"}

	if len(f.fields) != len(want) {
		t.Fatalf("fields = %v, want %v", f.fields, want)
	}

	for i := range want {
		if f.fields[i] != want[i] {
			t.Fatalf("fields = %v, want %v", f.fields, want)
		}
	}
}

func TestSearchWithoutKeywordIsNoop(t *testing.T) {
	f := NewFeatures(params("")).Search("title", "description")

	if f.keyword != "" || f.searchFields != nil {
		t.Fatalf("search without keyword recorded %+v", f)
	}
}

func intp(n int) *int { return &n }

func intpEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

func fmtIntp(p *int) any {
	if p == nil {
		return "absent"
	}

	return *p
}
