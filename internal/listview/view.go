// Package listview derives the table view of a collection from the view
// state of a screen: search, facet filters, sort and pagination.
package listview

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const DefaultPageSize = 10

// Sort directions
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// State is the ephemeral view state of one list screen.
type State struct {
	Search    string            `json:"search"`
	Filters   map[string]string `json:"filters"`
	SortField string            `json:"sortField"`
	SortDir   string            `json:"sortDir"`
	Page      int               `json:"page"`
	PageSize  int               `json:"pageSize"`
}

// Facet reports whether rec passes the filter value.
type Facet[T any] func(rec T, value string) bool

// Field is a sortable attribute. Exactly one of Number or Text is set.
type Field[T any] struct {
	Number func(T) float64
	Text   func(T) string
}

// NumberField builds a numerically compared field.
func NumberField[T any](f func(T) float64) Field[T] {
	return Field[T]{Number: f}
}

// TextField builds a collated field.
func TextField[T any](f func(T) string) Field[T] {
	return Field[T]{Text: f}
}

// Schema describes how records of one entity are searched, filtered and
// sorted.
type Schema[T any] struct {
	Search func(T) []string
	Facets map[string]Facet[T]
	Fields map[string]Field[T]
	Locale language.Tag
}

// View is the outcome of ComputeView. Matched holds every record passing
// search and facets in sorted order; Rows is the requested page of it.
type View[T any] struct {
	Rows       []T `json:"rows"`
	Matched    []T `json:"-"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// ComputeView filters, sorts and paginates records. It does not modify
// records and depends on nothing but its arguments.
func ComputeView[T any](records []T, state State, schema Schema[T]) View[T] {
	matched := Filter(records, state, schema)
	Sort(matched, state.SortField, state.SortDir, schema)

	pageSize := state.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := len(matched)
	totalPages := (total + pageSize - 1) / pageSize
	page := state.Page
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return View[T]{
		Rows:       matched[start:end:end],
		Matched:    matched,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// Filter returns a new slice with the records matching the search query and
// every active facet.
func Filter[T any](records []T, state State, schema Schema[T]) []T {
	query := strings.ToLower(strings.TrimSpace(state.Search))

	out := make([]T, 0, len(records))
	for _, rec := range records {
		if query != "" && !matchesSearch(rec, query, schema) {
			continue
		}
		if !matchesFacets(rec, state.Filters, schema) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matchesSearch[T any](rec T, query string, schema Schema[T]) bool {
	if schema.Search == nil {
		return true
	}
	for _, text := range schema.Search(rec) {
		if strings.Contains(strings.ToLower(text), query) {
			return true
		}
	}
	return false
}

func matchesFacets[T any](rec T, filters map[string]string, schema Schema[T]) bool {
	for key, value := range filters {
		if value == "" {
			continue
		}
		facet, ok := schema.Facets[key]
		if !ok {
			continue
		}
		if !facet(rec, value) {
			return false
		}
	}
	return true
}

// Sort orders records in place by field. The sort is stable in both
// directions; an unknown field leaves the order untouched.
func Sort[T any](records []T, field, dir string, schema Schema[T]) {
	f, ok := schema.Fields[field]
	if !ok {
		return
	}

	var compare func(a, b T) int
	if f.Number != nil {
		compare = func(a, b T) int {
			x, y := f.Number(a), f.Number(b)
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	} else if f.Text != nil {
		col := collate.New(schema.Locale)
		compare = func(a, b T) int {
			return col.CompareString(f.Text(a), f.Text(b))
		}
	} else {
		return
	}

	desc := strings.EqualFold(dir, SortDesc)
	sort.SliceStable(records, func(i, j int) bool {
		c := compare(records[i], records[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}
