package listview

import (
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type row struct {
	ID    int64
	Name  string
	Group string
	Price float64
}

func rowSchema() Schema[row] {
	return Schema[row]{
		Search: func(r row) []string { return []string{r.Name, r.Group} },
		Facets: map[string]Facet[row]{
			"group": func(r row, v string) bool { return r.Group == v },
			"cheap": func(r row, v string) bool { return (r.Price < 10) == (v == "yes") },
		},
		Fields: map[string]Field[row]{
			"id":    NumberField(func(r row) float64 { return float64(r.ID) }),
			"price": NumberField(func(r row) float64 { return r.Price }),
			"name":  TextField(func(r row) string { return r.Name }),
		},
		Locale: language.French,
	}
}

func sampleRows() []row {
	return []row{
		{ID: 1, Name: "Laptop HP", Group: "Informatique", Price: 8999.99},
		{ID: 2, Name: "iPhone 15", Group: "Téléphonie", Price: 12099.99},
		{ID: 10, Name: "Chargeur Rapide", Group: "Accessoires", Price: 9.5},
		{ID: 3, Name: "Écran", Group: "Informatique", Price: 1339.99},
		{ID: 4, Name: "Souris", Group: "Accessoires", Price: 5},
	}
}

func ids(rows []row) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestComputeViewIsPure(t *testing.T) {
	records := sampleRows()
	state := State{Search: "a", SortField: "price", SortDir: SortDesc, Page: 1, PageSize: 2}

	first := ComputeView(records, state, rowSchema())
	second := ComputeView(records, state, rowSchema())

	assert.Equal(t, first, second)
	assert.Equal(t, sampleRows(), records, "input must not be reordered")
}

func TestSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	view := ComputeView(sampleRows(), State{Search: "  INFORMATIQUE "}, rowSchema())
	assert.Equal(t, []int64{1, 3}, ids(view.Rows))

	view = ComputeView(sampleRows(), State{Search: "iphone"}, rowSchema())
	assert.Equal(t, []int64{2}, ids(view.Rows))
}

func TestEmptySearchKeepsEverything(t *testing.T) {
	view := ComputeView(sampleRows(), State{PageSize: 100}, rowSchema())
	assert.Equal(t, 5, view.Total)
}

func TestFacetsComposeWithAnd(t *testing.T) {
	state := State{Filters: map[string]string{"group": "Accessoires", "cheap": "yes"}}
	view := ComputeView(sampleRows(), state, rowSchema())
	assert.Equal(t, []int64{10, 4}, ids(view.Rows))

	state.Filters["group"] = "Informatique"
	view = ComputeView(sampleRows(), state, rowSchema())
	assert.Empty(t, view.Rows)
}

func TestEmptyAndUnknownFacetsAreIgnored(t *testing.T) {
	state := State{Filters: map[string]string{"group": "", "nope": "x"}}
	view := ComputeView(sampleRows(), state, rowSchema())
	assert.Equal(t, 5, view.Total)
}

func TestNumericSortComparesNumbers(t *testing.T) {
	view := ComputeView(sampleRows(), State{SortField: "id", SortDir: SortAsc}, rowSchema())
	assert.Equal(t, []int64{1, 2, 3, 4, 10}, ids(view.Rows))

	view = ComputeView(sampleRows(), State{SortField: "id", SortDir: SortDesc}, rowSchema())
	assert.Equal(t, []int64{10, 4, 3, 2, 1}, ids(view.Rows))
}

func TestTextSortIsLocaleAware(t *testing.T) {
	view := ComputeView(sampleRows(), State{SortField: "name"}, rowSchema())

	names := make([]string, len(view.Rows))
	for i, r := range view.Rows {
		names[i] = r.Name
	}
	// "Écran" collates with the E words, not after "Z" as a byte compare would place it.
	assert.Equal(t, []string{"Chargeur Rapide", "Écran", "iPhone 15", "Laptop HP", "Souris"}, names)
}

func TestSortIsStableForEqualKeys(t *testing.T) {
	records := []row{
		{ID: 5, Name: "first"},
		{ID: 1, Name: "a"},
		{ID: 5, Name: "second"},
		{ID: 5, Name: "third"},
	}

	asc := ComputeView(records, State{SortField: "id"}, rowSchema())
	assert.Equal(t, []string{"a", "first", "second", "third"}, []string{
		asc.Rows[0].Name, asc.Rows[1].Name, asc.Rows[2].Name, asc.Rows[3].Name,
	})

	desc := ComputeView(records, State{SortField: "id", SortDir: SortDesc}, rowSchema())
	assert.Equal(t, []string{"first", "second", "third", "a"}, []string{
		desc.Rows[0].Name, desc.Rows[1].Name, desc.Rows[2].Name, desc.Rows[3].Name,
	})
}

func TestUnknownSortFieldKeepsOrder(t *testing.T) {
	view := ComputeView(sampleRows(), State{SortField: "colour"}, rowSchema())
	assert.Equal(t, []int64{1, 2, 10, 3, 4}, ids(view.Rows))
}

func TestPagination(t *testing.T) {
	view := ComputeView(sampleRows(), State{SortField: "id", Page: 2, PageSize: 2}, rowSchema())
	assert.Equal(t, []int64{3, 4}, ids(view.Rows))
	assert.Equal(t, 2, view.Page)
	assert.Equal(t, 3, view.TotalPages)
	assert.Equal(t, 5, view.Total)
	assert.Len(t, view.Matched, 5)
}

func TestPageClampsToLastPageAfterFilterShrinks(t *testing.T) {
	state := State{SortField: "id", Page: 3, PageSize: 2, Filters: map[string]string{"group": "Accessoires"}}
	view := ComputeView(sampleRows(), state, rowSchema())
	assert.Equal(t, 1, view.Page)
	assert.Equal(t, []int64{4, 10}, ids(view.Rows))
}

func TestPageBounds(t *testing.T) {
	records := make([]row, 23)
	for i := range records {
		records[i] = row{ID: int64(i + 1), Name: strconv.Itoa(i)}
	}

	for _, size := range []int{0, 1, 5, 10, 23, 50} {
		for _, page := range []int{-3, 0, 1, 2, 3, 7, 100} {
			for _, search := range []string{"", "1", "nothing-matches"} {
				view := ComputeView(records, State{Search: search, Page: page, PageSize: size}, rowSchema())
				maxPage := view.TotalPages
				if maxPage < 1 {
					maxPage = 1
				}
				require.GreaterOrEqual(t, view.Page, 1)
				require.LessOrEqual(t, view.Page, maxPage)
				require.LessOrEqual(t, len(view.Rows), view.PageSize)
			}
		}
	}
}

func TestDefaultPageSize(t *testing.T) {
	records := make([]row, 15)
	view := ComputeView(records, State{}, rowSchema())
	assert.Equal(t, DefaultPageSize, view.PageSize)
	assert.Len(t, view.Rows, DefaultPageSize)
	assert.Equal(t, 2, view.TotalPages)
}

func TestEmptyCollection(t *testing.T) {
	view := ComputeView([]row{}, State{Page: 4}, rowSchema())
	assert.Empty(t, view.Rows)
	assert.Equal(t, 1, view.Page)
	assert.Equal(t, 0, view.TotalPages)
}

func TestDebouncerCoalescesBurst(t *testing.T) {
	var calls int32
	d := NewDebouncer(50*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDebouncerStopCancelsPendingCall(t *testing.T) {
	var calls int32
	d := NewDebouncer(30*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })

	d.Trigger()
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}
