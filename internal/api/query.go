package api

import (
	"strconv"

	"techstore-admin/internal/listview"

	"github.com/gin-gonic/gin"
)

// listState reads the view state of a list request:
// ?q=&sort=&dir=&page=&page_size=&filter[key]=value. Malformed numbers fall
// back to the defaults.
func listState(c *gin.Context) listview.State {
	state := listview.State{
		Search:    c.Query("q"),
		SortField: c.Query("sort"),
		SortDir:   listview.SortAsc,
		Filters:   c.QueryMap("filter"),
		Page:      1,
	}
	if c.Query("dir") == listview.SortDesc {
		state.SortDir = listview.SortDesc
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		state.Page = page
	}
	if size, err := strconv.Atoi(c.Query("page_size")); err == nil && size > 0 {
		state.PageSize = size
	}
	return state
}
