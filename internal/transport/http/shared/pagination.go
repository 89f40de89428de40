package shared

import (
	"net/http"
	"strconv"
)

// Pagination is a parsed limit/offset window. Offset paging is enough here;
// the audit listing is the only large collection.
type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination reads limit/offset query parameters, falling back to
// defaultLimit and clamping to maxLimit. Malformed or negative values are
// ignored rather than rejected.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	page := Pagination{Limit: defaultLimit}
	if v := queryInt(r, "limit"); v > 0 {
		page.Limit = v
	}
	if v := queryInt(r, "offset"); v > 0 {
		page.Offset = v
	}
	if maxLimit > 0 && page.Limit > maxLimit {
		page.Limit = maxLimit
	}
	return page
}

func queryInt(r *http.Request, key string) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
