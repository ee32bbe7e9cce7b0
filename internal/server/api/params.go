package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/systemshift/minddump/internal/server/core"
	"github.com/systemshift/minddump/internal/server/query"
)

// queryInt parses an optional integer query parameter.
func queryInt(q url.Values, name string) (*int, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, invalidRequest(fmt.Sprintf("Invalid %s: %q is not an integer", name, v),
			map[string]any{name: v})
	}
	return &n, nil
}

func queryFloat(q url.Values, name string) (*float64, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, invalidRequest(fmt.Sprintf("Invalid %s: %q is not a number", name, v),
			map[string]any{name: v})
	}
	return &f, nil
}

// pageParams reads page and limit. Absent values stay zero and take the
// collection defaults.
func pageParams(q url.Values) (query.Params, error) {
	var p query.Params
	page, err := queryInt(q, "page")
	if err != nil {
		return p, err
	}
	limit, err := queryInt(q, "limit")
	if err != nil {
		return p, err
	}

	if page != nil {
		if *page < 1 {
			return p, core.Validation("INVALID_PAGE", "page must be greater than or equal to 1", map[string]any{"page": *page})
		}
		p.Page = *page
	}
	if limit != nil {
		if *limit < 1 {
			return p, core.Validation("INVALID_LIMIT", "limit must be at least 1", map[string]any{"limit": *limit})
		}
		p.Limit = *limit
	}
	return p, nil
}

// parentParam interprets parent_id. Absent, empty, "null" and "root" select the root level.
func parentParam(q url.Values) *string {
	v := strings.TrimSpace(q.Get("parent_id"))
	switch strings.ToLower(v) {
	case "", "null", "root":
		return nil
	}
	return &v
}
