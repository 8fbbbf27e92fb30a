package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/aryodp/edgegate/internal/httpserver/deps"
	"github.com/aryodp/edgegate/internal/query"
)

type dataResponse struct {
	Status bool        `json:"status"`
	Data   *query.Page `json:"data"`
}

// Data serves the paginated, filtered, sorted view of the cached
// dataset. It reads the cache only and never touches the network.
func Data(d deps.Deps) http.HandlerFunc {
	engine := d.Query

	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		req := query.Request{
			Page:         intParam(q, "page", 1),
			Limit:        intParam(q, "limit", 10),
			ServerFilter: q.Get("selectedServer"),
			SearchTerm:   q.Get("search"),
		}
		if req.ServerFilter == "" {
			req.ServerFilter = query.ServerAll
		}

		page, err := engine.Query(req)
		if err != nil {
			// The only engine error is an unpopulated cache.
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, dataResponse{Status: true, Data: page})
	}
}

// intParam parses a positive integer query parameter, falling back to
// def when absent or unparseable. Range clamping is the engine's job.
func intParam(q url.Values, key string, def int) int {
	v := q.Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
