package query

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/aryodp/edgegate/internal/cache"
	"github.com/aryodp/edgegate/internal/domain"
)

// Display sentinels substituted for empty upstream fields. The values
// come from the inventory owners' own reporting conventions.
const (
	NotCentralized = "TIDAK TERPUSAT"
	NotAvailable   = "TIDAK ADA"
)

// backendAPIPath is appended to host:port when deriving the backend URL.
const backendAPIPath = "/api/v1/system/get"

// ServerAll is the filter sentinel meaning "no server filter".
const ServerAll = "ALL"

// Request is one client query over the cached dataset.
type Request struct {
	Page         int
	Limit        int
	ServerFilter string // "" or "ALL" => all servers
	SearchTerm   string // "" => no search filter
}

// Page is the response page for a Request.
type Page struct {
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	Total      int                   `json:"total"`
	TotalPages int                   `json:"totalPages"`
	Items      []domain.ProjectedRow `json:"items"`
}

// Engine is a pure transformation over the cached dataset: normalize,
// sort, filter, project, paginate. It never touches the network.
type Engine struct {
	cache *cache.DatasetCache
}

// New creates a query engine reading from the given cache.
func New(c *cache.DatasetCache) *Engine {
	return &Engine{cache: c}
}

// Query runs the full pipeline. Page and limit below 1 are clamped to
// 1 so the endpoint always answers. Returns domain.ErrNoData when
// neither a snapshot nor a refresh has ever populated the cache.
func (e *Engine) Query(req Request) (*Page, error) {
	ds := e.cache.Current()
	if ds == nil {
		return nil, domain.ErrNoData
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = 1
	}

	// Normalize into fresh rows; the published dataset is never
	// mutated.
	rows := make([]domain.Row, len(ds.Rows))
	for i, r := range ds.Rows {
		rows[i] = normalize(r)
	}

	// Sort before filtering so pagination stays stable across
	// different filters of the same underlying ordering.
	col := collate.New(language.Und)
	sort.SliceStable(rows, func(i, j int) bool {
		if c := col.CompareString(rows[i].ServerName, rows[j].ServerName); c != 0 {
			return c < 0
		}
		return col.CompareString(rows[i].DomainName, rows[j].DomainName) < 0
	})

	rows = filterServer(rows, req.ServerFilter)
	rows = filterSearch(rows, req.SearchTerm)

	items := make([]domain.ProjectedRow, 0, len(rows))
	for _, r := range rows {
		items = append(items, project(r))
	}

	total := len(items)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &Page{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		Items:      items[start:end],
	}, nil
}

// normalize returns a copy of r with empty reporting fields replaced
// by their display sentinels.
func normalize(r domain.Row) domain.Row {
	if r.IsCentralized == "" {
		r.IsCentralized = NotCentralized
	}
	if r.AppName == "" {
		r.AppName = NotAvailable
	}
	if r.BackupStatus == "" {
		r.BackupStatus = NotAvailable
	}
	return r
}

// project maps a normalized row to its client-facing shape, deriving
// the backend URL from host and port.
func project(r domain.Row) domain.ProjectedRow {
	return domain.ProjectedRow{
		ServerLocation: r.ServerName,
		ProgramName:    r.BackendFolderName,
		DomainName:     r.DomainName,
		BackendURL:     fmt.Sprintf("%s:%d%s", r.BackendHost, r.BackendPort, backendAPIPath),
	}
}

func filterServer(rows []domain.Row, server string) []domain.Row {
	if server == "" || server == ServerAll {
		return rows
	}
	out := make([]domain.Row, 0, len(rows))
	for _, r := range rows {
		if r.ServerName == server {
			out = append(out, r)
		}
	}
	return out
}

func filterSearch(rows []domain.Row, term string) []domain.Row {
	if term == "" {
		return rows
	}
	term = strings.ToLower(term)
	out := make([]domain.Row, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.DomainName), term) ||
			strings.Contains(strings.ToLower(r.BackendFolderName), term) {
			out = append(out, r)
		}
	}
	return out
}
